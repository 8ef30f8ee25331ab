// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import "strings"

// filterEntriesBySize keeps entries that satisfy minimum unpadded and padded
// size thresholds, per UnpackOptions.MinSize/MinPaddedSize.
func filterEntriesBySize(entries []EntryHeader, minSize, minPaddedSize int64) []EntryHeader {
	if minSize == 0 && minPaddedSize == 0 {
		return entries
	}

	out := make([]EntryHeader, 0, len(entries))
	for _, entry := range entries {
		if entry.UnpaddedLength < minSize {
			continue
		}
		if entry.PaddedLength < minPaddedSize {
			continue
		}

		out = append(out, entry)
	}

	return out
}

// filterEntriesByPrefix keeps entries under prefix (or an exact match).
func filterEntriesByPrefix(entries []EntryHeader, prefix string) []EntryHeader {
	prefix = NormalizePath(prefix)
	if prefix == "/" {
		return entries
	}

	prefixWithSlash := strings.TrimSuffix(prefix, "/") + "/"
	out := make([]EntryHeader, 0, len(entries))
	for _, entry := range entries {
		entryPath := NormalizePath(entry.Path)
		if entryPath == prefix || strings.HasPrefix(entryPath, prefixWithSlash) {
			out = append(out, entry)
		}
	}

	return out
}

// filterIgnoredEntries removes entries marked Ignore.
func filterIgnoredEntries(entries []EntryHeader) []EntryHeader {
	out := make([]EntryHeader, 0, len(entries))
	for _, entry := range entries {
		if entry.Ignore {
			continue
		}

		out = append(out, entry)
	}

	return out
}

// filterUnknownEntries removes entries whose Path was synthesized from a
// hash (NameIsHash), per UnpackOptions/Binder.SkipUnknownFiles.
func filterUnknownEntries(entries []EntryHeader) []EntryHeader {
	out := make([]EntryHeader, 0, len(entries))
	for _, entry := range entries {
		if entry.NameIsHash {
			continue
		}

		out = append(out, entry)
	}

	return out
}

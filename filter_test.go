// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import "testing"

func TestFilterEntriesBySize(t *testing.T) {
	t.Parallel()

	entries := []EntryHeader{
		{Path: "/a.txt", UnpaddedLength: 4, PaddedLength: 4},
		{Path: "/b.txt", UnpaddedLength: 12, PaddedLength: 16},
		{Path: "/c.txt", UnpaddedLength: 20, PaddedLength: 20},
	}

	filtered := filterEntriesBySize(entries, 10, 8)
	if len(filtered) != 2 {
		t.Fatalf("len(filtered)=%d, want 2", len(filtered))
	}
	if filtered[0].Path != "/b.txt" || filtered[1].Path != "/c.txt" {
		t.Fatalf("unexpected filtered entries: %#v", filtered)
	}
}

func TestFilterEntriesByPrefix(t *testing.T) {
	t.Parallel()

	entries := []EntryHeader{
		{Path: "/data/a.txt"},
		{Path: "/data/sub/b.txt"},
		{Path: "/scripts/c.txt"},
	}

	filtered := filterEntriesByPrefix(entries, "data")
	if len(filtered) != 2 {
		t.Fatalf("len(filtered)=%d, want 2", len(filtered))
	}
	if filtered[0].Path != "/data/a.txt" || filtered[1].Path != "/data/sub/b.txt" {
		t.Fatalf("unexpected filtered entries: %#v", filtered)
	}
}

func TestFilterIgnoredAndUnknownEntries(t *testing.T) {
	t.Parallel()

	entries := []EntryHeader{
		{Path: "/a", Ignore: true},
		{Path: "/b", NameIsHash: true},
		{Path: "/c"},
	}

	afterIgnore := filterIgnoredEntries(entries)
	if len(afterIgnore) != 2 {
		t.Fatalf("len(afterIgnore)=%d, want 2", len(afterIgnore))
	}

	afterUnknown := filterUnknownEntries(afterIgnore)
	if len(afterUnknown) != 1 || afterUnknown[0].Path != "/c" {
		t.Fatalf("unexpected afterUnknown: %#v", afterUnknown)
	}
}

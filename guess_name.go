// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"fmt"
	"os"
	"path/filepath"
)

// RenameUnknownFiles takes each "_unknown/<hash>" file listed in
// unknownRelPaths (relative to root) and, by composing GuessExtension and
// GuessFolder over its content, renames it under root into
// the canonical "<folder>/<hash><ext>" layout. When GuessExtension can't
// identify the content, the file is left alone: it is skipped entirely and
// does not appear in the returned list. It never overwrites an existing
// destination file; a collision is reported as ErrIsAFile.
func RenameUnknownFiles(root string, unknownRelPaths []string) ([]string, error) {
	renamed := make([]string, 0, len(unknownRelPaths))

	for _, rel := range unknownRelPaths {
		src := filepath.Join(root, filepath.FromSlash(rel))

		data, err := os.ReadFile(src)
		if err != nil {
			return renamed, fmt.Errorf("%w: read %s: %v", ErrIO, rel, err)
		}

		ext := GuessExtension(data)
		if ext == "" {
			continue
		}

		folder := GuessFolder(ext, data)

		base := filepath.Base(rel)
		destRel := base + ext
		if folder != "" {
			destRel = filepath.Join(folder, base+ext)
		}
		dest := filepath.Join(root, destRel)

		if _, err := os.Stat(dest); err == nil {
			return renamed, fmt.Errorf("%w: %s already exists", ErrIsAFile, dest)
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return renamed, fmt.Errorf("%w: %v", ErrIO, err)
		}
		if err := os.Rename(src, dest); err != nil {
			return renamed, fmt.Errorf("%w: rename %s: %v", ErrIO, src, err)
		}

		renamed = append(renamed, destRel)
	}

	return renamed, nil
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import "strings"

// NormalizePath converts a raw archive path into the canonical form the path
// hasher and dictionary key on: trim whitespace, rewrite "\" to "/", fold to
// lowercase, and ensure exactly one leading "/".
func NormalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\`, "/")
	raw = strings.ToLower(raw)
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}

	return raw
}

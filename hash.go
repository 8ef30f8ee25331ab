// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

// Path hash multipliers. The 32-bit table uses P=37, the 64-bit table
// (introduced for the newest archive generation) uses P=133.
const (
	hashMultiplier32 = 37
	hashMultiplier64 = 133
)

// Hash32 computes the classic 32-bit polynomial path hash used by the older
// bucket table generation: h = h*37 + byte, over the normalized path.
func Hash32(normalizedPath string) uint32 {
	var h uint32
	for i := 0; i < len(normalizedPath); i++ {
		h = h*hashMultiplier32 + uint32(normalizedPath[i])
	}

	return h
}

// Hash64 computes the 64-bit polynomial path hash used by the newest archive
// generation: h = h*133 + byte, over the normalized path.
func Hash64(normalizedPath string) uint64 {
	var h uint64
	for i := 0; i < len(normalizedPath); i++ {
		h = h*hashMultiplier64 + uint64(normalizedPath[i])
	}

	return h
}

// PathHash computes either the 32-bit or 64-bit path hash for a raw (not yet
// normalized) path, selecting the table by bit64.
func PathHash(raw string, bit64 bool) uint64 {
	normalized := NormalizePath(raw)
	if bit64 {
		return Hash64(normalized)
	}

	return uint64(Hash32(normalized))
}

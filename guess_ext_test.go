// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"encoding/binary"
	"testing"
)

func TestGuessExtensionPrefixProbes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"BND3 everything else":    ".bnd",
		"BHF4 rest of the header": ".bhd",
		"DDS rest of dds header":  ".dds",
	}

	for data, want := range cases {
		if got := GuessExtension([]byte(data)); got != want {
			t.Fatalf("GuessExtension(%q)=%q, want %q", data, got, want)
		}
	}
}

func TestGuessExtensionParamdef(t *testing.T) {
	t.Parallel()

	if got := GuessExtension([]byte("PARAMDEF rest")); got != ".paramdef" {
		t.Fatalf("GuessExtension(PARAMDEF...)=%q, want .paramdef", got)
	}
}

func TestGuessExtensionUnknown(t *testing.T) {
	t.Parallel()

	if got := GuessExtension([]byte{0xFF, 0xFE, 0xFD}); got != "" {
		t.Fatalf("GuessExtension(unknown)=%q, want empty", got)
	}
}

func TestGuessExtensionByteOffsetProbes(t *testing.T) {
	t.Parallel()

	png := append([]byte{0x89}, []byte("PNG\r\n\x1a\n")...)
	if got := GuessExtension(png); got != ".png" {
		t.Fatalf("GuessExtension(png)=%q, want .png", got)
	}

	lua := append([]byte{0x1b}, []byte("Lua bytecode payload")...)
	if got := GuessExtension(lua); got != ".lc" {
		t.Fatalf("GuessExtension(lua)=%q, want .lc", got)
	}
}

func TestGuessExtensionCaseInsensitiveMarkers(t *testing.T) {
	t.Parallel()

	if got := GuessExtension([]byte("dlse rest of effects header")); got != ".ffx" {
		t.Fatalf("GuessExtension(dlse)=%q, want .ffx", got)
	}
}

func TestIsMSBResolvesOffsetAndMarker(t *testing.T) {
	t.Parallel()

	peek := make([]byte, 32)
	binary.LittleEndian.PutUint32(peek[4:8], 16)
	copy(peek[16:], "MODEL_PARAM_ST")

	if !isMSB(peek) {
		t.Fatalf("isMSB: expected match")
	}
}

func TestIsMSBRejectsOutOfRangeOffset(t *testing.T) {
	t.Parallel()

	peek := make([]byte, 16)
	binary.LittleEndian.PutUint32(peek[4:8], 1000)

	if isMSB(peek) {
		t.Fatalf("isMSB: expected no match for out-of-range offset")
	}
}

func TestIsTDFDetectsQuotedHeader(t *testing.T) {
	t.Parallel()

	if !isTDF([]byte("\"a param definition name\"\r\n")) {
		t.Fatalf("isTDF: expected match")
	}
	if isTDF([]byte("not a tdf file")) {
		t.Fatalf("isTDF: expected no match")
	}
}

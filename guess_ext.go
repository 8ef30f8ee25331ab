// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// extPeekSize is the number of leading bytes GuessExtension inspects,
// min(50, remaining) per the probe order.
const extPeekSize = 50

// magicPrefixProbe is one literal ASCII-magic probe at a fixed byte offset:
// if data has any of Magics at Offset, GuessExtension returns Ext
// immediately. CaseInsensitive folds the comparison.
type magicPrefixProbe struct {
	Offset          int
	Magics          []string
	CaseInsensitive bool
	Ext             string
}

// prefixProbes is consulted in order before any structural probe runs; order
// is the canonical probe order (Open Question (i)).
var prefixProbes = []magicPrefixProbe{
	{Offset: 0, Magics: []string{"BND"}, Ext: ".bnd"},
	{Offset: 0, Magics: []string{"BHD", "BHF"}, Ext: ".bhd"},
	{Offset: 0, Magics: []string{"BDF"}, Ext: ".bdt"},
	{Offset: 0, Magics: []string{"SMD"}, Ext: ".smd"},
	{Offset: 0, Magics: []string{"MDL"}, Ext: ".mdl"},
	{Offset: 0, Magics: []string{"FEV"}, Ext: ".fev"},
	{Offset: 0, Magics: []string{"FSB"}, Ext: ".fsb"},
	{Offset: 0, Magics: []string{"GFX"}, Ext: ".gfx"},
	{Offset: 0, Magics: []string{"PAM"}, Ext: ".pam"},
	{Offset: 0, Magics: []string{"CLM"}, Ext: ".clm"},
	{Offset: 0, Magics: []string{"TPF\x00"}, Ext: ".tpf"},
	{Offset: 0, Magics: []string{"MQB "}, Ext: ".mqb"},
	{Offset: 0, Magics: []string{"TAE "}, Ext: ".tae"},
	{Offset: 0, Magics: []string{"DRB\x00", "\x00BRD"}, Ext: ".drb"},
	{Offset: 0, Magics: []string{"DDS "}, Ext: ".dds"},
	{Offset: 0, Magics: []string{"ENFL"}, Ext: ".entryfilelist"},
	{Offset: 0, Magics: []string{"DFPN"}, Ext: ".nfd"},
	{Offset: 0, Magics: []string{"#BOM", "TEXT"}, Ext: ".txt"},
	{Offset: 0, Magics: []string{"NVMA"}, Ext: ".nva"},
	{Offset: 0, Magics: []string{"HNAV"}, Ext: ".hnav"},
	{Offset: 0, Magics: []string{"NVG2"}, Ext: ".ngp"},
	{Offset: 0, Magics: []string{"F2TR"}, Ext: ".flver2tri"},
	{Offset: 0, Magics: []string{"EDF\x00"}, Ext: ".edf"},
	{Offset: 0, Magics: []string{"EVD\x00"}, Ext: ".evd"},
	{Offset: 0, Magics: []string{"ELD\x00"}, Ext: ".eld"},
	{Offset: 0, Magics: []string{"BLF\x00"}, Ext: ".blf"},
	{Offset: 0, Magics: []string{"FXR\x00"}, Ext: ".fxr"},
	{Offset: 0, Magics: []string{"ACB\x00"}, Ext: ".acb"},
	{Offset: 0, Magics: []string{"HTR\x00"}, Ext: ".ht"},
	{Offset: 0, Magics: []string{"ANE\x00"}, Ext: ".ane"},
	{Offset: 0, Magics: []string{"<?xml"}, Ext: ".xml"},
	{Offset: 0, Magics: []string{"FLVER\x00"}, Ext: ".flver"},
	{Offset: 0, Magics: []string{"[PATH]"}, Ext: ".ini"},
	{Offset: 0, Magics: []string{"-----BEGIN RSA PUBLIC KEY-----"}, Ext: ".pem"},
	{Offset: 0, Magics: []string{"DLSE"}, CaseInsensitive: true, Ext: ".ffx"},
	{Offset: 0, Magics: []string{"FSSL"}, CaseInsensitive: true, Ext: ".esd"},
	{Offset: 1, Magics: []string{"PNG"}, Ext: ".png"},
	{Offset: 1, Magics: []string{"Lua"}, Ext: ".lc"},
	{Offset: 8, Magics: []string{"FEV FMT "}, Ext: ".fev"},
	{Offset: 12, Magics: []string{"ITLIMITER_INFO"}, Ext: ".itl"},
	{Offset: 32, Magics: []string{"#ANIEDIT"}, Ext: ".anc"},
	{Offset: 40, Magics: []string{"SIB "}, Ext: ".sib"},
	{Offset: 44, Magics: []string{"MTD "}, Ext: ".mtd"},
}

// matchProbe reports whether peek carries one of probe's Magics at
// probe.Offset.
func matchProbe(peek []byte, probe magicPrefixProbe) bool {
	for _, magic := range probe.Magics {
		end := probe.Offset + len(magic)
		if end > len(peek) {
			continue
		}

		chunk := peek[probe.Offset:end]
		if probe.CaseInsensitive {
			if strings.EqualFold(string(chunk), magic) {
				return true
			}
			continue
		}
		if string(chunk) == magic {
			return true
		}
	}

	return false
}

// GuessExtension inspects the leading bytes of data (already assumed to be
// an in-memory or peekable entry payload) and returns a best-guess file
// extension, recursing through one layer of DCX wrapping if present. The
// probes run in a fixed synchronous order: literal prefix/byte-offset probes
// first, then structural probes, per Open Question (i).
func GuessExtension(data []byte) string {
	peek := data
	if len(peek) > extPeekSize {
		peek = peek[:extPeekSize]
	}

	for _, probe := range prefixProbes {
		if matchProbe(peek, probe) {
			return probe.Ext
		}
	}

	if ext, ok := structuralGuess(peek, data); ok {
		return ext
	}

	if isDCX(peek) {
		decoded, err := DecompressDCX(bytes.NewReader(data))
		if err == nil {
			inner, rerr := io.ReadAll(decoded)
			if rerr == nil {
				return GuessExtension(inner) + ".dcx"
			}
		}
	}

	return ""
}

// structuralGuess runs the format-specific structural probes, in order:
// FMG, PARAM, PARAMDEF, PARAMBND (dbp), MSB, TDF (Shift-JIS text heuristic).
func structuralGuess(peek, full []byte) (string, bool) {
	switch {
	case isFMG(peek):
		return ".fmg", true
	case isParam(peek):
		return ".param", true
	case isParamdef(peek):
		return ".paramdef", true
	case isParamdbp(peek):
		return ".dbp", true
	case isMSB(peek):
		return ".msb", true
	case isTDF(full):
		return ".tdf", true
	}

	return "", false
}

func isFMG(peek []byte) bool {
	return bytes.HasPrefix(peek, []byte("FMG\x00")) || bytes.HasPrefix(peek, []byte("\x00\x00\x00\x01FMG"))
}

func isParam(peek []byte) bool {
	return len(peek) >= 4 && bytes.Equal(peek[:2], []byte{0x00, 0x00}) && bytes.HasPrefix(peek[4:], []byte("PARAM"))
}

func isParamdef(peek []byte) bool {
	return bytes.HasPrefix(peek, []byte("PARAMDEF"))
}

func isParamdbp(peek []byte) bool {
	return bytes.HasPrefix(peek, []byte("PARAMDBP"))
}

// isMSB reads a signed 32-bit length at offset 4, retrying with the opposite
// byte order if the first reading doesn't land inside the buffer, then
// checks for the "MODEL_PARAM_ST" marker at the resolved offset.
func isMSB(peek []byte) bool {
	if len(peek) < 8 {
		return false
	}

	offset := int32(binary.LittleEndian.Uint32(peek[4:8]))
	if offset < 0 || int(offset) >= len(peek) {
		offset = int32(binary.BigEndian.Uint32(peek[4:8]))
	}
	if offset < 0 || int(offset) >= len(peek) {
		return false
	}

	const want = "MODEL_PARAM_ST"
	end := int(offset) + len(want)
	if end > len(peek) {
		return false
	}

	return string(peek[offset:end]) == want
}

// isTDF decodes full as Shift-JIS and checks for a leading quoted string: the
// first decoded character must be a double quote, followed somewhere later
// by another double quote immediately followed by "\r\n".
func isTDF(full []byte) bool {
	if len(full) < 4 {
		return false
	}

	r := transform.NewReader(bytes.NewReader(full), japanese.ShiftJIS.NewDecoder())
	br := bufio.NewReader(r)

	first, _, err := br.ReadRune()
	if err != nil || first != '"' {
		return false
	}

	for {
		c, _, err := br.ReadRune()
		if err != nil {
			return false
		}
		if c != '"' {
			continue
		}

		c2, _, err := br.ReadRune()
		if err != nil || c2 != '\r' {
			continue
		}
		c3, _, err := br.ReadRune()
		if err != nil || c3 != '\n' {
			continue
		}

		return true
	}
}

// isDCX reports whether peek holds a full DCX container header starting with
// the DCX magic.
func isDCX(peek []byte) bool {
	return len(peek) >= dcxContainerHeaderSize && bytes.Equal(peek[:4], dcxMagic[:])
}

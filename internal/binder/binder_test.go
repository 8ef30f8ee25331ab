// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package binder

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildBND3 constructs a minimal, syntactically valid BND3 archive with the
// given entry names (payloads are empty; PeekEntryNames never reads them).
func buildBND3(t *testing.T, names []string) []byte {
	t.Helper()

	const headerSize = bnd3FixedHeaderSize
	entriesSize := len(names) * bnd3EntrySize

	nameTableOffset := headerSize + entriesSize
	var nameTable bytes.Buffer
	nameOffsets := make([]uint64, len(names))
	for i, n := range names {
		nameOffsets[i] = uint64(nameTableOffset + nameTable.Len())
		nameTable.WriteString(n)
		nameTable.WriteByte(0)
	}

	var buf bytes.Buffer
	buf.WriteString(magicBND3)
	buf.Write(make([]byte, 8)) // bytes 4..12: version/flags, unused by the peek
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(names)))
	buf.Write(countBuf[:])             // bytes 12..16: entry count
	buf.Write(make([]byte, headerSize-buf.Len()))

	for _, off := range nameOffsets {
		rec := make([]byte, bnd3EntrySize)
		binary.LittleEndian.PutUint64(rec[8:16], off)
		buf.Write(rec)
	}

	buf.Write(nameTable.Bytes())

	return buf.Bytes()
}

func TestPeekEntryNamesBND3(t *testing.T) {
	t.Parallel()

	names := []string{"chr/c0000.anibnd", "chr/c0000.texbnd", "chr/c0000.hkxbnd"}
	data := buildBND3(t, names)

	got, err := PeekEntryNames(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("PeekEntryNames: %v", err)
	}

	if len(got) != len(names) {
		t.Fatalf("len(got)=%d, want %d", len(got), len(names))
	}
	for i, n := range names {
		if got[i] != n {
			t.Fatalf("got[%d]=%q, want %q", i, got[i], n)
		}
	}
}

func TestPeekEntryNamesRejectsUnknownMagic(t *testing.T) {
	t.Parallel()

	_, err := PeekEntryNames(bytes.NewReader([]byte("NOPE rest of garbage")))
	if err == nil {
		t.Fatalf("expected error for unrecognized magic")
	}
}

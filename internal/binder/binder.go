// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

// Package binder is a minimal, reader-only BND3/BND4 peek collaborator. It
// exists to answer one question for the outer package: "what entry names
// does this monolithic binder archive contain", so the folder guesser can
// pick the most frequent inner extension. Anything without a BND3/BND4
// magic is rejected with ErrNotABinder; the divided unpacker does not call
// this package. It never writes, never decompresses entry payloads,
// and never resolves a BXF3/BXF4 split header/data pair.
package binder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrNotABinder means the data does not start with a recognized BND magic.
var ErrNotABinder = errors.New("binder: not a BND3/BND4 archive")

const (
	magicBND3 = "BND3"
	magicBND4 = "BND4"
)

// PeekEntryNames reads just enough of r to return the ordered list of entry
// names in a BND3 or BND4 archive, without touching entry payload bytes.
func PeekEntryNames(r io.ReaderAt) ([]string, error) {
	var magic [4]byte
	if _, err := r.ReadAt(magic[:], 0); err != nil {
		return nil, fmt.Errorf("binder: read magic: %w", err)
	}

	switch string(magic[:]) {
	case magicBND3:
		return peekBND3(r)
	case magicBND4:
		return peekBND4(r)
	default:
		return nil, ErrNotABinder
	}
}

// bnd3FixedHeaderSize is the fixed portion of a BND3 header up to and
// including the entry count and header size fields.
const bnd3FixedHeaderSize = 32

// bnd3EntrySize is the fixed size of one BND3 entry record.
const bnd3EntrySize = 16

func peekBND3(r io.ReaderAt) ([]string, error) {
	head := make([]byte, bnd3FixedHeaderSize)
	if _, err := r.ReadAt(head, 0); err != nil {
		return nil, fmt.Errorf("binder: read BND3 header: %w", err)
	}

	count := binary.LittleEndian.Uint32(head[12:16])
	firstEntryOffset := int64(bnd3FixedHeaderSize)

	return readEntryNames(r, firstEntryOffset, int(count), bnd3EntrySize, 8, 4)
}

// bnd4FixedHeaderSize is the fixed portion of a BND4 header (wider counters
// than BND3) up to the first entry record.
const bnd4FixedHeaderSize = 64

// bnd4EntrySize is the fixed size of one BND4 entry record.
const bnd4EntrySize = 24

func peekBND4(r io.ReaderAt) ([]string, error) {
	head := make([]byte, bnd4FixedHeaderSize)
	if _, err := r.ReadAt(head, 0); err != nil {
		return nil, fmt.Errorf("binder: read BND4 header: %w", err)
	}

	count := binary.LittleEndian.Uint32(head[12:16])
	firstEntryOffset := int64(bnd4FixedHeaderSize)

	return readEntryNames(r, firstEntryOffset, int(count), bnd4EntrySize, 12, 8)
}

// readEntryNames reads count fixed-size entry records starting at offset,
// extracting a little-endian name-offset field (at nameOffsetPos within
// each record) and following it to a null-terminated name. nameLenHint is
// not used; names are read until their terminating NUL or end of input.
func readEntryNames(r io.ReaderAt, offset int64, count, entrySize, nameOffsetPos, nameLenHint int) ([]string, error) {
	if count < 0 || count > 1<<20 {
		return nil, fmt.Errorf("binder: implausible entry count %d", count)
	}

	names := make([]string, 0, count)
	record := make([]byte, entrySize)

	for i := 0; i < count; i++ {
		if _, err := r.ReadAt(record, offset+int64(i)*int64(entrySize)); err != nil {
			return nil, fmt.Errorf("binder: read entry %d: %w", i, err)
		}

		nameOffset := binary.LittleEndian.Uint64(padTo8(record[nameOffsetPos:min(len(record), nameOffsetPos+8)]))

		name, err := readCString(r, int64(nameOffset))
		if err != nil {
			return nil, fmt.Errorf("binder: read name for entry %d: %w", i, err)
		}

		names = append(names, name)
	}

	return names, nil
}

// readCString reads a null-terminated ASCII/UTF-8 string at offset.
func readCString(r io.ReaderAt, offset int64) (string, error) {
	const chunk = 256
	buf := make([]byte, 0, chunk)
	tmp := make([]byte, chunk)

	for {
		n, err := r.ReadAt(tmp, offset+int64(len(buf)))
		if n == 0 && err != nil {
			if len(buf) > 0 {
				break
			}
			return "", err
		}

		for i := 0; i < n; i++ {
			if tmp[i] == 0 {
				return string(buf[:len(buf)]) + string(tmp[:i]), nil
			}
		}
		buf = append(buf, tmp[:n]...)

		if err == io.EOF {
			break
		}
	}

	return string(buf), nil
}

// padTo8 right-pads (or truncates) b to exactly 8 bytes for a safe
// binary.LittleEndian.Uint64 read of a field narrower than 8 bytes.
func padTo8(b []byte) []byte {
	if len(b) >= 8 {
		return b[:8]
	}

	out := make([]byte, 8)
	copy(out, b)
	return out
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

// Package bhd5codec is the binary codec for a .bhd header file: the fixed
// preamble, the per-bucket directory, and the flat run of per-entry bucket
// records it points into. It knows nothing about paths, dictionaries, or
// crypto; the outer package hands it already-hashed, already-bucketed
// entries and gets them back the same shape.
package bhd5codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrBadMagic means the input does not start with the BHD5 magic.
var ErrBadMagic = errors.New("bhd5codec: bad magic")

// ErrTruncated means the input ended before a required section was fully
// read.
var ErrTruncated = errors.New("bhd5codec: truncated header")

var magic = [4]byte{'B', 'H', 'D', '5'}

const (
	endianLittle = 'L'
	endianBig    = 'B'
)

// entryRecordSize is the fixed on-disk size of one bucket entry record:
// hash(8) + offset(8) + unpadded length(8) + padded length(8).
const entryRecordSize = 32

// bucketDirEntrySize is the fixed on-disk size of one bucket directory slot:
// absolute byte offset(4) + entry count(4) into the entry record area.
const bucketDirEntrySize = 8

// Entry is one bucket-table slot record.
type Entry struct {
	Hash           uint64
	Offset         int64
	UnpaddedLength int64
	PaddedLength   int64
}

// Header is the full decoded/encodable contents of a .bhd file: a version
// tag, format flags, and the bucket table with each bucket's entries already
// grouped and ordered as they should appear on disk.
type Header struct {
	Version   string
	BigEndian bool
	Bit64     bool
	Buckets   [][]Entry
}

// recordBufPool reuses fixed-size entry record buffers across Encode/Decode
// calls.
var recordBufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, entryRecordSize)
		return &buf
	},
}

func (h Header) byteOrder() binary.ByteOrder {
	if h.BigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// Encode writes h to w: a fixed preamble, the bucket directory, then the
// concatenated per-bucket entry record runs.
func Encode(w io.Writer, h Header) error {
	order := h.byteOrder()
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(magic[:]); err != nil {
		return fmt.Errorf("bhd5codec: write magic: %w", err)
	}

	endianByte := byte(endianLittle)
	if h.BigEndian {
		endianByte = endianBig
	}
	if err := bw.WriteByte(endianByte); err != nil {
		return fmt.Errorf("bhd5codec: write endian marker: %w", err)
	}
	if _, err := bw.Write(make([]byte, 3)); err != nil {
		return fmt.Errorf("bhd5codec: write reserved: %w", err)
	}

	if len(h.Version) > 1<<20 {
		return fmt.Errorf("bhd5codec: implausible version length %d", len(h.Version))
	}
	var u32 [4]byte
	order.PutUint32(u32[:], uint32(len(h.Version)))
	if _, err := bw.Write(u32[:]); err != nil {
		return fmt.Errorf("bhd5codec: write version length: %w", err)
	}
	if _, err := bw.WriteString(h.Version); err != nil {
		return fmt.Errorf("bhd5codec: write version: %w", err)
	}

	bit64Byte := byte(0)
	if h.Bit64 {
		bit64Byte = 1
	}
	if err := bw.WriteByte(bit64Byte); err != nil {
		return fmt.Errorf("bhd5codec: write bit64 flag: %w", err)
	}
	if _, err := bw.Write(make([]byte, 3)); err != nil {
		return fmt.Errorf("bhd5codec: write reserved: %w", err)
	}

	order.PutUint32(u32[:], uint32(len(h.Buckets)))
	if _, err := bw.Write(u32[:]); err != nil {
		return fmt.Errorf("bhd5codec: write bucket count: %w", err)
	}

	preambleSize := 4 + 1 + 3 + 4 + len(h.Version) + 1 + 3 + 4
	directorySize := len(h.Buckets) * bucketDirEntrySize
	recordAreaOffset := preambleSize + directorySize

	offset := recordAreaOffset
	for _, bucket := range h.Buckets {
		order.PutUint32(u32[:], uint32(offset))
		if _, err := bw.Write(u32[:]); err != nil {
			return fmt.Errorf("bhd5codec: write bucket directory entry: %w", err)
		}
		var count [4]byte
		order.PutUint32(count[:], uint32(len(bucket)))
		if _, err := bw.Write(count[:]); err != nil {
			return fmt.Errorf("bhd5codec: write bucket directory entry: %w", err)
		}

		offset += len(bucket) * entryRecordSize
	}

	for _, bucket := range h.Buckets {
		for _, e := range bucket {
			recPtr := recordBufPool.Get().(*[]byte)
			rec := *recPtr

			order.PutUint64(rec[0:8], e.Hash)
			order.PutUint64(rec[8:16], uint64(e.Offset))
			order.PutUint64(rec[16:24], uint64(e.UnpaddedLength))
			order.PutUint64(rec[24:32], uint64(e.PaddedLength))

			_, err := bw.Write(rec)
			recordBufPool.Put(recPtr)
			if err != nil {
				return fmt.Errorf("bhd5codec: write entry record: %w", err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("bhd5codec: flush: %w", err)
	}

	return nil
}

// Decode parses a .bhd file previously produced by Encode back into a
// Header, buffering reads and reusing fixed-size record buffers across
// buckets.
func Decode(r io.Reader) (Header, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	var gotMagic [4]byte
	if _, err := io.ReadFull(br, gotMagic[:]); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if gotMagic != magic {
		return Header{}, ErrBadMagic
	}

	endianByte, err := br.ReadByte()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	h := Header{BigEndian: endianByte == endianBig}
	order := h.byteOrder()

	if _, err := io.CopyN(io.Discard, br, 3); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	var u32 [4]byte
	if _, err := io.ReadFull(br, u32[:]); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	versionLen := order.Uint32(u32[:])
	if versionLen > 1<<20 {
		return Header{}, fmt.Errorf("bhd5codec: implausible version length %d", versionLen)
	}

	versionBuf := make([]byte, versionLen)
	if _, err := io.ReadFull(br, versionBuf); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	h.Version = string(versionBuf)

	bit64Byte, err := br.ReadByte()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	h.Bit64 = bit64Byte != 0
	if _, err := io.CopyN(io.Discard, br, 3); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	if _, err := io.ReadFull(br, u32[:]); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	bucketCount := order.Uint32(u32[:])

	counts := make([]uint32, bucketCount)
	dirEntry := make([]byte, bucketDirEntrySize)
	for i := range counts {
		if _, err := io.ReadFull(br, dirEntry); err != nil {
			return Header{}, fmt.Errorf("%w: bucket directory entry %d: %v", ErrTruncated, i, err)
		}
		// offset field is re-derivable from running counts and isn't needed
		// by the sequential reader below; only the per-bucket count is.
		counts[i] = order.Uint32(dirEntry[4:8])
	}

	h.Buckets = make([][]Entry, bucketCount)
	for i, count := range counts {
		bucket := make([]Entry, count)
		for j := range bucket {
			recPtr := recordBufPool.Get().(*[]byte)
			rec := *recPtr

			if _, err := io.ReadFull(br, rec); err != nil {
				recordBufPool.Put(recPtr)
				return Header{}, fmt.Errorf("%w: entry record: %v", ErrTruncated, err)
			}

			bucket[j] = Entry{
				Hash:           order.Uint64(rec[0:8]),
				Offset:         int64(order.Uint64(rec[8:16])),
				UnpaddedLength: int64(order.Uint64(rec[16:24])),
				PaddedLength:   int64(order.Uint64(rec[24:32])),
			}

			recordBufPool.Put(recPtr)
		}

		h.Buckets[i] = bucket
	}

	return h, nil
}

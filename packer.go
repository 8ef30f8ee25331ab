// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"syscall"

	"github.com/google/vectorio"
)

// PackInput describes one file to add to an archive: its archive path and a
// function opening its content.
type PackInput struct {
	Path string
	Open func() (io.ReadCloser, error)
}

// packBufferPool reuses copy buffers across packed entries, mirroring the
// teacher's writer buffer pool.
var packBufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, DefaultWriteBuffer)
		return &buf
	},
}

// Packer streams a set of inputs into a fresh .bdt data file and builds the
// in-memory Binder (header/bucket table) describing them; callers then
// encode that Binder to a .bhd file with internal/bhd5codec.
type Packer struct {
	opts PackOptions
}

// NewPacker creates a Packer with the given tuning options.
func NewPacker(opts PackOptions) *Packer {
	return &Packer{opts: opts.applyDefaults()}
}

// Pack streams every input into dataPath sequentially and returns the
// resulting Binder. The 16-byte DataHeader is written exactly once, at
// data-file-open time, ahead of every entry's payload.
func (p *Packer) Pack(dataPath string, inputs []PackInput) (*Binder, error) {
	out, err := os.Create(dataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: create data file: %v", ErrIO, err)
	}
	defer func() { _ = out.Close() }()

	header := DataHeader{Generation: p.opts.Generation}
	encodedHeader, err := header.Encode()
	if err != nil {
		return nil, err
	}
	if _, err := out.Write(encodedHeader[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	entries := make([]EntryHeader, 0, len(inputs))
	offset := int64(dataHeaderSize)

	for i, in := range inputs {
		rc, err := in.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrIO, in.Path, err)
		}

		payloadOffset := offset

		bufPtr := packBufferPool.Get().(*[]byte)
		written, copyErr := io.CopyBuffer(out, rc, *bufPtr)
		packBufferPool.Put(bufPtr)
		closeErr := rc.Close()

		if copyErr != nil {
			return nil, fmt.Errorf("%w: copy %s: %v", ErrIO, in.Path, copyErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("%w: close %s: %v", ErrIO, in.Path, closeErr)
		}

		padded, err := padEntry(out, written, p.opts.Alignment)
		if err != nil {
			return nil, fmt.Errorf("%w: pad %s: %v", ErrIO, in.Path, err)
		}

		normalized := NormalizePath(in.Path)
		hash := uint64(Hash32(normalized))
		if p.opts.Generation.usesBit64Hash() {
			hash = Hash64(normalized)
		}

		entries = append(entries, EntryHeader{
			Path:           normalized,
			Hash:           hash,
			Offset:         payloadOffset,
			UnpaddedLength: written,
			PaddedLength:   padded,
		})

		offset = payloadOffset + padded
		if p.opts.OnEntryDone != nil {
			p.opts.OnEntryDone(in.Path, i+1, len(inputs))
		}
	}

	bucket := NewBucketInfo(len(entries), p.opts.BucketDistribution, p.opts.Generation.usesBit64Hash())

	return &Binder{
		Entries:    entries,
		BigEndian:  p.opts.BigEndian,
		Bucket:     bucket,
		Generation: p.opts.Generation,
	}, nil
}

// padEntry writes zero bytes after an entry's unpaddedLength bytes until the
// entry's own length reaches the next multiple of alignment, returning the
// resulting padded length. alignment <= 1 disables padding entirely.
func padEntry(w io.Writer, unpaddedLength, alignment int64) (int64, error) {
	if alignment <= 1 {
		return unpaddedLength, nil
	}

	padded := ((unpaddedLength + alignment - 1) / alignment) * alignment
	if padLen := padded - unpaddedLength; padLen > 0 {
		if _, err := w.Write(make([]byte, padLen)); err != nil {
			return 0, err
		}
	}

	return padded, nil
}

// PackAsync is a context-cancellable variant of Pack that repeats Pack's
// per-entry logic in its own loop (the two do not share a common helper),
// adding a cancellation check before each entry and a progress report
// after it; it cannot parallelize the data-file writes themselves
// (a single sequential file offset is inherent to the split .bdt layout)
// but allows the caller to observe progress and cancel between entries.
func (p *Packer) PackAsync(ctx context.Context, dataPath string, inputs []PackInput, progress func(float64)) (*Binder, error) {
	out, err := os.Create(dataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: create data file: %v", ErrIO, err)
	}
	defer func() { _ = out.Close() }()

	header := DataHeader{Generation: p.opts.Generation}
	encodedHeader, err := header.Encode()
	if err != nil {
		return nil, err
	}
	if _, err := out.Write(encodedHeader[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	entries := make([]EntryHeader, 0, len(inputs))
	offset := int64(dataHeaderSize)

	for i, in := range inputs {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w", ErrCancelled)
		default:
		}

		rc, err := in.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrIO, in.Path, err)
		}

		payloadOffset := offset

		bufPtr := packBufferPool.Get().(*[]byte)
		written, copyErr := io.CopyBuffer(out, rc, *bufPtr)
		packBufferPool.Put(bufPtr)
		closeErr := rc.Close()

		if copyErr != nil {
			return nil, fmt.Errorf("%w: copy %s: %v", ErrIO, in.Path, copyErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("%w: close %s: %v", ErrIO, in.Path, closeErr)
		}

		padded, err := padEntry(out, written, p.opts.Alignment)
		if err != nil {
			return nil, fmt.Errorf("%w: pad %s: %v", ErrIO, in.Path, err)
		}

		normalized := NormalizePath(in.Path)
		hash := uint64(Hash32(normalized))
		if p.opts.Generation.usesBit64Hash() {
			hash = Hash64(normalized)
		}

		entries = append(entries, EntryHeader{
			Path:           normalized,
			Hash:           hash,
			Offset:         payloadOffset,
			UnpaddedLength: written,
			PaddedLength:   padded,
		})

		offset = payloadOffset + padded
		if p.opts.OnEntryDone != nil {
			p.opts.OnEntryDone(in.Path, i+1, len(inputs))
		}
		if progress != nil {
			progress(float64(i+1) / float64(len(inputs)))
		}
	}

	bucket := NewBucketInfo(len(entries), p.opts.BucketDistribution, p.opts.Generation.usesBit64Hash())

	return &Binder{
		Entries:    entries,
		BigEndian:  p.opts.BigEndian,
		Bucket:     bucket,
		Generation: p.opts.Generation,
	}, nil
}

// bucketTableEntrySize is the fixed on-disk size of one bucket-table slot
// record: hash(8) + offset(8) + unpadded length(8) + padded length(8).
const bucketTableEntrySize = 32

// WriteBucketTable flushes a Binder's hashed bucket table to w in one
// batched vectored write: the bucket table is grouped by slot, and every
// slot's record run is handed to a single writev(2) call instead of one
// Write call per record, the same pattern the pack's own index writer uses
// for its skip list.
func WriteBucketTable(w *os.File, b *Binder) error {
	order := b.byteOrder()

	slots := make([][]EntryHeader, b.Bucket.Count)
	for _, e := range b.Entries {
		idx := b.Bucket.Index(e.Hash)
		slots[idx] = append(slots[idx], e)
	}

	bufs := make([][]byte, 0, len(b.Entries))
	for _, slot := range slots {
		sort.Slice(slot, func(i, j int) bool { return slot[i].Hash < slot[j].Hash })
		for _, e := range slot {
			rec := make([]byte, bucketTableEntrySize)
			order.PutUint64(rec[0:8], e.Hash)
			order.PutUint64(rec[8:16], uint64(e.Offset))
			order.PutUint64(rec[16:24], uint64(e.UnpaddedLength))
			order.PutUint64(rec[24:32], uint64(e.PaddedLength))

			bufs = append(bufs, rec)
		}
	}

	if len(bufs) == 0 {
		return nil
	}

	iovecs := make([]syscall.Iovec, len(bufs))
	for i, rec := range bufs {
		iovecs[i] = syscall.Iovec{Base: &rec[0], Len: uint64(len(rec))}
	}

	// IOV_MAX is 1024 on every platform this package targets; chunk the
	// vectored write to stay under it regardless of bucket-table size.
	const maxIovecsPerCall = 1024
	fd := uintptr(w.Fd())
	for off := 0; off < len(iovecs); off += maxIovecsPerCall {
		end := off + maxIovecsPerCall
		if end > len(iovecs) {
			end = len(iovecs)
		}

		if _, err := vectorio.WritevRaw(fd, iovecs[off:end]); err != nil {
			return fmt.Errorf("%w: writev bucket table: %v", ErrIO, err)
		}
	}

	return nil
}

// byteOrder returns the binary.ByteOrder matching Binder.BigEndian.
func (b *Binder) byteOrder() binary.ByteOrder {
	if b.BigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

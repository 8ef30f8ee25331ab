// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/soulsmods/bhd5/internal/bhd5codec"
)

// unknownPathPrefix names an entry whose path could not be resolved from a
// dictionary.
const unknownPathPrefix = "_unknown/"

// unknownPath formats the placeholder path for an entry known only by hash.
func unknownPath(hash uint64) string {
	return fmt.Sprintf("%s%d", unknownPathPrefix, hash)
}

// WriteHeader encodes b's bucket table to a .bhd file at path, grouping
// entries into b.Bucket.Count buckets and sorting each bucket by hash, the
// same layout WriteBucketTable's flat flush produces but wrapped in a
// self-describing, independently parseable header.
func WriteHeader(path string, b *Binder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create header file: %v", ErrIO, err)
	}
	defer func() { _ = f.Close() }()

	header := bhd5codec.Header{
		Version:   b.Version,
		BigEndian: b.BigEndian,
		Bit64:     b.Bucket.Bit64,
		Buckets:   groupEntriesByBucket(b),
	}

	if err := bhd5codec.Encode(f, header); err != nil {
		return fmt.Errorf("%w: encode header: %v", ErrIO, err)
	}

	return f.Close()
}

// groupEntriesByBucket assigns every entry of b to its bucket slot and
// sorts each slot's entries by hash, matching WriteBucketTable's ordering.
func groupEntriesByBucket(b *Binder) [][]bhd5codec.Entry {
	buckets := make([][]bhd5codec.Entry, b.Bucket.Count)
	for _, e := range b.Entries {
		idx := b.Bucket.Index(e.Hash)
		buckets[idx] = append(buckets[idx], bhd5codec.Entry{
			Hash:           e.Hash,
			Offset:         e.Offset,
			UnpaddedLength: e.UnpaddedLength,
			PaddedLength:   e.PaddedLength,
		})
	}

	for _, bucket := range buckets {
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Hash < bucket[j].Hash })
	}

	return buckets
}

// ReadHeader decodes a .bhd file at path into a Binder. Entries are returned
// in bucket order (not original pack order) with NameIsHash set and Path
// synthesized from the hash; call ResolveNames with a HashDictionary to
// recover real paths.
func ReadHeader(path string) (*Binder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open header file: %v", ErrIO, err)
	}
	defer func() { _ = f.Close() }()

	return decodeBinder(f)
}

// ReadEncryptedHeader decodes a .bhd file at path that is wrapped in the
// legacy raw-RSA header envelope, decrypting it with dec before parsing.
func ReadEncryptedHeader(path string, dec *HeaderDecryptor) (*Binder, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read header file: %v", ErrIO, err)
	}

	plain, err := dec.DecryptBlocks(raw)
	if err != nil {
		return nil, err
	}

	return decodeBinder(bytes.NewReader(plain))
}

func decodeBinder(r io.Reader) (*Binder, error) {
	decoded, err := bhd5codec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}

	var entries []EntryHeader
	for _, bucket := range decoded.Buckets {
		for _, e := range bucket {
			entries = append(entries, EntryHeader{
				Path:           unknownPath(e.Hash),
				Hash:           e.Hash,
				Offset:         e.Offset,
				UnpaddedLength: e.UnpaddedLength,
				PaddedLength:   e.PaddedLength,
				NameIsHash:     true,
			})
		}
	}

	return &Binder{
		Entries:   entries,
		BigEndian: decoded.BigEndian,
		Version:   decoded.Version,
		Bucket: BucketInfo{
			Count: uint32(len(decoded.Buckets)),
			Bit64: decoded.Bit64,
		},
	}, nil
}

// ResolveNames fills in Path and clears NameIsHash for every entry of b
// whose hash is present in dict, leaving unresolved entries untouched.
func ResolveNames(b *Binder, dict *HashDictionary) {
	for i, e := range b.Entries {
		if !e.NameIsHash {
			continue
		}
		if path, ok := dict.Get(e.Hash); ok {
			b.Entries[i].Path = path
			b.Entries[i].NameIsHash = false
		}
	}
}

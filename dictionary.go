// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/woozymasta/lzss"
)

// HashDictionary is a reverse map from path hash to normalized path, used to
// recover EntryHeader.Path for entries whose archive index only stores a
// hash. It also detects and rejects malformed or ambiguous name lists.
type HashDictionary struct {
	bit64  bool
	byHash map[uint64]string
}

// NewHashDictionary returns an empty dictionary keyed on the 32-bit or
// 64-bit path hash table, per opts.Bit64.
func NewHashDictionary(opts DictionaryOptions) *HashDictionary {
	opts = opts.applyDefaults()
	return &HashDictionary{
		bit64:  opts.Bit64,
		byHash: make(map[uint64]string),
	}
}

// Add inserts path into the dictionary, returning ErrHashCollision if its
// hash already maps to a different path and ErrDuplicateValue if the exact
// same path was already present.
func (d *HashDictionary) Add(path string) error {
	normalized := NormalizePath(path)
	hash := d.hashOf(normalized)

	if existing, ok := d.byHash[hash]; ok {
		if existing == normalized {
			return fmt.Errorf("%w: %q", ErrDuplicateValue, normalized)
		}

		return fmt.Errorf("%w: %q and %q both hash to %d", ErrHashCollision, existing, normalized, hash)
	}

	d.byHash[hash] = normalized
	return nil
}

// TryAdd is Add without returning an error on duplicate/collision: it
// reports success via its bool return instead.
func (d *HashDictionary) TryAdd(path string) bool {
	return d.Add(path) == nil
}

// RemoveByHash deletes the entry for hash, if present.
func (d *HashDictionary) RemoveByHash(hash uint64) {
	delete(d.byHash, hash)
}

// RemoveByPath deletes the entry for path, if present.
func (d *HashDictionary) RemoveByPath(path string) {
	d.RemoveByHash(d.hashOf(NormalizePath(path)))
}

// ContainsHash reports whether hash has a mapped path.
func (d *HashDictionary) ContainsHash(hash uint64) bool {
	_, ok := d.byHash[hash]
	return ok
}

// ContainsPath reports whether path is present (by its computed hash).
func (d *HashDictionary) ContainsPath(path string) bool {
	return d.ContainsHash(d.hashOf(NormalizePath(path)))
}

// Get returns the path mapped to hash, if any.
func (d *HashDictionary) Get(hash uint64) (string, bool) {
	p, ok := d.byHash[hash]
	return p, ok
}

// Values returns every path currently in the dictionary, in unspecified order.
func (d *HashDictionary) Values() []string {
	out := make([]string, 0, len(d.byHash))
	for _, p := range d.byHash {
		out = append(out, p)
	}

	return out
}

// Hashes returns every hash currently in the dictionary, in unspecified order.
func (d *HashDictionary) Hashes() []uint64 {
	out := make([]uint64, 0, len(d.byHash))
	for h := range d.byHash {
		out = append(out, h)
	}

	return out
}

// Clear removes every entry.
func (d *HashDictionary) Clear() {
	d.byHash = make(map[uint64]string)
}

func (d *HashDictionary) hashOf(normalized string) uint64 {
	if d.bit64 {
		return Hash64(normalized)
	}

	return uint64(Hash32(normalized))
}

// FromPath builds a dictionary from a single line-oriented name-list file:
// one normalized path per line, blank lines ignored, lines starting with "#"
// treated as multi-dictionary terminators and skipped.
func FromPath(r io.Reader, opts DictionaryOptions) (*HashDictionary, error) {
	d := NewHashDictionary(opts)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := d.Add(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	return d, nil
}

// FromMulti builds a dictionary by concatenating multiple name-list readers
// in order, each separated internally by "#"-prefixed terminator lines per
// FromPath.
func FromMulti(readers []io.Reader, opts DictionaryOptions) (*HashDictionary, error) {
	d := NewHashDictionary(opts)

	for _, r := range readers {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			if err := d.Add(line); err != nil {
				return nil, err
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
	}

	return d, nil
}

// dictionaryCacheMagic identifies an LZSS-compressed dictionary cache blob.
var dictionaryCacheMagic = [4]byte{'B', 'H', 'D', 'C'}

// SaveCache serializes the dictionary as a sequence of
// hash(8 bytes) | len(varint) | path-bytes records, LZSS-compresses the
// result, and writes a 4-byte magic plus the uncompressed length ahead of
// the compressed block.
func (d *HashDictionary) SaveCache(w io.Writer) error {
	var buf bytes.Buffer
	var varintBuf [binary.MaxVarintLen64]byte

	for hash, path := range d.byHash {
		var hashBuf [8]byte
		binary.LittleEndian.PutUint64(hashBuf[:], hash)
		buf.Write(hashBuf[:])

		n := binary.PutUvarint(varintBuf[:], uint64(len(path)))
		buf.Write(varintBuf[:n])
		buf.WriteString(path)
	}

	compressed, err := lzss.Compress(buf.Bytes(), lzss.DefaultCompressOptions())
	if err != nil {
		return fmt.Errorf("%w: compress dictionary cache: %v", ErrIO, err)
	}

	if _, err := w.Write(dictionaryCacheMagic[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(buf.Len()))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	return nil
}

// LoadCache reads back a dictionary previously written by SaveCache.
func LoadCache(r io.Reader, opts DictionaryOptions) (*HashDictionary, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if magic != dictionaryCacheMagic {
		return nil, fmt.Errorf("%w: bad dictionary cache magic", ErrMalformedEntry)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	originalLen := binary.LittleEndian.Uint32(lenBuf[:])

	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	var out bytes.Buffer
	out.Grow(int(originalLen))
	if _, err := lzss.DecompressToWriter(&out, bytes.NewReader(compressed), int(originalLen), nil); err != nil {
		return nil, fmt.Errorf("%w: decompress dictionary cache: %v", ErrIO, err)
	}

	d := NewHashDictionary(opts)
	data := out.Bytes()
	for len(data) > 0 {
		if len(data) < 8 {
			return nil, fmt.Errorf("%w: truncated dictionary cache record", ErrMalformedEntry)
		}
		hash := binary.LittleEndian.Uint64(data[:8])
		data = data[8:]

		strLen, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("%w: bad dictionary cache length", ErrMalformedEntry)
		}
		data = data[n:]

		if uint64(len(data)) < strLen {
			return nil, fmt.Errorf("%w: truncated dictionary cache path", ErrMalformedEntry)
		}
		path := string(data[:strLen])
		data = data[strLen:]

		d.byHash[hash] = path
	}

	return d, nil
}

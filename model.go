// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"github.com/opencontainers/go-digest"

	"github.com/woozymasta/pathrules"
)

// Data file magic strings. BDF4 replaces BDF3 starting with DarkSouls2 and
// running through EldenRing; older and newer generations use BDF3.
const (
	dataMagicBDF3 = "BDF3"
	dataMagicBDF4 = "BDF4"
)

// GameGeneration selects the data-header magic and default hash width for a
// Binder. The exact member set is a closed, ordered enumeration: ordering
// matters for the BDF3/BDF4 cutover check in DataHeader.Magic.
type GameGeneration int

const (
	GameUnknown GameGeneration = iota
	GameDarkSouls1
	GameDarkSouls2
	GameDarkSouls3
	GameSekiro
	GameEldenRing
	GameArmoredCore6
)

// usesBDF4 reports whether this generation writes the BDF4 data header,
// true for DarkSouls2 through EldenRing inclusive.
func (g GameGeneration) usesBDF4() bool {
	return g >= GameDarkSouls2 && g <= GameEldenRing
}

// usesBit64Hash reports whether this generation hashes paths with the
// 64-bit polynomial table instead of the 32-bit one.
func (g GameGeneration) usesBit64Hash() bool {
	return g >= GameEldenRing
}

// EntryCrypt is a per-entry decrypt capability: the raw key material plus a
// function that decrypts a buffer in place. It models the opaque "aes_key"
// capability pair entries may carry.
type EntryCrypt struct {
	Key     []byte
	Decrypt func(buf []byte) error
}

// EntryHeader describes one archive entry: a path (or "_unknown/<hash>" for
// an entry whose name was never recovered), its location and size inside the
// data file, and optional per-entry integrity/decrypt capabilities.
type EntryHeader struct {
	// Path is the normalized entry path, or "_unknown/<hash>" if NameIsHash
	// is set and no matching dictionary entry was found.
	Path string
	// Hash is the path hash used to place this entry in its bucket.
	Hash uint64
	// Offset is the byte offset of the entry payload within the data file.
	Offset int64
	// UnpaddedLength is the logical (decrypted, unpadded) entry size.
	UnpaddedLength int64
	// PaddedLength is the on-disk size, including any block-cipher padding.
	PaddedLength int64
	// ShaHash is an optional content digest for post-unpack verification.
	ShaHash digest.Digest
	// Crypt is an optional per-entry decrypt capability.
	Crypt *EntryCrypt
	// NameIsHash records that Path could not be resolved from a dictionary
	// and was synthesized from Hash.
	NameIsHash bool
	// Ignore marks an entry that packing/unpacking should skip entirely.
	Ignore bool
}

// IsEncrypted reports whether this entry carries a decrypt capability.
func (e EntryHeader) IsEncrypted() bool {
	return e.Crypt != nil
}

// DataHeader is the 16-byte prelude written once, at data-file-open time,
// ahead of every entry's payload in the data file.
type DataHeader struct {
	// Generation selects BDF3 vs BDF4 magic.
	Generation GameGeneration
	// Version is an up-to-8-byte ASCII version string, zero-padded.
	Version string
}

const dataHeaderSize = 16

// Magic returns the 4-byte magic for this header's generation.
func (h DataHeader) Magic() string {
	if h.Generation.usesBDF4() {
		return dataMagicBDF4
	}

	return dataMagicBDF3
}

// Encode writes the 16-byte data header: 4-byte magic, 8-byte zero-padded
// ASCII version, 4 reserved zero bytes.
func (h DataHeader) Encode() ([dataHeaderSize]byte, error) {
	var out [dataHeaderSize]byte
	if len(h.Version) > 8 {
		return out, ErrMalformedEntry
	}

	copy(out[0:4], h.Magic())
	copy(out[4:12], h.Version)
	// out[12:16] stays zero (reserved).

	return out, nil
}

// Binder is an in-memory archive index: an ordered list of entries plus the
// bucket table layout and format flags needed to pack or unpack it.
type Binder struct {
	// Entries is the ordered entry list.
	Entries []EntryHeader
	// BigEndian selects big-endian encoding for the header's integer fields.
	BigEndian bool
	// Version is the archive format version string.
	Version string
	// Bucket describes the hashed bucket table layout.
	Bucket BucketInfo
	// Generation selects the data header magic/hash width defaults.
	Generation GameGeneration

	// SkipUnknownFiles causes unpack to skip entries whose Path could not
	// be resolved from a dictionary (NameIsHash set).
	SkipUnknownFiles bool
	// SkipExistingFiles causes unpack to skip entries whose destination
	// file already exists on disk.
	SkipExistingFiles bool
}

// SetSelected flips Ignore on every entry whose path is not in paths, and
// clears it on every entry whose path is. Calling it with no arguments
// clears Ignore on every entry, selecting "all".
func (b *Binder) SetSelected(paths ...string) {
	if len(paths) == 0 {
		for i := range b.Entries {
			b.Entries[i].Ignore = false
		}
		return
	}

	want := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		want[NormalizePath(p)] = struct{}{}
	}

	for i := range b.Entries {
		_, ok := want[NormalizePath(b.Entries[i].Path)]
		b.Entries[i].Ignore = !ok
	}
}

// SetSelectedByRules flips Ignore the same way SetSelected does, but decides
// membership with a pathrules matcher instead of a literal path list.
// Calling it with no rules clears Ignore on
// every entry, selecting "all".
func (b *Binder) SetSelectedByRules(rules []pathrules.Rule, opts pathrules.MatcherOptions) error {
	if len(rules) == 0 {
		for i := range b.Entries {
			b.Entries[i].Ignore = false
		}
		return nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return err
	}

	for i := range b.Entries {
		b.Entries[i].Ignore = !matcher.Included(NormalizePath(b.Entries[i].Path), false)
	}

	return nil
}

// PackOptions configures Pack/PackAsync.
type PackOptions struct {
	// Generation selects the data header magic/hash width defaults.
	Generation GameGeneration `json:"generation" yaml:"generation"`
	// BigEndian selects big-endian header encoding.
	BigEndian bool `json:"big_endian" yaml:"big_endian"`
	// BucketDistribution is the target entries-per-bucket used to size the
	// bucket table (defaultBucketDistribution when 0).
	BucketDistribution int `json:"bucket_distribution" yaml:"bucket_distribution"`
	// WriterBufferSize is the copy buffer size used while streaming entry
	// payloads into the data file (DefaultWriteBuffer when 0).
	WriterBufferSize int `json:"writer_buffer_size" yaml:"writer_buffer_size"`
	// Alignment, when greater than 1, pads every entry's on-disk length up
	// to the next multiple of Alignment bytes with zero bytes; PaddedLength
	// then differs from UnpaddedLength. 0 or 1 disables padding.
	Alignment int64 `json:"alignment" yaml:"alignment"`
	// OnEntryDone, if set, is called after each entry is written.
	OnEntryDone func(path string, index, total int)
}

// DefaultWriteBuffer is the default payload copy buffer size.
const DefaultWriteBuffer = 16 * 1024 * 1024

// applyDefaults resolves zero-value fields to their defaults, returning a
// fully-populated copy.
func (o PackOptions) applyDefaults() PackOptions {
	if o.BucketDistribution <= 0 {
		o.BucketDistribution = defaultBucketDistribution
	}
	if o.WriterBufferSize <= 0 {
		o.WriterBufferSize = DefaultWriteBuffer
	}

	return o
}

// UnpackFileMode selects how Unpacker handles a destination path that
// already exists on disk.
type UnpackFileMode int

const (
	// UnpackOverwrite always truncates and rewrites the destination.
	UnpackOverwrite UnpackFileMode = iota
	// UnpackSkipExisting leaves an existing destination file untouched.
	UnpackSkipExisting
	// UnpackCreateOnly fails the entry if the destination already exists.
	UnpackCreateOnly
)

// UnpackOptions configures Unpacker/Unpack.
type UnpackOptions struct {
	// FileMode selects existing-file handling.
	FileMode UnpackFileMode `json:"file_mode" yaml:"file_mode"`
	// MaxWorkers bounds the async unpacker's concurrency (runtime.NumCPU
	// when 0).
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`
	// MaxInFlightBytes bounds the async unpacker's total in-flight decoded
	// payload size (MaxInFlightBytesDefault when 0).
	MaxInFlightBytes int64 `json:"max_in_flight_bytes" yaml:"max_in_flight_bytes"`
	// VerifyShaHash causes unpack to verify EntryHeader.ShaHash against the
	// decoded payload, when non-empty, returning ErrCryptoFailure on
	// mismatch.
	VerifyShaHash bool `json:"verify_sha_hash" yaml:"verify_sha_hash"`
	// MinSize/MinPaddedSize filter out entries below the given thresholds,
	// mirroring the size filters the packer can apply symmetrically.
	MinSize       int64 `json:"min_size" yaml:"min_size"`
	MinPaddedSize int64 `json:"min_padded_size" yaml:"min_padded_size"`
	// OnEntryDone, if set, is called after each entry is extracted.
	OnEntryDone func(path string, index, total int)
}

// MaxInFlightBytesDefault bounds the async unpacker's total decoded payload
// held in memory at once, per spec.
const MaxInFlightBytesDefault = 100 * 1024 * 1024

// applyDefaults resolves zero-value fields to their defaults, returning a
// fully-populated copy.
func (o UnpackOptions) applyDefaults() UnpackOptions {
	if o.MaxInFlightBytes <= 0 {
		o.MaxInFlightBytes = MaxInFlightBytesDefault
	}

	return o
}

// DictionaryOptions configures HashDictionary construction from a name list.
type DictionaryOptions struct {
	// Bit64 selects the 64-bit path hash table.
	Bit64 bool `json:"bit64" yaml:"bit64"`
}

// applyDefaults is a no-op placeholder kept for symmetry with the other
// options types and for forward-compatible zero-value tuning.
func (o DictionaryOptions) applyDefaults() DictionaryOptions {
	return o
}

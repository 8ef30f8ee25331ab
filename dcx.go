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

	"github.com/klauspost/compress/zlib"
	"github.com/new-world-tools/go-oodle"
)

const dcxContainerHeaderSize = 16

// dcxMagic identifies a DCX-wrapped payload.
var dcxMagic = [4]byte{'D', 'C', 'X', 0}

// DecompressDCX peeks and, if r begins with a DCX container, decompresses
// its payload fully into memory, returning a reader over the decompressed
// bytes. If r does not begin with the DCX magic, it is returned unchanged
// (wrapped to still satisfy io.Reader) so callers can probe-then-fallback.
func DecompressDCX(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, 4096)

	head, err := br.Peek(dcxContainerHeaderSize)
	if err != nil || [4]byte{head[0], head[1], head[2], head[3]} != dcxMagic {
		return br, nil
	}

	header := make([]byte, dcxContainerHeaderSize)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: read dcx container header: %v", ErrMalformedEntry, err)
	}

	var compIDAndSub [8]byte
	if _, err := io.ReadFull(br, compIDAndSub[:]); err != nil {
		return nil, fmt.Errorf("%w: read dcx sub-header: %v", ErrMalformedEntry, err)
	}
	compID := string(compIDAndSub[:4])

	var sizes [8]byte
	if _, err := io.ReadFull(br, sizes[:]); err != nil {
		return nil, fmt.Errorf("%w: read dcx sizes: %v", ErrMalformedEntry, err)
	}
	uncompressedSize := int64(binary.BigEndian.Uint32(sizes[0:4]))

	rest, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("%w: read dcx payload: %v", ErrIO, err)
	}

	switch compID {
	case "DFLT":
		zr, err := zlib.NewReader(bytes.NewReader(rest))
		if err != nil {
			return nil, fmt.Errorf("%w: dcx DFLT: %v", ErrMalformedEntry, err)
		}
		defer func() { _ = zr.Close() }()

		decoded, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: dcx DFLT decode: %v", ErrMalformedEntry, err)
		}

		return bytes.NewReader(decoded), nil

	case "KRAK":
		decoded, err := oodle.Decompress(rest, uncompressedSize)
		if err != nil {
			return nil, fmt.Errorf("%w: dcx KRAK decode: %v", ErrMalformedEntry, err)
		}

		return bytes.NewReader(decoded), nil

	default:
		return nil, fmt.Errorf("%w: unknown dcx compression id %q", ErrUnrecognizedArchive, compID)
	}
}


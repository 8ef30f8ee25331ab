// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func buildDCXContainer(t *testing.T, compID string, payload []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(dcxMagic[:])
	buf.Write(make([]byte, dcxContainerHeaderSize-4))
	buf.WriteString(compID)
	buf.Write(make([]byte, 4))

	var sizes [8]byte
	binary.BigEndian.PutUint32(sizes[0:4], uint32(len(payload)))
	buf.Write(sizes[:])

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(payload); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	buf.Write(compressed.Bytes())

	return buf.Bytes()
}

func TestDecompressDCXDeflate(t *testing.T) {
	t.Parallel()

	payload := []byte("this is the inner decompressed payload")
	container := buildDCXContainer(t, "DFLT", payload)

	r, err := DecompressDCX(bytes.NewReader(container))
	if err != nil {
		t.Fatalf("DecompressDCX: %v", err)
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestDecompressDCXPassesThroughNonDCX(t *testing.T) {
	t.Parallel()

	plain := []byte("not a dcx container at all")
	r, err := DecompressDCX(bytes.NewReader(plain))
	if err != nil {
		t.Fatalf("DecompressDCX: %v", err)
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(plain) {
		t.Fatalf("got %q, want %q", got, plain)
	}
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteHeaderReadHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "archive.bdt")
	bhdPath := filepath.Join(dir, "archive.bhd")

	p := NewPacker(PackOptions{Generation: GameEldenRing})
	inputs := []PackInput{
		newMemInput("/a.txt", []byte("hello")),
		newMemInput("/sub/b.txt", []byte("world!!")),
		newMemInput("/sub/c.txt", []byte("!")),
	}

	binder, err := p.Pack(dataPath, inputs)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	binder.Version = "er-test"

	if err := WriteHeader(bhdPath, binder); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	loaded, err := ReadHeader(bhdPath)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}

	if loaded.Version != "er-test" {
		t.Fatalf("Version=%q, want er-test", loaded.Version)
	}
	if loaded.Bucket.Count != binder.Bucket.Count {
		t.Fatalf("Bucket.Count=%d, want %d", loaded.Bucket.Count, binder.Bucket.Count)
	}
	if len(loaded.Entries) != len(binder.Entries) {
		t.Fatalf("len(Entries)=%d, want %d", len(loaded.Entries), len(binder.Entries))
	}
	for _, e := range loaded.Entries {
		if !e.NameIsHash {
			t.Fatalf("expected NameIsHash before resolution: %+v", e)
		}
	}

	dict := NewHashDictionary(DictionaryOptions{Bit64: true})
	for _, e := range binder.Entries {
		if err := dict.Add(e.Path); err != nil {
			t.Fatalf("dict.Add: %v", err)
		}
	}

	ResolveNames(loaded, dict)

	gotPaths := make(map[string]bool)
	for _, e := range loaded.Entries {
		if e.NameIsHash {
			t.Fatalf("entry %+v still unresolved after ResolveNames", e)
		}
		gotPaths[e.Path] = true
	}
	for _, want := range []string{"/a.txt", "/sub/b.txt", "/sub/c.txt"} {
		if !gotPaths[want] {
			t.Fatalf("missing resolved path %q", want)
		}
	}

	outDir := filepath.Join(dir, "out")
	u := NewUnpacker(loaded, dataPath, UnpackOptions{})
	if err := u.Unpack(outDir); err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(outDir, "sub", "b.txt"))
	if err != nil {
		t.Fatalf("read sub/b.txt: %v", err)
	}
	if string(got) != "world!!" {
		t.Fatalf("sub/b.txt=%q, want world!!", got)
	}
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.bhd")
	if err := os.WriteFile(path, []byte("NOPE0000"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := ReadHeader(path); err == nil {
		t.Fatalf("expected error for malformed header")
	}
}

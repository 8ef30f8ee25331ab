// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestUnpackerSkipsIgnoredAndUnknown(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "archive.bdt")

	p := NewPacker(PackOptions{})
	binder, err := p.Pack(dataPath, []PackInput{
		newMemInput("/keep.txt", []byte("keep")),
		newMemInput("/skip.txt", []byte("skip")),
		newMemInput("/_unknown/123", []byte("unk")),
	})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	binder.Entries[1].Ignore = true
	binder.Entries[2].NameIsHash = true
	binder.SkipUnknownFiles = true

	outDir := filepath.Join(dir, "out")
	u := NewUnpacker(binder, dataPath, UnpackOptions{})
	if err := u.Unpack(outDir); err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "keep.txt")); err != nil {
		t.Fatalf("keep.txt should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "skip.txt")); !os.IsNotExist(err) {
		t.Fatalf("skip.txt should not exist, err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "_unknown", "123")); !os.IsNotExist(err) {
		t.Fatalf("_unknown/123 should not exist, err=%v", err)
	}
}

func TestUnpackerAsyncBoundedConcurrency(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "archive.bdt")

	p := NewPacker(PackOptions{})
	var inputs []PackInput
	for i := 0; i < 20; i++ {
		inputs = append(inputs, newMemInput("/f"+string(rune('a'+i))+".bin", make([]byte, 4096)))
	}

	binder, err := p.Pack(dataPath, inputs)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	outDir := filepath.Join(dir, "out")
	u := NewUnpacker(binder, dataPath, UnpackOptions{MaxWorkers: 4, MaxInFlightBytes: 8192})

	var mu sync.Mutex
	var lastFraction float64
	err = u.UnpackAsync(context.Background(), outDir, func(f float64) {
		mu.Lock()
		lastFraction = f
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("UnpackAsync: %v", err)
	}

	mu.Lock()
	got := lastFraction
	mu.Unlock()
	if got != 1 {
		t.Fatalf("final fraction=%v, want 1", got)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 20 {
		t.Fatalf("len(entries)=%d, want 20", len(entries))
	}
}

func TestUnpackerAsyncCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "archive.bdt")

	p := NewPacker(PackOptions{})
	binder, err := p.Pack(dataPath, []PackInput{newMemInput("/a.bin", make([]byte, 16))})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := NewUnpacker(binder, dataPath, UnpackOptions{})
	if err := u.UnpackAsync(ctx, filepath.Join(dir, "out"), nil); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

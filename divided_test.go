// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDividedUnpackerSkipsFullyIgnoredBinder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	p := NewPacker(PackOptions{})
	dataA := filepath.Join(dir, "a.bdt")
	binderA, err := p.Pack(dataA, []PackInput{newMemInput("/a.txt", []byte("a"))})
	if err != nil {
		t.Fatalf("Pack a: %v", err)
	}
	binderA.Entries[0].Ignore = true

	dataB := filepath.Join(dir, "b.bdt")
	binderB, err := p.Pack(dataB, []PackInput{newMemInput("/b.txt", []byte("b"))})
	if err != nil {
		t.Fatalf("Pack b: %v", err)
	}

	du := NewDividedUnpacker([]DividedEntry{
		{Binder: binderA, DataPath: dataA},
		{Binder: binderB, DataPath: dataB},
	}, UnpackOptions{})

	outDir := filepath.Join(dir, "out")
	var lastFraction float64
	err = du.UnpackAsync(context.Background(), outDir, func(f float64) { lastFraction = f })
	if err != nil {
		t.Fatalf("UnpackAsync: %v", err)
	}

	if lastFraction != 1 {
		t.Fatalf("final fraction=%v, want 1", lastFraction)
	}

	if _, err := os.Stat(filepath.Join(outDir, "a.txt")); !os.IsNotExist(err) {
		t.Fatalf("a.txt should not have been extracted (fully ignored binder)")
	}
	if _, err := os.Stat(filepath.Join(outDir, "b.txt")); err != nil {
		t.Fatalf("b.txt should exist: %v", err)
	}
}

func TestDividedUnpackerSkipsFullyDeselectedBinder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	p := NewPacker(PackOptions{})
	dataA := filepath.Join(dir, "a.bdt")
	binderA, err := p.Pack(dataA, []PackInput{newMemInput("/a.txt", []byte("a"))})
	if err != nil {
		t.Fatalf("Pack a: %v", err)
	}
	// Selecting a path not present in the binder deselects every entry,
	// which SetSelected expresses by flipping Ignore, not a separate
	// selection filter.
	binderA.SetSelected("/does-not-exist.txt")

	dataB := filepath.Join(dir, "b.bdt")
	binderB, err := p.Pack(dataB, []PackInput{newMemInput("/b.txt", []byte("b"))})
	if err != nil {
		t.Fatalf("Pack b: %v", err)
	}

	du := NewDividedUnpacker([]DividedEntry{
		{Binder: binderA, DataPath: dataA},
		{Binder: binderB, DataPath: dataB},
	}, UnpackOptions{})

	outDir := filepath.Join(dir, "out")
	if err := du.Unpack(outDir); err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "a.txt")); !os.IsNotExist(err) {
		t.Fatalf("a.txt should not have been extracted (fully deselected binder)")
	}
	if _, err := os.Stat(filepath.Join(outDir, "b.txt")); err != nil {
		t.Fatalf("b.txt should exist: %v", err)
	}
}

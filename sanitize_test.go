// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"strings"
	"testing"
)

func TestSanitizePathSegment(t *testing.T) {
	t.Parallel()

	longName := strings.Repeat("a", 400)
	gotLong, err := sanitizePathSegment(longName)
	if err != nil {
		t.Fatalf("sanitizePathSegment(long): %v", err)
	}
	if len(gotLong) > maxSanitizedSegmentLen {
		t.Fatalf("len(long)=%d, want <= %d", len(gotLong), maxSanitizedSegmentLen)
	}
	if gotLong == longName {
		t.Fatal("long segment was not shortened")
	}

	testCases := []struct {
		in   string
		want string
	}{
		{in: "CON.txt", want: "_CON.txt"},
		{in: "  COM8.c  ", want: "_COM8.c"},
		{in: "a:b?.txt", want: "a_b_.txt"},
		{in: "name. ", want: "name"},
		{in: "AUX:", want: "_AUX_"},
		{in: "a\x1b[31m.txt", want: "a_[31m.txt"},
		{in: "a\x7fb.txt", want: "a_b.txt"},
	}

	for _, tc := range testCases {
		got, err := sanitizePathSegment(tc.in)
		if err != nil {
			t.Fatalf("sanitizePathSegment(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("sanitizePathSegment(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsReservedDeviceName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		want bool
	}{
		{name: "con", want: true},
		{name: "con.txt", want: true},
		{name: "AUX:", want: true},
		{name: "normal.txt", want: false},
		{name: "_con.txt", want: false},
	}

	for _, tc := range testCases {
		got := isReservedDeviceName(tc.name)
		if got != tc.want {
			t.Fatalf("isReservedDeviceName(%q)=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSanitizeEntryPathsCollision(t *testing.T) {
	t.Parallel()

	entries := []EntryHeader{
		{Path: "/a:b.txt"},
		{Path: "/a?b.txt"},
	}

	got, err := sanitizeEntryPaths(entries)
	if err != nil {
		t.Fatalf("sanitizeEntryPaths: %v", err)
	}
	if got[0].Path != "a_b.txt" {
		t.Fatalf("got[0]=%q, want a_b.txt", got[0].Path)
	}
	if got[1].Path != "a_b~2.txt" {
		t.Fatalf("got[1]=%q, want a_b~2.txt", got[1].Path)
	}
}

func TestSanitizeEntryPathsMangled(t *testing.T) {
	t.Parallel()

	entries := []EntryHeader{
		{Path: `..\evil.txt`},
		{Path: `scripts\4_world\COM8.c`},
	}

	got, err := sanitizeEntryPaths(entries)
	if err != nil {
		t.Fatalf("sanitizeEntryPaths: %v", err)
	}

	if got[0].Path != "evil.txt" {
		t.Fatalf("got[0]=%q, want evil.txt", got[0].Path)
	}

	// Entry paths are case-folded by NormalizePath before sanitizing.
	if got[1].Path != "scripts/4_world/_com8.c" {
		t.Fatalf("got[1]=%q, want scripts/4_world/_com8.c", got[1].Path)
	}
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import "testing"

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare", in: "a", want: "/a"},
		{name: "already rooted", in: "/a", want: "/a"},
		{name: "windows separators", in: `a\b\c`, want: "/a/b/c"},
		{name: "mixed case and padding", in: "  /A/B  ", want: "/a/b"},
		{name: "deep path", in: "map/m10_00_00_00/m10.msb", want: "/map/m10_00_00_00/m10.msb"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizePath(tc.in)
			if got != tc.want {
				t.Fatalf("NormalizePath(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

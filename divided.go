// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"context"
	"fmt"
)

// DividedEntry pairs one parsed Binder with the data file (.bdt path) it
// indexes, for DividedUnpacker.
type DividedEntry struct {
	Binder   *Binder
	DataPath string
}

// DividedUnpacker drives a list of (Binder, data file) pairs through
// Unpacker, aggregating their individual fractional progress into one
// overall fraction via a ProgressAggregator.
type DividedUnpacker struct {
	entries []DividedEntry
	opts    UnpackOptions
}

// NewDividedUnpacker creates a driver over entries, all unpacked with opts.
func NewDividedUnpacker(entries []DividedEntry, opts UnpackOptions) *DividedUnpacker {
	return &DividedUnpacker{entries: entries, opts: opts.applyDefaults()}
}

// Unpack extracts every binder's selected entries into destRoot, in order.
func (d *DividedUnpacker) Unpack(destRoot string) error {
	for i, e := range d.entries {
		if isFullyIgnored(e.Binder) {
			continue
		}

		u := NewUnpacker(e.Binder, e.DataPath, d.opts)
		if err := u.Unpack(destRoot); err != nil {
			return fmt.Errorf("unpack binder %d: %w", i, err)
		}
	}

	return nil
}

// UnpackAsync extracts every binder with one Unpacker.UnpackAsync call per
// binder; the binders run one after another, and each call unpacks its own
// entries concurrently. It reports a single combined fraction via progress. A
// binder whose every entry is ignored reports 1.0 immediately rather than
// spinning up an Unpacker for empty work.
func (d *DividedUnpacker) UnpackAsync(ctx context.Context, destRoot string, progress func(float64)) error {
	agg := NewProgressAggregator(len(d.entries), progress)

	for i, e := range d.entries {
		if isFullyIgnored(e.Binder) {
			agg.Child(i)(1)
			continue
		}

		u := NewUnpacker(e.Binder, e.DataPath, d.opts)
		if err := u.UnpackAsync(ctx, destRoot, agg.Child(i)); err != nil {
			return fmt.Errorf("unpack binder %d: %w", i, err)
		}
	}

	return nil
}

// isFullyIgnored reports whether every entry in b is marked Ignore.
func isFullyIgnored(b *Binder) bool {
	for _, e := range b.Entries {
		if !e.Ignore {
			return false
		}
	}

	return true
}

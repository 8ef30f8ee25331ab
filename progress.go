// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import "sync"

// ProgressAggregator combines N independent fractional [0,1] progress
// sources (typically one per Binder in a divided unpack) into a single
// arithmetic-mean value, updated as any child reports progress.
type ProgressAggregator struct {
	mu       sync.Mutex
	values   []float64
	onUpdate func(fraction float64)
}

// NewProgressAggregator creates an aggregator for count child sources,
// invoking onUpdate (if non-nil) with the current mean every time any child
// source reports.
func NewProgressAggregator(count int, onUpdate func(fraction float64)) *ProgressAggregator {
	return &ProgressAggregator{
		values:   make([]float64, count),
		onUpdate: onUpdate,
	}
}

// Child returns a fractional-progress callback for source index i. Calling
// it updates that source's fraction and forwards the new aggregate mean to
// onUpdate.
func (a *ProgressAggregator) Child(i int) func(fraction float64) {
	return func(fraction float64) {
		a.mu.Lock()
		if i >= 0 && i < len(a.values) {
			a.values[i] = fraction
		}
		mean := a.mean()
		a.mu.Unlock()

		if a.onUpdate != nil {
			a.onUpdate(mean)
		}
	}
}

// Fraction returns the current aggregate mean.
func (a *ProgressAggregator) Fraction() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.mean()
}

// mean computes the arithmetic mean of all child fractions. Caller must hold a.mu.
func (a *ProgressAggregator) mean() float64 {
	if len(a.values) == 0 {
		return 1
	}

	var sum float64
	for _, v := range a.values {
		sum += v
	}

	return sum / float64(len(a.values))
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/opencontainers/go-digest"
)

// Unpacker streams entries out of a Binder's data file onto disk, applying
// per-entry AES decrypt and optional digest verification along the way.
type Unpacker struct {
	binder   *Binder
	dataPath string
	opts     UnpackOptions
}

// NewUnpacker binds a parsed Binder to the data file (.bdt) it indexes.
func NewUnpacker(binder *Binder, dataPath string, opts UnpackOptions) *Unpacker {
	return &Unpacker{binder: binder, dataPath: dataPath, opts: opts.applyDefaults()}
}

// candidateEntries resolves the entry list for one unpack run: ignore
// (selection flips Ignore via SetSelected/SetSelectedByRules, see model.go),
// unknown/size/existing filters, in that order, mirroring the teacher's
// filter-then-copy extract pipeline.
func (u *Unpacker) candidateEntries(destRoot string) []EntryHeader {
	entries := filterIgnoredEntries(u.binder.Entries)
	if u.binder.SkipUnknownFiles {
		entries = filterUnknownEntries(entries)
	}
	entries = filterEntriesBySize(entries, u.opts.MinSize, u.opts.MinPaddedSize)

	if u.binder.SkipExistingFiles && destRoot != "" {
		filtered := entries[:0:0]
		for _, e := range entries {
			dest, err := normalizeExtractEntryPath(destRoot, e.Path)
			if err != nil {
				continue
			}
			if _, err := os.Stat(dest); err == nil {
				continue
			}
			filtered = append(filtered, e)
		}
		entries = filtered
	}

	return entries
}

// Unpack extracts every selected, non-filtered entry into destRoot,
// sequentially, in entry order.
func (u *Unpacker) Unpack(destRoot string) error {
	entries := u.candidateEntries(destRoot)

	f, err := os.Open(u.dataPath)
	if err != nil {
		return fmt.Errorf("%w: open data file: %v", ErrIO, err)
	}
	defer func() { _ = f.Close() }()

	for i, e := range entries {
		if err := u.unpackOne(f, destRoot, e); err != nil {
			return fmt.Errorf("unpack %s: %w", e.Path, err)
		}
		if u.opts.OnEntryDone != nil {
			u.opts.OnEntryDone(e.Path, i+1, len(entries))
		}
	}

	return nil
}

// UnpackAsync extracts the same selection concurrently, bounded both by
// MaxWorkers goroutines and by MaxInFlightBytes of decoded payload held in
// memory at once: completed entries are swept before new ones are launched,
// so the in-flight budget never grows unbounded even under uneven entry
// sizes. progress, if non-nil, receives a running fraction in [0,1].
func (u *Unpacker) UnpackAsync(ctx context.Context, destRoot string, progress func(float64)) error {
	entries := u.candidateEntries(destRoot)
	if len(entries) == 0 {
		if progress != nil {
			progress(1)
		}
		return nil
	}

	workers := u.opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu        sync.Mutex
		cond      = sync.NewCond(&mu)
		inFlight  int64
		done      int
		firstErr  error
		wg        sync.WaitGroup
		sem       = make(chan struct{}, workers)
		budget    = u.opts.MaxInFlightBytes
		nextIndex int
	)

	// Wake waiters whenever ctx is cancelled so admit can observe it.
	go func() {
		<-ctx.Done()
		cond.Broadcast()
	}()

	// admit blocks until budget allows size bytes in flight, or ctx is done.
	admit := func(size int64) bool {
		mu.Lock()
		defer mu.Unlock()

		for inFlight != 0 && inFlight+size > budget {
			select {
			case <-ctx.Done():
				return false
			default:
			}
			cond.Wait()
		}

		select {
		case <-ctx.Done():
			return false
		default:
		}

		inFlight += size
		return true
	}

	release := func(size int64) {
		mu.Lock()
		inFlight -= size
		mu.Unlock()
		cond.Broadcast()
	}

	for nextIndex < len(entries) {
		select {
		case <-ctx.Done():
			wg.Wait()
			return fmt.Errorf("%w", ErrCancelled)
		default:
		}

		e := entries[nextIndex]
		idx := nextIndex
		nextIndex++

		if !admit(e.PaddedLength) {
			wg.Wait()
			return fmt.Errorf("%w", ErrCancelled)
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(e EntryHeader, idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer release(e.PaddedLength)

			f, err := os.Open(u.dataPath)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: open data file: %v", ErrIO, err)
				}
				mu.Unlock()
				cancel()
				return
			}
			defer func() { _ = f.Close() }()

			if err := u.unpackOne(f, destRoot, e); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("unpack %s: %w", e.Path, err)
				}
				mu.Unlock()
				cancel()
				return
			}

			// Report under mu so fractions reach progress in increasing
			// order and the last report is 1.
			mu.Lock()
			done++
			if progress != nil {
				progress(float64(done) / float64(len(entries)))
			}
			mu.Unlock()

			if u.opts.OnEntryDone != nil {
				u.opts.OnEntryDone(e.Path, idx+1, len(entries))
			}
		}(e, idx)
	}

	wg.Wait()

	return firstErr
}

// unpackOne copies, decrypts, and optionally verifies a single entry.
func (u *Unpacker) unpackOne(f *os.File, destRoot string, e EntryHeader) error {
	dest, err := normalizeExtractEntryPath(destRoot, e.Path)
	if err != nil {
		return err
	}

	switch u.opts.FileMode {
	case UnpackSkipExisting:
		if _, err := os.Stat(dest); err == nil {
			return nil
		}
	case UnpackCreateOnly:
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%w: %s already exists", ErrIsAFile, dest)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	section := io.NewSectionReader(f, e.Offset, e.PaddedLength)
	buf, err := io.ReadAll(section)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	if e.Crypt != nil {
		if err := e.Crypt.Decrypt(buf); err != nil {
			return fmt.Errorf("%w: %v", ErrCryptoFailure, err)
		}
	}

	if e.UnpaddedLength >= 0 && e.UnpaddedLength <= int64(len(buf)) {
		buf = buf[:e.UnpaddedLength]
	}

	if u.opts.VerifyShaHash && e.ShaHash != "" {
		if got := digest.FromBytes(buf); got != e.ShaHash {
			return fmt.Errorf("%w: digest mismatch for %s", ErrCryptoFailure, e.Path)
		}
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := out.Write(buf); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	return nil
}

// normalizeExtractEntryPath resolves an archive entry path against destRoot,
// rejecting any result that would escape destRoot (path traversal guard).
func normalizeExtractEntryPath(destRoot, entryPath string) (string, error) {
	rel := strings.TrimPrefix(NormalizePath(entryPath), "/")
	if rel == "" {
		return "", fmt.Errorf("%w: empty entry path", ErrRooted)
	}

	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == "." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || cleaned == ".." {
		return "", fmt.Errorf("%w: %q", ErrRooted, entryPath)
	}
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %q", ErrRooted, entryPath)
	}

	if destRoot == "" {
		return cleaned, nil
	}

	return filepath.Join(destRoot, cleaned), nil
}

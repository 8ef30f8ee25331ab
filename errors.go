// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import "errors"

// Sentinel errors for BHD5 operations. Use errors.Is in callers.
var (
	// ErrNotFound means the requested path or hash has no matching entry.
	ErrNotFound = errors.New("bhd5: not found")
	// ErrNotAFile means a path expected to be a file is a directory.
	ErrNotAFile = errors.New("bhd5: not a file")
	// ErrNotADirectory means a path expected to be a directory is a file.
	ErrNotADirectory = errors.New("bhd5: not a directory")
	// ErrIsAFile means a path expected to be absent or a directory is a file.
	ErrIsAFile = errors.New("bhd5: is a file")
	// ErrIsADirectory means a path expected to be absent or a file is a directory.
	ErrIsADirectory = errors.New("bhd5: is a directory")
	// ErrRooted means an input path escapes its intended root.
	ErrRooted = errors.New("bhd5: path escapes root")
	// ErrMalformedEntry means an entry header failed a structural or range check.
	ErrMalformedEntry = errors.New("bhd5: malformed entry")
	// ErrHashCollision means two different paths have the same path hash.
	ErrHashCollision = errors.New("bhd5: hash collision")
	// ErrDuplicateValue means the same path or hash was added twice.
	ErrDuplicateValue = errors.New("bhd5: duplicate value")
	// ErrUnrecognizedArchive means the data is not in a recognized container
	// format, such as a DCX payload with an unknown compression id.
	ErrUnrecognizedArchive = errors.New("bhd5: unrecognized archive")
	// ErrCryptoFailure means an RSA or AES operation failed or produced inconsistent output.
	ErrCryptoFailure = errors.New("bhd5: crypto failure")
	// ErrCancelled means an async operation was cancelled via its context.
	ErrCancelled = errors.New("bhd5: cancelled")
	// ErrIO wraps an underlying I/O failure that is not otherwise classified.
	ErrIO = errors.New("bhd5: io error")
)

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// NewEntryCrypt builds the per-entry AES-CTR decrypt capability referenced
// by EntryHeader.Crypt, given the raw key and IV recovered from the
// archive's (already RSA-decrypted) header.
func NewEntryCrypt(key, iv []byte) (*EntryCrypt, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("%w: IV length %d, want %d", ErrCryptoFailure, len(iv), block.BlockSize())
	}

	ivCopy := append([]byte(nil), iv...)

	return &EntryCrypt{
		Key: append([]byte(nil), key...),
		Decrypt: func(buf []byte) error {
			stream := cipher.NewCTR(block, ivCopy)
			stream.XORKeyStream(buf, buf)
			return nil
		},
	}, nil
}

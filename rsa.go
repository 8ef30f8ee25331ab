// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"
)

// HeaderDecryptor decrypts a BHD5 header block with the legacy raw-RSA
// "public key decrypt" scheme some archive generations wrap their header in.
// This is deliberately NOT textbook RSA decryption (which uses the private
// key) and NOT PKCS#1-padded: it is the raw modular exponentiation c^e mod n
// using the PUBLIC exponent, matching what the tooling that produced these
// archives actually does. Do not "fix" this to use the private key; that
// would decrypt a different, incompatible scheme.
type HeaderDecryptor struct {
	pub *rsa.PublicKey
}

// NewHeaderDecryptor parses a PEM-encoded RSA public key.
func NewHeaderDecryptor(pemBytes []byte) (*HeaderDecryptor, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrCryptoFailure)
	}

	var pub *rsa.PublicKey
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		pub = key
	} else if anyKey, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaKey, ok := anyKey.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: PEM key is not RSA", ErrCryptoFailure)
		}
		pub = rsaKey
	} else {
		return nil, fmt.Errorf("%w: parse RSA public key: %v", ErrCryptoFailure, err)
	}

	return &HeaderDecryptor{pub: pub}, nil
}

// keySize returns the modulus size in bytes.
func (d *HeaderDecryptor) keySize() int {
	return (d.pub.N.BitLen() + 7) / 8
}

// Decrypt applies the raw RSA public-key primitive block-by-block: each
// keySize()-byte (or shorter, zero-left-padded) block is interpreted as a
// big-endian integer c, and replaced by c^e mod n encoded back to keySize()
// bytes. block is left unmodified and the result is returned in a new
// slice, one RSA block per call; DecryptBlocks below drives it over a full
// header buffer.
func (d *HeaderDecryptor) Decrypt(block []byte) ([]byte, error) {
	size := d.keySize()
	if len(block) > size {
		return nil, fmt.Errorf("%w: RSA block too large (%d > %d)", ErrCryptoFailure, len(block), size)
	}

	padded := block
	if len(block) < size {
		padded = make([]byte, size)
		copy(padded[size-len(block):], block)
	}

	c := new(big.Int).SetBytes(padded)
	if c.Cmp(d.pub.N) >= 0 {
		return nil, fmt.Errorf("%w: RSA block out of range", ErrCryptoFailure)
	}

	e := big.NewInt(int64(d.pub.E))
	m := new(big.Int).Exp(c, e, d.pub.N)

	out := make([]byte, size)
	m.FillBytes(out)

	return out, nil
}

// DecryptBlocks decrypts a full header buffer in size-byte blocks, the last
// block zero-left-padded if short, and returns the concatenated plaintext
// (still size bytes per block; callers trim to the header's true length).
func (d *HeaderDecryptor) DecryptBlocks(data []byte) ([]byte, error) {
	size := d.keySize()
	if size == 0 {
		return nil, fmt.Errorf("%w: invalid RSA key size", ErrCryptoFailure)
	}

	out := make([]byte, 0, len(data))
	for off := 0; off < len(data); off += size {
		end := off + size
		if end > len(data) {
			end = len(data)
		}

		plain, err := d.Decrypt(data[off:end])
		if err != nil {
			return nil, err
		}

		out = append(out, plain...)
	}

	return out, nil
}

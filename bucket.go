// SPDX-License-Identifier: MIT
// Copyright (c) 2026 soulsmods
// Source: github.com/soulsmods/bhd5

package bhd5

// defaultBucketDistribution is the default number of entries targeted per
// bucket when sizing a fresh bucket table from a file count.
const defaultBucketDistribution = 7

// BucketInfo describes the hashed bucket table laid out in a .bhd header:
// Count buckets, each indexed by IndexStrategy(hash).
type BucketInfo struct {
	// Count is the number of buckets in the table.
	Count uint32
	// Bit64 selects the 64-bit path hash table when true, 32-bit otherwise.
	Bit64 bool
}

// NewBucketInfo sizes a bucket table for totalFiles entries, targeting
// distribution entries per bucket on average (defaultBucketDistribution when
// distribution is 0), and rounds the bucket count up to the next prime.
func NewBucketInfo(totalFiles int, distribution int, bit64 bool) BucketInfo {
	if distribution <= 0 {
		distribution = defaultBucketDistribution
	}

	target := totalFiles / distribution

	return BucketInfo{
		Count: nextPrime(uint32(target)),
		Bit64: bit64,
	}
}

// Index returns the bucket slot for hash under this table's index strategy:
// hash modulo the bucket count.
func (b BucketInfo) Index(hash uint64) uint32 {
	if b.Count == 0 {
		return 0
	}

	return uint32(hash % uint64(b.Count))
}

// nextPrime returns the smallest prime >= n, using trial division bounded by
// i*i <= n (rather than a full i < n scan) for each odd candidate.
func nextPrime(n uint32) uint32 {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}

	for !isPrime(n) {
		n += 2
	}

	return n
}

// isPrime reports whether n is prime using trial division up to sqrt(n).
func isPrime(n uint32) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}

	for i := uint32(3); i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}

	return true
}

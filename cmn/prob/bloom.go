// Package prob implements a fixed-size Bloom filter used to estimate
// the number of distinct keys inserted, collectively, by many processes.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package prob

import (
	"encoding/binary"
	"math"
	"math/bits"
)

const (
	NumHashes = 2 // sax + sdbm
	wordBits  = 32
)

// Bloom is a byte-addressed bit array, nbits a multiple of 32;
// the raw bytes are what ranks OR-reduce into a global filter.
type Bloom struct {
	a     []byte
	nbits uint32
}

// BitsFor returns the number of bits needed to hold n distinct keys
// with k=2 hashes at the optimal fill: ceil(2n/ln2), rounded up to a word.
func BitsFor(n int) uint32 {
	if n < 1 {
		n = 1
	}
	m := uint32(math.Ceil(float64(NumHashes*n) / math.Ln2))
	return (m + wordBits - 1) / wordBits * wordBits
}

func NewBloom(nbits uint32) *Bloom {
	nbits = (nbits + wordBits - 1) / wordBits * wordBits
	if nbits == 0 {
		nbits = wordBits
	}
	return &Bloom{a: make([]byte, nbits/8), nbits: nbits}
}

func (f *Bloom) Bits() uint32  { return f.nbits }
func (f *Bloom) Bytes() []byte { return f.a }

// Merge ORs in a filter of the same size (the local leg of a BOR reduction)
func (f *Bloom) Merge(src []byte) {
	for i := range f.a {
		f.a[i] |= src[i]
	}
}

func (f *Bloom) Reset() { clear(f.a) }

func (f *Bloom) setBit(n uint32) { f.a[n/8] |= 1 << (n % 8) }
func (f *Bloom) bit(n uint32) bool {
	return f.a[n/8]&(1<<(n%8)) != 0
}

func (f *Bloom) Add(key string) {
	f.setBit(SaxHash(key) % f.nbits)
	f.setBit(SdbmHash(key) % f.nbits)
}

func (f *Bloom) Lookup(key string) bool {
	return f.bit(SaxHash(key)%f.nbits) && f.bit(SdbmHash(key)%f.nbits)
}

// Count returns the number of set bits.
func (f *Bloom) Count() int {
	var cnt int
	for i := 0; i+4 <= len(f.a); i += 4 {
		cnt += popcount(binary.NativeEndian.Uint32(f.a[i:]))
	}
	return cnt
}

// Estimate is the maximum-likelihood number of distinct keys:
// ln(1 - t/m) / (k * ln(1 - 1/m)), rounded to nearest.
// Returns -1 for a saturated filter (t == m).
func (f *Bloom) Estimate() int {
	return Estimate(f.Count(), int(f.nbits))
}

func Estimate(t, m int) int {
	if t >= m {
		return -1
	}
	if t == 0 {
		return 0
	}
	fm := float64(m)
	est := math.Log(1-float64(t)/fm) / (NumHashes * math.Log(1-1/fm))
	return int(est + 0.5)
}

func SaxHash(key string) uint32 {
	var h uint32
	for i := range len(key) {
		h ^= (h << 5) + (h >> 2) + uint32(key[i])
	}
	return h
}

func SdbmHash(key string) uint32 {
	var h uint32
	for i := range len(key) {
		h = uint32(key[i]) + (h << 6) + (h << 16) - h
	}
	return h
}

// Hamming weight, the variant with fewest arithmetic operations
// when multiplication is slow.
func popcount(x uint32) int {
	x -= (x >> 1) & 0x55555555
	x = (x & 0x33333333) + ((x >> 2) & 0x33333333)
	x = (x + (x >> 4)) & 0x0f0f0f0f
	x += x >> 8
	return int((x + (x >> 16)) & 0x3f)
}

// cross-check for tests
func popcountStd(x uint32) int { return bits.OnesCount32(x) }

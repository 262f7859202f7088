// Package prob implements a fixed-size Bloom filter used to estimate
// the number of distinct keys inserted, collectively, by many processes.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package prob_test

import (
	"fmt"
	"math/rand/v2"

	"github.com/NVIDIA/fgfs/cmn/prob"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Bloom", func() {
	Context("Hashes", func() {
		It("should match reference values", func() {
			Expect(prob.SaxHash("")).To(Equal(uint32(0)))
			Expect(prob.SdbmHash("")).To(Equal(uint32(0)))
			// h = 0 ^ (0 + 0 + 'a')
			Expect(prob.SaxHash("a")).To(Equal(uint32('a')))
			Expect(prob.SdbmHash("a")).To(Equal(uint32('a')))
			// sdbm("ab") = 'b' + 97<<6 + 97<<16 - 97
			Expect(prob.SdbmHash("ab")).To(Equal(uint32('b') + 97<<6 + 97<<16 - 97))
			// sax("ab") = 97 ^ (97<<5 + 97>>2 + 'b')
			Expect(prob.SaxHash("ab")).To(Equal(uint32(97) ^ (97<<5 + 97>>2 + 'b')))
		})

		It("should agree with the standard popcount", func() {
			for range 10000 {
				x := rand.Uint32()
				Expect(prob.Popcount(x)).To(Equal(prob.PopcountStd(x)))
			}
			Expect(prob.Popcount(0xffffffff)).To(Equal(32))
		})
	})

	Context("Sizing", func() {
		It("should round bits up to a multiple of 32", func() {
			for n := 1; n < 5000; n += 37 {
				m := prob.BitsFor(n)
				Expect(m % 32).To(BeZero())
				Expect(float64(m)).To(BeNumerically(">=", 2*float64(n)/0.6931471805599453))
			}
			Expect(prob.NewBloom(33).Bits()).To(Equal(uint32(64)))
		})
	})

	Context("Estimate", func() {
		It("should estimate a single key as one", func() {
			key := "nfs://server1/export/home"
			Expect(prob.SaxHash(key) % prob.BitsFor(1024)).
				NotTo(Equal(prob.SdbmHash(key) % prob.BitsFor(1024)))
			f := prob.NewBloom(prob.BitsFor(1024))
			for range 1024 {
				f.Add(key)
			}
			Expect(f.Count()).To(Equal(2))
			Expect(f.Estimate()).To(Equal(1))
			Expect(f.Lookup(key)).To(BeTrue())
		})

		It("should estimate an empty filter as zero", func() {
			Expect(prob.NewBloom(prob.BitsFor(64)).Estimate()).To(BeZero())
		})

		It("should report saturation", func() {
			Expect(prob.Estimate(64, 64)).To(Equal(-1))
		})

		It("should stay close to the true cardinality", func() {
			const n = 500
			f := prob.NewBloom(prob.BitsFor(4096))
			for i := range n {
				f.Add(fmt.Sprintf("lustre://mds%d@o2ib/scratch", i))
			}
			Expect(f.Estimate()).To(BeNumerically("~", n, n/10))
		})

		It("should merge filters with OR", func() {
			m := prob.BitsFor(256)
			a, b, all := prob.NewBloom(m), prob.NewBloom(m), prob.NewBloom(m)
			for i := range 100 {
				key := fmt.Sprintf("file://node%d/tmp", i)
				if i%2 == 0 {
					a.Add(key)
				} else {
					b.Add(key)
				}
				all.Add(key)
			}
			a.Merge(b.Bytes())
			Expect(a.Bytes()).To(Equal(all.Bytes()))
			a.Reset()
			Expect(a.Count()).To(BeZero())
		})
	})
})

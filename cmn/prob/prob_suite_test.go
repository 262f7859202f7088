// Package prob implements a fixed-size Bloom filter used to estimate
// the number of distinct keys inserted, collectively, by many processes.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package prob_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestProb(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, t.Name())
}

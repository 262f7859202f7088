// Package prob implements a fixed-size Bloom filter used to estimate
// the number of distinct keys inserted, collectively, by many processes.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package prob

var (
	Popcount    = popcount
	PopcountStd = popcountStd
)

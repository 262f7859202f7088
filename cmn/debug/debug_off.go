//go:build !debug

// Package debug provides debug utilities
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package debug

func ON() bool { return false }

func Infof(string, ...any) {}

func Func(func()) {}

func Assert(bool, ...any)            {}
func AssertFunc(func() bool, ...any) {}
func AssertMsg(bool, string)         {}
func AssertNoErr(error)              {}
func Assertf(bool, string, ...any)   {}

// Package tassert provides common asserts for tests
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package tassert

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"
)

const modulePath = "github.com/NVIDIA/fgfs/"

// tests whose fatal failure was already reported
var failed sync.Map

// CheckFatal fails the test on a non-nil error. Multi-rank tests funnel
// all rank errors through here: the first one fails the test, later ones
// are logged and their goroutine exits.
func CheckFatal(tb testing.TB, err error) {
	if err == nil {
		return
	}
	if _, loaded := failed.LoadOrStore(tb.Name(), struct{}{}); loaded {
		tb.Logf("%s: also: %v", tb.Name(), err)
		runtime.Goexit()
	}
	callers(tb)
	tb.Fatal(err)
}

func CheckError(tb testing.TB, err error) {
	if err != nil {
		callers(tb)
		tb.Error(err)
	}
}

func Fatalf(tb testing.TB, cond bool, format string, args ...any) {
	if !cond {
		callers(tb)
		tb.Fatalf(format, args...)
	}
}

func Errorf(tb testing.TB, cond bool, format string, args ...any) {
	if !cond {
		callers(tb)
		tb.Errorf(format, args...)
	}
}

// callers prints the in-module call chain leading to the failed assertion
func callers(tb testing.TB) {
	var (
		sb  strings.Builder
		pcs = make([]uintptr, 16)
		n   = runtime.Callers(3, pcs)
	)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if i := strings.Index(frame.Function, modulePath); i >= 0 {
			fmt.Fprintf(&sb, "\t%s:%d %s\n", shortFile(frame.File), frame.Line, frame.Function[i+len(modulePath):])
		}
		if !more {
			break
		}
	}
	if sb.Len() > 0 {
		fmt.Fprintf(os.Stderr, "    %s:\n%s", tb.Name(), sb.String())
	}
}

func shortFile(file string) string {
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		if j := strings.LastIndexByte(file[:i], '/'); j >= 0 {
			return file[j+1:]
		}
	}
	return file
}

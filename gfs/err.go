// Package gfs answers, collectively over all ranks of a job, questions
// about how a file is served across nodes: is it node-local, how many
// distinct servers provide it, is its content identical everywhere.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package gfs

import (
	"errors"
	"fmt"
)

var (
	ErrNotTriaged   = errors.New("not triaged")
	ErrNotRegular   = errors.New("not a regular file")
	ErrNotReadable  = errors.New("not readable by owner")
	ErrSigMismatch  = errors.New("signature sizes differ across ranks")
	errResolveFails = errors.New("path resolution failed")
)

// ErrRanks reports a failure that some ranks observed locally and all ranks agreed on
type ErrRanks struct {
	what string
	cnt  int
}

func (e *ErrRanks) Error() string { return fmt.Sprintf("%s failed on %d rank(s)", e.what, e.cnt) }

func IsErrRanks(err error) bool {
	var e *ErrRanks
	return errors.As(err, &e)
}

// Package comm provides the collective communication layer: rank/size discovery,
// all-reduce and broadcast over a global or per-group scope, and the
// grouping map-reduce that partitions ranks by an equivalence key.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyItems   = errors.New("empty item list")
	ErrNotGlobal    = errors.New("only global scope is supported")
	ErrMapNotEmpty  = errors.New("grouping map is not empty")
	ErrSizeMismatch = errors.New("buffer size mismatch")
	ErrNotMaster    = errors.New("not the master rank")
	ErrNoRankSize   = errors.New("rank and size unknown")
)

// ErrGroupInfo: the rank's own key is missing from the reduced map
type ErrGroupInfo struct {
	uri  string
	rank uint32
	n    int
}

func (e *ErrGroupInfo) Error() string {
	return fmt.Sprintf("rank %d: %q not found in grouping map (%d entries)", e.rank, e.uri, e.n)
}

func IsErrGroupInfo(err error) bool {
	var e *ErrGroupInfo
	return errors.As(err, &e)
}

//go:build !linux

// Package fs resolves paths to the file systems that serve them:
// mount table, file system types, and location-independent URIs.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package fs

import (
	"runtime"

	"github.com/NVIDIA/fgfs/cmn/cos"
)

func LoadMountTable() (*MountTable, error) {
	return nil, cos.NewErrNotImplemented("mount table on " + runtime.GOOS)
}

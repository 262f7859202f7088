// Package ios is a collection of interfaces to the local storage subsystem;
// the package includes OS-dependent implementations for those interfaces.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package ios

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func GetFSStats(path string) (*FsStats, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return nil, fmt.Errorf("statfs %q: %w", path, err)
	}
	return &FsStats{
		Blocks:   st.Blocks,
		Bavail:   st.Bavail,
		Bsize:    uint64(st.Bsize),
		ReadOnly: st.Flags&unix.MNT_RDONLY != 0,
	}, nil
}

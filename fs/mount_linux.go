// Package fs resolves paths to the file systems that serve them:
// mount table, file system types, and location-independent URIs.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package fs

import (
	"os"
)

const procMounts = "/proc/self/mounts"

// LoadMountTable snapshots the mount table of the calling process
func LoadMountTable() (*MountTable, error) {
	f, err := os.Open(procMounts)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := ParseMounts(f)
	if err != nil {
		return nil, err
	}
	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	return NewMountTable(entries, hostname), nil
}

// Package ios is a collection of interfaces to the local storage subsystem;
// the package includes OS-dependent implementations for those interfaces.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package ios

import (
	"github.com/NVIDIA/fgfs/cmn/cos"
)

const packedFsStatsSize = 3 * cos.SizeofU64

type (
	// FsStats is the subset of statvfs(3) needed to reason about free space
	FsStats struct {
		Blocks   uint64 `json:"blocks"`
		Bavail   uint64 `json:"bavail"`
		Bsize    uint64 `json:"bsize"`
		ReadOnly bool   `json:"read_only"`
	}

	Stater interface {
		Statfs(path string) (*FsStats, error)
	}

	// OSStater queries the kernel
	OSStater struct{}
)

// interface guard
var _ Stater = OSStater{}

func (OSStater) Statfs(path string) (*FsStats, error) { return GetFSStats(path) }

// Available returns bytes available to unprivileged users; zero if mounted read-only
func (st *FsStats) Available() uint64 {
	if st.ReadOnly {
		return 0
	}
	return st.Bavail * st.Bsize
}

//
// fixed-size binary form, for broadcasting within a group
//

func (*FsStats) PackedSize() int { return packedFsStatsSize }

func (st *FsStats) Pack(packer *cos.BytePack) {
	packer.WriteUint64(st.Bavail)
	packer.WriteUint64(st.Bsize)
	var flags uint64
	if st.ReadOnly {
		flags = 1
	}
	packer.WriteUint64(flags)
}

func (st *FsStats) Unpack(unpacker *cos.ByteUnpack) (err error) {
	if st.Bavail, err = unpacker.ReadUint64(); err != nil {
		return
	}
	if st.Bsize, err = unpacker.ReadUint64(); err != nil {
		return
	}
	var flags uint64
	flags, err = unpacker.ReadUint64()
	st.ReadOnly = flags&1 != 0
	return
}

// interface guard
var (
	_ cos.Packer   = (*FsStats)(nil)
	_ cos.Unpacker = (*FsStats)(nil)
)

// Package ios is a collection of interfaces to the local storage subsystem;
// the package includes OS-dependent implementations for those interfaces.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package ios_test

import (
	"testing"

	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/ios"
	"github.com/NVIDIA/fgfs/tools/tassert"
)

func TestGetFSStats(t *testing.T) {
	st, err := ios.OSStater{}.Statfs(t.TempDir())
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, st.Bsize > 0 && st.Blocks > 0, "%+v", st)
	_, err = ios.GetFSStats("/nonexistent/fgfs/path")
	tassert.Errorf(t, err != nil, "expected error")
}

func TestFsStatsPack(t *testing.T) {
	in := ios.FsStats{Bavail: 1 << 20, Bsize: 4096, ReadOnly: true}
	p := cos.NewPacker(nil, in.PackedSize())
	in.Pack(p)
	var out ios.FsStats
	tassert.CheckFatal(t, out.Unpack(cos.NewUnpacker(p.Bytes())))
	tassert.Errorf(t, out == in, "%+v vs %+v", out, in)
	tassert.Errorf(t, out.Available() == 0, "read-only must offer nothing")
	out.ReadOnly = false
	tassert.Errorf(t, out.Available() == 4*cos.GiB, "available %d", out.Available())
}

// Package gfs answers, collectively over all ranks of a job, questions
// about how a file is served across nodes: is it node-local, how many
// distinct servers provide it, is its content identical everywhere.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package gfs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/fgfs/cmn"
	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/comm"
	"github.com/NVIDIA/fgfs/comm/memfab"
	"github.com/NVIDIA/fgfs/fs"
	"github.com/NVIDIA/fgfs/gfs"
	"github.com/NVIDIA/fgfs/stats"
	"github.com/NVIDIA/fgfs/tools/tassert"
)

const sharedFile = "sig.dat"

// serverOf maps a rank to the NFS server it mounts dir from; "" for a local disk
type serverOf func(rank int) string

func sameServer(srv string) serverOf { return func(int) string { return srv } }

func mountTable(rank int, dir, server string) *fs.MountTable {
	entries := []fs.MountEntry{{FsName: "/dev/sda1", Dir: "/", Type: "ext4", Opts: "rw"}}
	if server != "" {
		entries = append(entries, fs.MountEntry{FsName: server + ":/export", Dir: dir, Type: "nfs", Opts: "rw"})
	}
	return fs.NewMountTable(entries, fmt.Sprintf("node%d", rank))
}

func newEnv(ep *memfab.Endpoint, dir string, srv serverOf, opts ...gfs.EnvOption) (*gfs.Env, error) {
	opts = append([]gfs.EnvOption{gfs.WithStats(stats.NewLocal())}, opts...)
	return gfs.NewEnv(comm.NewEngine(ep), mountTable(ep.Rank(), dir, srv(ep.Rank())), opts...)
}

func tempFile(t *testing.T) (dir, path string) {
	dir = t.TempDir()
	path = filepath.Join(dir, sharedFile)
	tassert.CheckFatal(t, os.WriteFile(path, []byte("the same bytes everywhere"), 0o644))
	return dir, path
}

func expect(rank int, what string, got, exp cos.Answer) error {
	if got != exp {
		return fmt.Errorf("rank %d: %s is %s, expected %s", rank, what, got, exp)
	}
	return nil
}

func TestNotTriaged(t *testing.T) {
	err := memfab.Run(2, func(ep *memfab.Endpoint) error {
		env, err := newEnv(ep, "/data", sameServer(""))
		if err != nil {
			return err
		}
		s := gfs.NewStatus(env, "/data/x")
		for what, a := range map[string]cos.Answer{
			"fully":  s.IsFullyDistributed(),
			"poorly": s.IsPoorlyDistributed(),
			"well":   s.IsWellDistributed(),
			"unique": s.IsUnique(),
		} {
			if err := expect(ep.Rank(), what, a, cos.Error); err != nil {
				return err
			}
		}
		return nil
	})
	tassert.CheckFatal(t, err)
}

func TestAllLocal(t *testing.T) {
	const n = 8
	err := memfab.Run(n, func(ep *memfab.Endpoint) error {
		env, err := newEnv(ep, "/data", func(int) string { return "" })
		if err != nil {
			return err
		}
		s := gfs.NewStatus(env, "/data/x")
		if err := s.Triage(""); err != nil {
			return err
		}
		if s.Cardinality() != n || !s.NodeLocal() {
			return fmt.Errorf("cardinality %d, node-local %v", s.Cardinality(), s.NodeLocal())
		}
		if err := expect(ep.Rank(), "fully", s.IsFullyDistributed(), cos.Yes); err != nil {
			return err
		}
		if err := expect(ep.Rank(), "poorly", s.IsPoorlyDistributed(), cos.No); err != nil {
			return err
		}
		// every node has its own disk: one group per rank
		if err := expect(ep.Rank(), "unique", s.IsUnique(), cos.No); err != nil {
			return err
		}
		if s.ParDesc().NumGroups() != n {
			return fmt.Errorf("groups %d", s.ParDesc().NumGroups())
		}
		return nil
	})
	tassert.CheckFatal(t, err)
}

func TestSingleRemoteServer(t *testing.T) {
	const n = 8
	dir, path := tempFile(t)
	err := memfab.Run(n, func(ep *memfab.Endpoint) error {
		env, err := newEnv(ep, dir, sameServer("srvA"))
		if err != nil {
			return err
		}
		s := gfs.NewStatus(env, path)
		if err := s.Triage(""); err != nil {
			return err
		}
		// 8 / 64 rounds down to a zero cutoff
		if s.HiLoCutoff() != 0 || s.Cardinality() != n || s.NodeLocal() {
			return fmt.Errorf("cutoff %d, cardinality %d", s.HiLoCutoff(), s.Cardinality())
		}
		if err := expect(ep.Rank(), "fully", s.IsFullyDistributed(), cos.No); err != nil {
			return err
		}
		if err := expect(ep.Rank(), "unique", s.IsUnique(), cos.Yes); err != nil {
			return err
		}
		pd := s.ParDesc()
		rd, ok := pd.Lookup("nfs://srvA/export/" + sharedFile)
		if pd.MapLen() != 1 || !ok || rd.Count != n || rd.FirstRank != 0 {
			return fmt.Errorf("map %v: %+v", pd.Keys(), rd)
		}
		// unique implies consistent without reading the file
		if err := expect(ep.Rank(), "consistent", s.IsConsistent(false), cos.Yes); err != nil {
			return err
		}
		if v := env.Stats.(*stats.Local).Get(stats.SignatureCount); v != 0 {
			return fmt.Errorf("signed %d times", v)
		}
		return nil
	})
	tassert.CheckFatal(t, err)
}

func TestTwoServers(t *testing.T) {
	const n = 8
	dir, path := tempFile(t)
	halves := func(rank int) string {
		if rank < n/2 {
			return "srvA"
		}
		return "srvB"
	}
	err := memfab.Run(n, func(ep *memfab.Endpoint) error {
		env, err := newEnv(ep, dir, halves)
		if err != nil {
			return err
		}
		s := gfs.NewStatus(env, path)
		if err := s.Triage(""); err != nil {
			return err
		}
		if err := expect(ep.Rank(), "unique", s.IsUnique(), cos.No); err != nil {
			return err
		}
		pd := s.ParDesc()
		if pd.MapLen() != 2 {
			return fmt.Errorf("map %v", pd.Keys())
		}
		for i, k := range pd.Keys() {
			rd, _ := pd.Lookup(k)
			if rd.Count != n/2 || rd.FirstRank != uint32(i*n/2) {
				return fmt.Errorf("%q: %+v", k, rd)
			}
		}
		return nil
	})
	tassert.CheckFatal(t, err)
}

func TestHiLoCutoff(t *testing.T) {
	const n = 64
	dir, path := tempFile(t)
	for _, tc := range []struct {
		name   string
		srv    serverOf
		card   int
		poorly cos.Answer
		unique cos.Answer
	}{
		{"one-server", sameServer("srvA"), 1, cos.Yes, cos.Yes},
		{"two-servers", func(rank int) string { return []string{"srvA", "srvB"}[rank%2] }, 2, cos.No, cos.No},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := memfab.Run(n, func(ep *memfab.Endpoint) error {
				env, err := newEnv(ep, dir, tc.srv)
				if err != nil {
					return err
				}
				s := gfs.NewStatus(env, path)
				if err := s.Triage(cmn.AlgoBloomFilter); err != nil {
					return err
				}
				if s.HiLoCutoff() != 1 || s.Cardinality() != tc.card {
					return fmt.Errorf("cutoff %d, cardinality %d", s.HiLoCutoff(), s.Cardinality())
				}
				if err := expect(ep.Rank(), "poorly", s.IsPoorlyDistributed(), tc.poorly); err != nil {
					return err
				}
				if err := expect(ep.Rank(), "well", s.IsWellDistributed(), tc.poorly.Not()); err != nil {
					return err
				}
				return expect(ep.Rank(), "unique", s.IsUnique(), tc.unique)
			})
			tassert.CheckFatal(t, err)
		})
	}
}

func TestExactAlgorithm(t *testing.T) {
	const n = 12
	dir, path := tempFile(t)
	err := memfab.Run(n, func(ep *memfab.Endpoint) error {
		env, err := newEnv(ep, dir, func(rank int) string { return fmt.Sprintf("srv%d", rank%3) })
		if err != nil {
			return err
		}
		s := gfs.NewStatusThreshold(env, path, 4)
		if err := s.Triage(cmn.AlgoExact); err != nil {
			return err
		}
		if s.Cardinality() != 3 || s.HiLoCutoff() != 3 {
			return fmt.Errorf("cardinality %d, cutoff %d", s.Cardinality(), s.HiLoCutoff())
		}
		if s.ParDesc().IsGroupingDone().IsNo() {
			return fmt.Errorf("exact triage must leave ranks grouped")
		}
		return expect(ep.Rank(), "poorly", s.IsPoorlyDistributed(), cos.Yes)
	})
	tassert.CheckFatal(t, err)
}

func TestUnsupportedAlgorithm(t *testing.T) {
	err := memfab.Run(3, func(ep *memfab.Endpoint) error {
		env, err := newEnv(ep, "/data", sameServer(""))
		if err != nil {
			return err
		}
		s := gfs.NewStatus(env, "/data/x")
		if err := s.Triage(cmn.AlgoSampling); !cos.IsErrNotImplemented(err) {
			return fmt.Errorf("expected not-implemented, got %v", err)
		}
		if err := s.Triage("magic"); err == nil {
			return fmt.Errorf("expected unknown-algorithm error")
		}
		return expect(ep.Rank(), "poorly", s.IsPoorlyDistributed(), cos.Error)
	})
	tassert.CheckFatal(t, err)
}

func TestResolveFailurePropagates(t *testing.T) {
	const n = 4
	err := memfab.Run(n, func(ep *memfab.Endpoint) error {
		mt := mountTable(ep.Rank(), "/data", "srvA")
		if ep.Rank() == 2 {
			mt = fs.NewMountTable(nil, "broken")
		}
		env, err := gfs.NewEnv(comm.NewEngine(ep), mt)
		if err != nil {
			return err
		}
		s := gfs.NewStatus(env, "/data/x")
		if err := s.Triage(""); err == nil {
			return fmt.Errorf("rank %d: expected triage to fail everywhere", ep.Rank())
		}
		return expect(ep.Rank(), "unique", s.IsUnique(), cos.Error)
	})
	tassert.CheckFatal(t, err)
}

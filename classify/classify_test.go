// Package classify characterizes every mount point visible to the whole job
// and selects the file systems that best match storage criteria.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package classify_test

import (
	"errors"
	"fmt"
	"sync"

	"github.com/NVIDIA/fgfs/classify"
	"github.com/NVIDIA/fgfs/cmn"
	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/comm"
	"github.com/NVIDIA/fgfs/comm/memfab"
	"github.com/NVIDIA/fgfs/fs"
	"github.com/NVIDIA/fgfs/gfs"
	"github.com/NVIDIA/fgfs/ios"
	"github.com/NVIDIA/fgfs/stats"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const numRanks = 8

// fakeStater serves statfs from a table keyed by mount point
type fakeStater struct {
	stats map[string]ios.FsStats
	mu    sync.Mutex
	calls map[string]int
}

func newFakeStater() *fakeStater {
	return &fakeStater{
		stats: map[string]ios.FsStats{
			"/":        {Bavail: 1024, Bsize: cos.MiB},
			"/tmp":     {Bavail: 64, Bsize: cos.MiB},
			"/home":    {Bavail: 10, Bsize: cos.GiB},
			"/scratch": {Bavail: 1024, Bsize: cos.GiB},
		},
		calls: make(map[string]int),
	}
}

func (fst *fakeStater) Statfs(path string) (*ios.FsStats, error) {
	fst.mu.Lock()
	fst.calls[path]++
	fst.mu.Unlock()
	st, ok := fst.stats[path]
	if !ok {
		return nil, fmt.Errorf("statfs %q: no such file system", path)
	}
	return &st, nil
}

func (fst *fakeStater) numCalls(path string) int {
	fst.mu.Lock()
	defer fst.mu.Unlock()
	return fst.calls[path]
}

// every rank: local root and tmpfs, one NFS home server, one Lustre;
// rank 0 alone has an extra disk
func mountTable(rank int) *fs.MountTable {
	entries := []fs.MountEntry{
		{FsName: "/dev/sda1", Dir: "/", Type: "ext4", Opts: "rw"},
		{FsName: "proc", Dir: "/proc", Type: "proc", Opts: "rw"},
		{FsName: "tmpfs", Dir: "/tmp", Type: "tmpfs", Opts: "rw"},
		{FsName: "srvA:/export", Dir: "/home", Type: "nfs", Opts: "rw"},
		{FsName: "10.0.0.1@tcp:/lfs", Dir: "/scratch", Type: "lustre", Opts: "rw"},
	}
	if rank == 0 {
		entries = append(entries, fs.MountEntry{FsName: "/dev/sdb1", Dir: "/only0", Type: "xfs", Opts: "rw"})
	}
	return fs.NewMountTable(entries, fmt.Sprintf("node%d", rank))
}

func newEnv(ep *memfab.Endpoint, stater ios.Stater) (*gfs.Env, error) {
	config := cmn.DefaultConfig()
	config.Triage.ThresholdToSaturate = 4
	return gfs.NewEnv(comm.NewEngine(ep), mountTable(ep.Rank()),
		gfs.WithConfig(config), gfs.WithStater(stater), gfs.WithStats(stats.NewLocal()))
}

// run classifies on every rank and hands each rank's result to fn
func run(stater ios.Stater, fn func(ep *memfab.Endpoint, mp *classify.MountPoints) error) error {
	return memfab.Run(numRanks, func(ep *memfab.Endpoint) error {
		env, err := newEnv(ep, stater)
		if err != nil {
			return err
		}
		mp := classify.NewMountPoints(env)
		if err := mp.Run(); err != nil {
			return err
		}
		return fn(ep, mp)
	})
}

var _ = Describe("MountPoints", func() {
	It("should classify mount points present on all ranks", func() {
		results := make([]*classify.MountPoints, numRanks)
		err := run(newFakeStater(), func(ep *memfab.Endpoint, mp *classify.MountPoints) error {
			results[ep.Rank()] = mp
			return nil
		})
		Expect(err).NotTo(HaveOccurred())

		for _, mp := range results {
			Expect(mp.MountPoints()).To(Equal([]string{"/", "/home", "/scratch", "/tmp"}))
			_, ok := mp.Get("/only0")
			Expect(ok).To(BeFalse())

			root, _ := mp.Get("/")
			Expect(root.Fully).To(Equal(cos.Yes))
			Expect(root.Well).To(Equal(cos.Yes))
			Expect(root.Unique).To(Equal(cos.No))
			Expect(root.DistributionDegree).To(Equal(1))
			Expect(root.Speed).To(BeEquivalentTo(fs.LocalDeviceSpeed))

			tmp, _ := mp.Get("/tmp")
			Expect(tmp.Speed).To(BeEquivalentTo(fs.MaxDeviceSpeed))

			home, _ := mp.Get("/home")
			Expect(home.Fully).To(Equal(cos.No))
			Expect(home.Poorly).To(Equal(cos.Yes))
			Expect(home.Unique).To(Equal(cos.Yes))
			Expect(home.DistributionDegree).To(Equal(numRanks))
			Expect(home.URI).To(Equal("nfs://srvA/export"))
			Expect(home.Consistent).To(Equal(cos.Error))

			scratch, _ := mp.Get("/scratch")
			Expect(scratch.Scalability).To(BeEquivalentTo(fs.ParallelFsScaling))
			Expect(scratch.Unique).To(Equal(cos.Yes))
			Expect(scratch.FsType).To(Equal("lustre"))
		}
	})

	It("should take the slowest device across ranks", func() {
		var speeds [numRanks]int32
		err := memfab.Run(numRanks, func(ep *memfab.Endpoint) error {
			// odd ranks have /tmp on a disk
			tmpType := "tmpfs"
			if ep.Rank()%2 == 1 {
				tmpType = "ext4"
			}
			entries := []fs.MountEntry{
				{FsName: "/dev/sda1", Dir: "/", Type: "ext4", Opts: "rw"},
				{FsName: "tmpfs", Dir: "/tmp", Type: tmpType, Opts: "rw"},
			}
			env, err := gfs.NewEnv(comm.NewEngine(ep), fs.NewMountTable(entries, fmt.Sprintf("node%d", ep.Rank())))
			if err != nil {
				return err
			}
			mp := classify.NewMountPoints(env)
			if err := mp.Run(); err != nil {
				return err
			}
			tmp, ok := mp.Get("/tmp")
			if !ok {
				return errors.New("/tmp not classified")
			}
			speeds[ep.Rank()] = tmp.Speed
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		for _, s := range speeds {
			Expect(s).To(BeEquivalentTo(fs.LocalDeviceSpeed))
		}
	})

	It("should fail everywhere when a rank has no mount points", func() {
		err := memfab.Run(3, func(ep *memfab.Endpoint) error {
			var entries []fs.MountEntry
			if ep.Rank() != 1 {
				entries = []fs.MountEntry{{FsName: "/dev/sda1", Dir: "/", Type: "ext4", Opts: "rw"}}
			}
			env, err := gfs.NewEnv(comm.NewEngine(ep), fs.NewMountTable(entries, "node"))
			if err != nil {
				return err
			}
			err = classify.NewMountPoints(env).Run()
			if !errors.Is(err, classify.ErrNoMountPoints) {
				return fmt.Errorf("expected %v, got %v", classify.ErrNoMountPoints, err)
			}
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should answer cached queries without communicating", func() {
		var answers [numRanks][2]cos.Answer
		err := run(newFakeStater(), func(ep *memfab.Endpoint, mp *classify.MountPoints) error {
			home := mp.Status("/home/user/data.bin")
			answers[ep.Rank()] = [2]cos.Answer{home.IsUnique(), mp.Status("/only0/x").IsFullyDistributed()}
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		for rank, a := range answers {
			Expect(a[0]).To(Equal(cos.Yes))
			if rank == 0 {
				// served by a mount point the others do not have
				Expect(a[1]).To(Equal(cos.Error))
			} else {
				Expect(a[1]).To(Equal(cos.Yes))
			}
		}
	})

	It("should marshal", func() {
		var out []byte
		err := run(newFakeStater(), func(ep *memfab.Endpoint, mp *classify.MountPoints) (err error) {
			if ep.Rank() == 0 {
				out, err = mp.MarshalJSON()
			}
			return err
		})
		Expect(err).NotTo(HaveOccurred())
		var list []map[string]any
		Expect(cos.JSON.Unmarshal(out, &list)).To(Succeed())
		Expect(list).To(HaveLen(4))
		Expect(list[1]["mount_point"]).To(Equal("/home"))
		Expect(list[1]["unique"]).To(Equal("yes"))
	})
})

var _ = Describe("Storage", func() {
	It("should check space per server", func() {
		var (
			stater  = newFakeStater()
			answers [numRanks]map[string]cos.Answer
		)
		err := run(stater, func(ep *memfab.Endpoint, mp *classify.MountPoints) error {
			answers[ep.Rank()] = make(map[string]cos.Answer)
			for _, mountPoint := range mp.MountPoints() {
				c := classify.NewChecker(mp.Env(), mountPoint)
				answers[ep.Rank()][mountPoint] = c.MeetSpaceRequirement(100 * cos.MiB)
			}
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		for _, a := range answers {
			Expect(a).To(Equal(map[string]cos.Answer{
				"/":        cos.Yes, // 100MiB each on its own 1GiB disk
				"/home":    cos.Yes, // 800MiB on 10GiB
				"/scratch": cos.Yes,
				"/tmp":     cos.No, // 100MiB on 64MiB
			}))
		}
		// representatives only
		Expect(stater.numCalls("/home")).To(Equal(1))
		Expect(stater.numCalls("/")).To(Equal(numRanks))
	})

	It("should report read-only as full", func() {
		stater := newFakeStater()
		st := stater.stats["/home"]
		st.ReadOnly = true
		stater.stats["/home"] = st

		var reports [numRanks]classify.SpaceReport
		err := run(stater, func(ep *memfab.Endpoint, mp *classify.MountPoints) error {
			c := classify.NewChecker(mp.Env(), "/home/user")
			if a := c.MeetSpaceRequirement(1); a != cos.No {
				return fmt.Errorf("expected no, got %s", a)
			}
			reports[ep.Rank()] = *c.Report()
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		for _, r := range reports {
			Expect(r.Available).To(BeZero())
			Expect(r.Needed).To(BeEquivalentTo(numRanks))
			Expect(r.GroupNeeded).To(BeEquivalentTo(numRanks))
			Expect(r.DistEst).To(Equal(numRanks))
			Expect(r.Stats.ReadOnly).To(BeTrue())
		}
	})

	It("should fail everywhere when a representative cannot stat", func() {
		stater := newFakeStater()
		delete(stater.stats, "/scratch")
		var answers [numRanks]cos.Answer
		err := run(stater, func(ep *memfab.Endpoint, mp *classify.MountPoints) error {
			answers[ep.Rank()] = classify.NewChecker(mp.Env(), "/scratch").MeetSpaceRequirement(cos.KiB)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		for _, a := range answers {
			Expect(a).To(Equal(cos.Error))
		}
	})

	DescribeTable("best file systems",
		func(c classify.Criteria, expected []string, scores []int) {
			var results [numRanks][]classify.Candidate
			err := run(newFakeStater(), func(ep *memfab.Endpoint, mp *classify.MountPoints) (err error) {
				results[ep.Rank()], err = mp.BestFileSystems(&c)
				return err
			})
			Expect(err).NotTo(HaveOccurred())
			for _, list := range results {
				var (
					names = make([]string, 0, len(list))
					got   = make([]int, 0, len(list))
				)
				for _, cand := range list {
					names = append(names, cand.Props.MountPoint)
					got = append(got, cand.Score)
				}
				Expect(names).To(Equal(expected))
				Expect(got).To(Equal(scores))
			}
		},
		Entry("no requirement, continuous score",
			classify.Criteria{BytesNeeded: 100 * cos.MiB},
			[]string{"/", "/scratch", "/home"}, []int{4000, 750, 125}),
		Entry("unique and scalable",
			classify.Criteria{BytesNeeded: 100 * cos.MiB, Distribution: classify.DistUnique, Scalability: classify.ScalMulti},
			[]string{"/scratch"}, []int{2}),
		Entry("fully distributed and fast, after freeing space",
			classify.Criteria{BytesNeeded: 100 * cos.MiB, BytesToFree: 64 * cos.MiB, Distribution: classify.DistFull, Speed: classify.SpeedHigh},
			[]string{"/", "/tmp"}, []int{2, 2}),
		Entry("low speed only",
			classify.Criteria{BytesNeeded: 100 * cos.MiB, Speed: classify.SpeedLow},
			[]string{"/home", "/scratch"}, []int{1, 1}),
		Entry("single scalability only",
			classify.Criteria{BytesNeeded: 100 * cos.MiB, Scalability: classify.ScalSingle},
			[]string{"/", "/home"}, []int{1, 1}),
		Entry("more than anyone has",
			classify.Criteria{BytesNeeded: 2 * cos.TiB},
			[]string{}, []int{}),
	)

	It("should not take faster or more scalable storage for low and single", func() {
		var (
			local  = &classify.GlobalProperties{Speed: fs.LocalDeviceSpeed, Scalability: fs.BaseScalability}
			lustre = &classify.GlobalProperties{Speed: fs.BaseDeviceSpeed, Scalability: fs.ParallelFsScaling}
			low    = classify.Criteria{Speed: classify.SpeedLow}
			single = classify.Criteria{Scalability: classify.ScalSingle}
			multi  = classify.Criteria{Scalability: classify.ScalMulti}
		)
		Expect(low.Score(local, 1)).To(Equal(classify.ScoreUnmet))
		Expect(low.Score(lustre, 1)).To(Equal(classify.ScoreMet + 1))
		Expect(single.Score(lustre, 1)).To(Equal(classify.ScoreUnmet))
		Expect(single.Score(local, 1)).To(Equal(classify.ScoreMet + 1))
		Expect(multi.Score(lustre, 1)).To(Equal(classify.ScoreMet + 1))
	})

	It("should reject invalid criteria", func() {
		c := classify.Criteria{Speed: classify.SpeedReq(42)}
		Expect(c.Validate()).To(HaveOccurred())
		c = classify.Criteria{Distribution: classify.DistHigh, Scalability: classify.ScalSingle}
		Expect(c.Validate()).To(Succeed())
		Expect(c.RequireNone()).To(BeFalse())
	})
})

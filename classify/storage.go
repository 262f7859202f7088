// Package classify characterizes every mount point visible to the whole job
// and selects the file systems that best match storage criteria.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package classify

import (
	"fmt"

	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/cmn/nlog"
	"github.com/NVIDIA/fgfs/comm"
	"github.com/NVIDIA/fgfs/gfs"
	"github.com/NVIDIA/fgfs/ios"
	"github.com/NVIDIA/fgfs/tracing"
	"github.com/pkg/errors"
)

type (
	// SpaceReport is what one rank learns while checking free space
	SpaceReport struct {
		Stats       ios.FsStats `json:"stats"`
		Needed      int64       `json:"needed"`       // job-wide
		GroupNeeded int64       `json:"group_needed"` // by ranks sharing this rank's server
		Available   uint64      `json:"available"`
		DistEst     int         `json:"dist_est"` // ranks per server
	}

	// Checker answers storage questions about one path, collectively
	Checker struct {
		*gfs.Status
		report SpaceReport
	}
)

func NewChecker(env *gfs.Env, path string) *Checker {
	return &Checker{Status: gfs.NewStatus(env, path)}
}

func (c *Checker) Report() *SpaceReport { return &c.report }

// MeetSpaceRequirement does every server have room for what the ranks it
// serves want to write; each rank passes its own byte count.
func (c *Checker) MeetSpaceRequirement(bytes int64) (ans cos.Answer) {
	end := tracing.Start("classify.space", "path", c.Path(), "bytes", cos.ToSizeIEC(bytes, 1))
	defer func() { end(ans.String()) }()

	if err := c.meet(bytes, &ans); err != nil {
		if nlog.V(nlog.SmoduleComm) {
			nlog.Errorf("%s: space requirement: %v", c, err)
		}
		return cos.Error
	}
	return ans
}

func (c *Checker) meet(bytes int64, ans *cos.Answer) error {
	if !c.Triaged() {
		if err := c.Triage(""); err != nil {
			return err
		}
	}
	if err := c.ForceGrouping(); err != nil {
		return err
	}
	var (
		env   = c.Env()
		f     = env.Fabric
		pd    = c.ParDesc()
		isRep = pd.IsRep().IsYes()
		rc    int32
		errSt error
		st    *ios.FsStats
	)
	if isRep {
		if st, errSt = env.Stater.Statfs(c.MountBranch()); errSt != nil {
			rc = 1
		}
	}
	total, err := comm.AllReduceInt32(f, comm.Global, pd, rc, comm.OpSum)
	if err != nil {
		return err
	}
	if total != 0 {
		if errSt != nil {
			return errors.Wrapf(errSt, "statfs %q", c.MountBranch())
		}
		return fmt.Errorf("statfs %q failed on %d representative%s", c.MountBranch(), total, cos.Plural(int(total)))
	}

	if c.report.Needed, err = comm.AllReduceInt64(f, comm.Global, pd, bytes, comm.OpSum); err != nil {
		return err
	}
	if c.report.GroupNeeded, err = comm.AllReduceInt64(f, comm.Group, pd, bytes, comm.OpSum); err != nil {
		return err
	}

	buf := make([]byte, c.report.Stats.PackedSize())
	if isRep {
		cos.NewPacker(buf, 0).WriteAny(st)
	}
	if err := f.Broadcast(comm.Group, pd, buf); err != nil {
		return errors.Wrap(err, "group statfs")
	}
	if err := cos.NewUnpacker(buf).ReadAny(&c.report.Stats); err != nil {
		return err
	}
	c.report.Available = c.report.Stats.Available()
	c.report.DistEst = int(pd.Size() / pd.NumGroups())

	var short int32
	if c.report.GroupNeeded > 0 && uint64(c.report.GroupNeeded) > c.report.Available {
		short = 1
	}
	if short, err = comm.AllReduceInt32(f, comm.Global, pd, short, comm.OpMax); err != nil {
		return err
	}
	*ans = cos.FromBool(short == 0)
	return nil
}

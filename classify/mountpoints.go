// Package classify characterizes every mount point visible to the whole job
// and selects the file systems that best match storage criteria.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package classify

import (
	"errors"
	"time"

	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/cmn/nlog"
	"github.com/NVIDIA/fgfs/comm"
	"github.com/NVIDIA/fgfs/gfs"
	"github.com/NVIDIA/fgfs/tracing"
	pkgerrors "github.com/pkg/errors"
)

var ErrNoMountPoints = errors.New("no mount points on at least one rank")

// MountPoints is the job-wide classification of mount points, keyed by mount
// point path, identical on every rank once Run returns.
type MountPoints struct {
	env   *gfs.Env
	props map[string]*GlobalProperties
	keys  []string // ascending
}

func NewMountPoints(env *gfs.Env) *MountPoints {
	return &MountPoints{env: env, props: make(map[string]*GlobalProperties)}
}

// Run classifies mount points present on every rank; collective
func (mp *MountPoints) Run() (err error) {
	var (
		f       = mp.env.Fabric
		pd      = comm.NewParDesc()
		items   = mp.env.Resolver.MountPoints()
		started = time.Now()
		end     = tracing.Start("classify.mountpoints")
	)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = err.Error()
		}
		end(outcome)
	}()

	rank, size, master, err := f.RankSize()
	if err != nil {
		return err
	}
	pd.SetRankSize(rank, size, master)

	var empty int32
	if len(items) == 0 {
		empty = 1
	}
	if empty, err = comm.AllReduceInt32(f, comm.Global, pd, empty, comm.OpMax); err != nil {
		return err
	}
	if empty != 0 {
		return ErrNoMountPoints
	}
	if err := f.MapReduce(comm.Global, pd, items, false); err != nil {
		return pkgerrors.Wrap(err, "mount point map-reduce")
	}

	clear(mp.props)
	mp.keys = mp.keys[:0]
	for _, mountPoint := range pd.Keys() {
		if rd, _ := pd.Lookup(mountPoint); rd.Count != uint32(size) {
			continue
		}
		props, err := mp.classify(mountPoint, size)
		if err != nil {
			return err
		}
		mp.props[mountPoint] = props
		mp.keys = append(mp.keys, mountPoint)
	}
	if master {
		nlog.Infof("classified %d of %d mount points across %d ranks in %v",
			len(mp.keys), pd.MapLen(), size, time.Since(started))
	}
	return nil
}

func (mp *MountPoints) classify(mountPoint string, size int) (*GlobalProperties, error) {
	var (
		props  = newProps(mountPoint)
		status = gfs.NewStatus(mp.env, mountPoint)
	)
	if err := status.Triage(""); err != nil {
		// uniform across ranks: keep the entry, every answer stays Error
		if nlog.V(nlog.SmoduleClassify) {
			nlog.Warningf("%s: %v", mountPoint, err)
		}
		return props, nil
	}
	fu := status.FileURI()
	props.FsType, props.FsName = fu.Type.Name, fu.Entry.FsName
	props.URI, props.Remote = fu.URI, fu.Remote
	props.Cardinality = status.Cardinality()
	props.Fully = status.IsFullyDistributed()
	props.Well = status.IsWellDistributed()
	props.Poorly = status.IsPoorlyDistributed()
	props.Unique = status.IsUnique()

	if err := status.ForceGrouping(); err != nil {
		return nil, pkgerrors.Wrapf(err, "grouping %q", mountPoint)
	}
	pd := status.ParDesc()
	props.DistributionDegree = size / int(pd.NumGroups())

	speed, err := comm.AllReduceInt32(mp.env.Fabric, comm.Global, pd, fu.Type.Speed, comm.OpMin)
	if err != nil {
		return nil, err
	}
	scal, err := comm.AllReduceInt32(mp.env.Fabric, comm.Global, pd, fu.Type.Scalability, comm.OpMin)
	if err != nil {
		return nil, err
	}
	props.Speed, props.Scalability = speed, scal
	props.ParDesc = pd.Snap()
	if nlog.V(nlog.SmoduleClassify) && pd.Master() {
		nlog.Infoln(props.String())
	}
	return props, nil
}

func (mp *MountPoints) Get(mountPoint string) (*GlobalProperties, bool) {
	p, ok := mp.props[mountPoint]
	return p, ok
}

// MountPoints in ascending order
func (mp *MountPoints) MountPoints() []string { return mp.keys }

func (mp *MountPoints) Len() int { return len(mp.keys) }

func (mp *MountPoints) Env() *gfs.Env { return mp.env }

func (mp *MountPoints) MarshalJSON() ([]byte, error) {
	list := make([]*GlobalProperties, 0, len(mp.keys))
	for _, k := range mp.keys {
		list = append(list, mp.props[k])
	}
	return cos.JSON.Marshal(list)
}

// Package classify characterizes every mount point visible to the whole job
// and selects the file systems that best match storage criteria.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package classify

import (
	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/fs"
)

// CachedStatus answers distribution queries about a path from the mount
// point classification, locally and without communicating. A path whose
// mount point was not classified gets Error.
type CachedStatus struct {
	fu    *fs.FileURI
	props *GlobalProperties
	err   error
	path  string
}

func (mp *MountPoints) Status(path string) *CachedStatus {
	cs := &CachedStatus{path: path}
	if cs.fu, cs.err = mp.env.Resolver.Resolve(path); cs.err != nil {
		return cs
	}
	if props, ok := mp.props[cs.fu.MountBranch]; ok {
		cs.props = props
	} else {
		cs.err = fs.ErrNoMount
	}
	return cs
}

func (cs *CachedStatus) Path() string             { return cs.path }
func (cs *CachedStatus) FileURI() *fs.FileURI     { return cs.fu }
func (cs *CachedStatus) Props() *GlobalProperties { return cs.props }
func (cs *CachedStatus) Err() error               { return cs.err }

func (cs *CachedStatus) IsFullyDistributed() cos.Answer {
	if cs.props == nil {
		return cos.Error
	}
	return cs.props.Fully
}

func (cs *CachedStatus) IsWellDistributed() cos.Answer {
	if cs.props == nil {
		return cos.Error
	}
	return cs.props.Well
}

func (cs *CachedStatus) IsPoorlyDistributed() cos.Answer {
	if cs.props == nil {
		return cos.Error
	}
	return cs.props.Poorly
}

func (cs *CachedStatus) IsUnique() cos.Answer {
	if cs.props == nil {
		return cos.Error
	}
	return cs.props.Unique
}

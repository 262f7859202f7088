// Package classify characterizes every mount point visible to the whole job
// and selects the file systems that best match storage criteria.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package classify

import (
	"fmt"

	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/comm"
)

// GlobalProperties is what the job collectively knows about one mount point
type GlobalProperties struct {
	ParDesc            *comm.ParDescSnap `json:"pardesc,omitempty"`
	MountPoint         string            `json:"mount_point"`
	FsType             string            `json:"fs_type"`
	FsName             string            `json:"fs_name"`
	URI                string            `json:"uri"`
	DistributionDegree int               `json:"distribution_degree"` // ranks per server
	Cardinality        int               `json:"cardinality"`
	Speed              int32             `json:"speed"`       // slowest across ranks
	Scalability        int32             `json:"scalability"` // least across ranks
	Fully              cos.Answer        `json:"fully_distributed"`
	Well               cos.Answer        `json:"well_distributed"`
	Poorly             cos.Answer        `json:"poorly_distributed"`
	Unique             cos.Answer        `json:"unique"`
	Consistent         cos.Answer        `json:"consistent"`
	Remote             bool              `json:"remote"`
}

func newProps(mountPoint string) *GlobalProperties {
	return &GlobalProperties{
		MountPoint: mountPoint,
		Fully:      cos.Error,
		Well:       cos.Error,
		Poorly:     cos.Error,
		Unique:     cos.Error,
		Consistent: cos.Error,
	}
}

// Valid all predicates were established
func (p *GlobalProperties) Valid() bool {
	return !p.Fully.IsErr() && !p.Poorly.IsErr() && !p.Unique.IsErr()
}

func (p *GlobalProperties) String() string {
	return fmt.Sprintf("%s[%s %s: speed %d, scal %d, degree %d, fully %s, well %s, unique %s]",
		p.MountPoint, p.FsType, p.FsName, p.Speed, p.Scalability, p.DistributionDegree, p.Fully, p.Well, p.Unique)
}

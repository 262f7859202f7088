// Package classify characterizes every mount point visible to the whole job
// and selects the file systems that best match storage criteria.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package classify

import (
	"fmt"

	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/fs"
)

type (
	SpeedReq int
	DistReq  int
	ScalReq  int

	// Criteria is what a caller wants from the storage it writes to
	Criteria struct {
		BytesNeeded  cos.SizeIEC `json:"bytes_needed" yaml:"bytes_needed"` // per rank
		BytesToFree  cos.SizeIEC `json:"bytes_to_free" yaml:"bytes_to_free"`
		Speed        SpeedReq    `json:"speed" yaml:"speed"`
		Distribution DistReq     `json:"distribution" yaml:"distribution"`
		Scalability  ScalReq     `json:"scalability" yaml:"scalability"`
	}
)

const (
	SpeedNone SpeedReq = 0
	SpeedLow  SpeedReq = 1
	SpeedHigh SpeedReq = 2
)

const (
	DistNone   DistReq = 0
	DistUnique DistReq = 3
	DistLow    DistReq = 4
	DistHigh   DistReq = 5
	DistFull   DistReq = 6
)

const (
	ScalNone   ScalReq = 0
	ScalSingle ScalReq = 7
	ScalMulti  ScalReq = 8
)

// scores
const (
	ScoreUnmet = -1
	ScoreMet   = 0
	MaxScore   = 10000
)

// SpaceRequirement bytes each rank must be able to write
func (c *Criteria) SpaceRequirement() int64 {
	return int64(c.BytesNeeded) - int64(c.BytesToFree)
}

// RequireNone no explicit requirement other than space
func (c *Criteria) RequireNone() bool {
	return c.Speed == SpeedNone && c.Distribution == DistNone && c.Scalability == ScalNone
}

func (c *Criteria) Validate() error {
	switch c.Speed {
	case SpeedNone, SpeedLow, SpeedHigh:
	default:
		return fmt.Errorf("invalid speed requirement %d", c.Speed)
	}
	switch c.Distribution {
	case DistNone, DistUnique, DistLow, DistHigh, DistFull:
	default:
		return fmt.Errorf("invalid distribution requirement %d", c.Distribution)
	}
	switch c.Scalability {
	case ScalNone, ScalSingle, ScalMulti:
	default:
		return fmt.Errorf("invalid scalability requirement %d", c.Scalability)
	}
	return nil
}

// Score ranks a mount point that already has the space. With no explicit
// requirement the score is continuous in [0, MaxScore]; otherwise each met
// requirement adds one and any unmet one yields ScoreUnmet.
func (c *Criteria) Score(p *GlobalProperties, distEst int) int {
	if c.RequireNone() {
		return continuousScore(p.Speed, p.Scalability, distEst)
	}
	score := ScoreMet
	for _, check := range []func(*GlobalProperties) (bool, bool){c.speedMet, c.distMet, c.scalMet} {
		met, requested := check(p)
		switch {
		case !requested:
		case met:
			score++
		default:
			return ScoreUnmet
		}
	}
	return score
}

// low speed and single scalability ask for exactly the base class
func (c *Criteria) speedMet(p *GlobalProperties) (met, requested bool) {
	switch c.Speed {
	case SpeedLow:
		return p.Speed == fs.BaseDeviceSpeed, true
	case SpeedHigh:
		return p.Speed > fs.BaseDeviceSpeed, true
	}
	return false, false
}

// an undetermined predicate (Error) does not meet the requirement
func (c *Criteria) distMet(p *GlobalProperties) (met, requested bool) {
	switch c.Distribution {
	case DistUnique:
		return p.Unique.IsYes(), true
	case DistLow:
		return p.Poorly.IsYes(), true
	case DistHigh:
		return p.Well.IsYes(), true
	case DistFull:
		return p.Fully.IsYes(), true
	}
	return false, false
}

func (c *Criteria) scalMet(p *GlobalProperties) (met, requested bool) {
	switch c.Scalability {
	case ScalSingle:
		return p.Scalability == fs.BaseScalability, true
	case ScalMulti:
		return p.Scalability > fs.BaseScalability, true
	}
	return false, false
}

func continuousScore(speed, scal int32, distEst int) int {
	if scal <= 0 || distEst <= 0 {
		return ScoreMet
	}
	ratio := float64(scal) / float64(max(int(scal), distEst))
	return int(ratio * float64(speed) / fs.MaxDeviceSpeed * MaxScore)
}

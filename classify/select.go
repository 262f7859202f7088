// Package classify characterizes every mount point visible to the whole job
// and selects the file systems that best match storage criteria.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package classify

import (
	"sort"

	"github.com/NVIDIA/fgfs/cmn/nlog"
	"github.com/NVIDIA/fgfs/tracing"
)

// Candidate is a mount point that meets the criteria
type Candidate struct {
	Props  *GlobalProperties `json:"props"`
	Report SpaceReport       `json:"space"`
	Score  int               `json:"score"`
}

// BestFileSystems returns classified mount points that meet the criteria,
// best first; collective over all ranks, each passing its own criteria
// (space requirements may differ between ranks, the rest must not).
func (mp *MountPoints) BestFileSystems(c *Criteria) ([]Candidate, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	end := tracing.Start("classify.best")
	defer end("ok")

	need := c.SpaceRequirement()
	list := make([]Candidate, 0, len(mp.keys))
	for _, mountPoint := range mp.keys {
		props := mp.props[mountPoint]
		if !props.Valid() {
			continue
		}
		checker := NewChecker(mp.env, mountPoint)
		if ans := checker.MeetSpaceRequirement(need); !ans.IsYes() {
			continue
		}
		report := *checker.Report()
		score := c.Score(props, report.DistEst)
		if score <= ScoreUnmet {
			continue
		}
		list = append(list, Candidate{Props: props, Report: report, Score: score})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })

	if len(list) > 0 && nlog.V(nlog.SmoduleClassify) {
		nlog.Infof("best of %d: %s (score %d)", len(list), list[0].Props.MountPoint, list[0].Score)
	}
	return list, nil
}

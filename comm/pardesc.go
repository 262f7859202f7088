// Package comm provides the collective communication layer: rank/size discovery,
// all-reduce and broadcast over a global or per-group scope, and the
// grouping map-reduce that partitions ranks by an equivalence key.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"sort"
	"strconv"

	"github.com/NVIDIA/fgfs/cmn/cos"
)

// NotFilled marks a ParDesc field that has not been set
const NotFilled = ^uint32(0)

type (
	// ReduceDesc is the per-key value of the grouping map:
	// the lowest rank that contributed the key and the number of contributors
	ReduceDesc struct {
		FirstRank uint32 `json:"first_rank"`
		Count     uint32 `json:"count"`
	}

	// ParDesc describes a rank's place in the job and, once grouping is done,
	// in its equivalence group. The group id is the global rank of the
	// group's representative.
	ParDesc struct {
		groupingMap map[string]ReduceDesc
		uri         string
		rank        uint32
		size        uint32
		master      uint32
		numGroups   uint32
		groupID     uint32
		rankInGroup uint32
		groupSize   uint32
		repInGroup  uint32
	}

	// ParDescSnap is the exported (JSON) form of ParDesc
	ParDescSnap struct {
		GroupingMap map[string]ReduceDesc `json:"grouping_map"`
		URI         string                `json:"uri"`
		Rank        uint32                `json:"rank"`
		Size        uint32                `json:"size"`
		Master      bool                  `json:"master"`
		NumGroups   uint32                `json:"num_groups"`
		GroupID     uint32                `json:"group_id"`
		RankInGroup uint32                `json:"rank_in_group"`
		GroupSize   uint32                `json:"group_size"`
		RepInGroup  uint32                `json:"rep_in_group"`
	}
)

func NewParDesc() *ParDesc {
	return &ParDesc{
		groupingMap: make(map[string]ReduceDesc),
		rank:        NotFilled,
		size:        NotFilled,
		master:      NotFilled,
		numGroups:   NotFilled,
		groupID:     NotFilled,
		rankInGroup: NotFilled,
		groupSize:   NotFilled,
		repInGroup:  NotFilled,
	}
}

func (pd *ParDesc) Rank() uint32        { return pd.rank }
func (pd *ParDesc) Size() uint32        { return pd.size }
func (pd *ParDesc) Master() bool        { return pd.master == 1 }
func (pd *ParDesc) NumGroups() uint32   { return pd.numGroups }
func (pd *ParDesc) GroupID() uint32     { return pd.groupID }
func (pd *ParDesc) RankInGroup() uint32 { return pd.rankInGroup }
func (pd *ParDesc) GroupSize() uint32   { return pd.groupSize }
func (pd *ParDesc) RepInGroup() uint32  { return pd.repInGroup }
func (pd *ParDesc) URI() string         { return pd.uri }

func (pd *ParDesc) SetRankSize(rank, size int, master bool) {
	pd.rank, pd.size = uint32(rank), uint32(size)
	pd.master = 0
	if master {
		pd.master = 1
	}
}

func (pd *ParDesc) SetURI(uri string) { pd.uri = uri }

func (pd *ParDesc) IsGroupingDone() cos.Answer { return cos.FromBool(pd.groupID != NotFilled) }

func (pd *ParDesc) IsRep() cos.Answer {
	if pd.groupID == NotFilled {
		return cos.Error
	}
	return cos.FromBool(pd.rankInGroup == pd.repInGroup)
}

func (pd *ParDesc) IsSingleGroup() cos.Answer {
	if pd.groupID == NotFilled {
		return cos.Error
	}
	return cos.FromBool(pd.numGroups == 1)
}

// SetGroupInfo derives this rank's group from the reduced map
func (pd *ParDesc) SetGroupInfo() error {
	rd, ok := pd.groupingMap[pd.uri]
	if !ok {
		return &ErrGroupInfo{uri: pd.uri, rank: pd.rank, n: len(pd.groupingMap)}
	}
	pd.numGroups = uint32(len(pd.groupingMap))
	pd.groupID = rd.FirstRank
	pd.repInGroup = rd.FirstRank
	pd.rankInGroup = pd.rank
	pd.groupSize = rd.Count
	return nil
}

// ResetGrouping clears the map and every group field, keeping rank and size
func (pd *ParDesc) ResetGrouping() {
	pd.ClearMap()
	pd.uri = ""
	pd.numGroups, pd.groupID, pd.rankInGroup = NotFilled, NotFilled, NotFilled
	pd.groupSize, pd.repInGroup = NotFilled, NotFilled
}

//
// grouping map
//

func (pd *ParDesc) MapLen() int { return len(pd.groupingMap) }
func (pd *ParDesc) ClearMap()   { clear(pd.groupingMap) }

func (pd *ParDesc) Lookup(key string) (ReduceDesc, bool) {
	rd, ok := pd.groupingMap[key]
	return rd, ok
}

// Insert sets (overwrites) a single entry
func (pd *ParDesc) Insert(key string, rd ReduceDesc) { pd.groupingMap[key] = rd }

// Keys returns map keys in ascending order; every rank iterates the same way
func (pd *ParDesc) Keys() []string {
	keys := make([]string, 0, len(pd.groupingMap))
	for k := range pd.groupingMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

//
// snapshot & JSON
//

func (pd *ParDesc) Snap() *ParDescSnap {
	gmap := make(map[string]ReduceDesc, len(pd.groupingMap))
	for k, v := range pd.groupingMap {
		gmap[k] = v
	}
	return &ParDescSnap{
		GroupingMap: gmap,
		URI:         pd.uri,
		Rank:        pd.rank,
		Size:        pd.size,
		Master:      pd.Master(),
		NumGroups:   pd.numGroups,
		GroupID:     pd.groupID,
		RankInGroup: pd.rankInGroup,
		GroupSize:   pd.groupSize,
		RepInGroup:  pd.repInGroup,
	}
}

// Clone returns a deep copy
func (pd *ParDesc) Clone() *ParDesc {
	c := *pd
	c.groupingMap = make(map[string]ReduceDesc, len(pd.groupingMap))
	for k, v := range pd.groupingMap {
		c.groupingMap[k] = v
	}
	return &c
}

func (pd *ParDesc) MarshalJSON() ([]byte, error) { return cos.JSON.Marshal(pd.Snap()) }

func (pd *ParDesc) String() string {
	if pd.groupID == NotFilled {
		return "pd[r" + utoa(pd.rank) + "/" + utoa(pd.size) + "]"
	}
	return "pd[r" + utoa(pd.rank) + "/" + utoa(pd.size) + ", g" + utoa(pd.groupID) + "(" + utoa(pd.groupSize) +
		")/" + utoa(pd.numGroups) + "]"
}

func utoa(u uint32) string {
	if u == NotFilled {
		return "-"
	}
	return strconv.FormatUint(uint64(u), 10)
}

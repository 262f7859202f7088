// Package comm provides the collective communication layer: rank/size discovery,
// all-reduce and broadcast over a global or per-group scope, and the
// grouping map-reduce that partitions ranks by an equivalence key.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/pkg/errors"
)

// Grouping map on the wire: a sequence of records, no count prefix,
//   [firstRank u32][count u32][key bytes][NUL]
// in native byte order, keys in ascending order.

const recHdrSize = 2 * cos.SizeofU32

func (pd *ParDesc) PackedSize() int {
	var size int
	for k := range pd.groupingMap {
		size += recHdrSize + cos.PackedCStrLen(k)
	}
	return size
}

func (pd *ParDesc) Pack(packer *cos.BytePack) {
	for _, k := range pd.Keys() {
		rd := pd.groupingMap[k]
		packer.WriteUint32(rd.FirstRank)
		packer.WriteUint32(rd.Count)
		packer.WriteCString(k)
	}
}

// PackMap returns the packed grouping map
func (pd *ParDesc) PackMap() []byte {
	packer := cos.NewPacker(nil, pd.PackedSize())
	pd.Pack(packer)
	return packer.Bytes()
}

// Unpack merges records into the map: a new key is inserted as is,
// an existing key keeps its firstRank and accumulates count.
// Unpacking the same buffer twice doubles every count.
func (pd *ParDesc) Unpack(unpacker *cos.ByteUnpack) error {
	for unpacker.Len() > 0 {
		first, err := unpacker.ReadUint32()
		if err != nil {
			return errors.Wrap(err, "unpack first-rank")
		}
		cnt, err := unpacker.ReadUint32()
		if err != nil {
			return errors.Wrap(err, "unpack count")
		}
		key, err := unpacker.ReadCString()
		if err != nil {
			return errors.Wrap(err, "unpack key")
		}
		if rd, ok := pd.groupingMap[key]; ok {
			rd.Count += cnt
			pd.groupingMap[key] = rd
		} else {
			pd.groupingMap[key] = ReduceDesc{FirstRank: first, Count: cnt}
		}
	}
	return nil
}

func (pd *ParDesc) UnpackMap(buf []byte) error { return pd.Unpack(cos.NewUnpacker(buf)) }

// interface guard
var (
	_ cos.Packer   = (*ParDesc)(nil)
	_ cos.Unpacker = (*ParDesc)(nil)
)

// Package comm provides the collective communication layer: rank/size discovery,
// all-reduce and broadcast over a global or per-group scope, and the
// grouping map-reduce that partitions ranks by an equivalence key.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import "fmt"

type (
	DataType uint8
	ReduceOp uint8
	Scope    uint8
)

const (
	Int32 DataType = iota
	Int64
	Byte
)

const (
	OpMax ReduceOp = iota
	OpMin
	OpSum
	OpBor
)

const (
	Global Scope = iota
	Group
)

type (
	// Split names the sub-communicator a rank takes part in:
	// ranks with equal Color form one communicator, ordered by (Key, global rank);
	// the first rank is the root.
	Split struct {
		Color uint32
		Key   int
	}

	// Transport is the raw message-passing substrate (MPI, in-process, ...)
	// Collectives block until every member of the communicator joins.
	// A nil Split selects the global communicator rooted at rank 0.
	Transport interface {
		Rank() int
		Size() int
		AllReduce(sub *Split, send, recv []byte, dt DataType, op ReduceOp) error
		Broadcast(sub *Split, buf []byte) error
		Send(dst int, buf []byte) error
		Recv(src int) ([]byte, error)
	}

	// Fabric is the capability set consumed by the query layer
	Fabric interface {
		RankSize() (rank, size int, master bool, err error)
		AllReduce(scope Scope, pd *ParDesc, send, recv []byte, dt DataType, op ReduceOp) error
		Broadcast(scope Scope, pd *ParDesc, buf []byte) error
		Grouping(scope Scope, pd *ParDesc, item string, elimAlias bool) error
		MapReduce(scope Scope, pd *ParDesc, items []string, elimAlias bool) error
	}
)

func (dt DataType) Size() int {
	switch dt {
	case Int32:
		return 4
	case Int64:
		return 8
	default:
		return 1
	}
}

func (dt DataType) String() string {
	switch dt {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Byte:
		return "byte"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(dt))
	}
}

func (op ReduceOp) String() string {
	switch op {
	case OpMax:
		return "max"
	case OpMin:
		return "min"
	case OpSum:
		return "sum"
	case OpBor:
		return "bor"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

func (s Scope) String() string {
	if s == Global {
		return "global"
	}
	return "group"
}

func (s *Split) String() string {
	if s == nil {
		return "world"
	}
	return fmt.Sprintf("group[%d]", s.Color)
}

// SplitFor selects the communicator for a collective:
// the group of pd when the scope is Group and grouping yielded
// more than one group, the global communicator otherwise.
// The representative takes key 0 and thus becomes the group's root.
func SplitFor(scope Scope, pd *ParDesc) *Split {
	if scope == Global || pd == nil {
		return nil
	}
	if !pd.IsGroupingDone().IsYes() || !pd.IsSingleGroup().IsNo() {
		return nil
	}
	key := 1
	if pd.IsRep().IsYes() {
		key = 0
	}
	return &Split{Color: pd.GroupID(), Key: key}
}

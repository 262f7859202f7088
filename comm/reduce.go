// Package comm provides the collective communication layer: rank/size discovery,
// all-reduce and broadcast over a global or per-group scope, and the
// grouping map-reduce that partitions ranks by an equivalence key.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"encoding/binary"
	"fmt"
)

// Combine folds src into acc element-wise; both hold native-endian elements of dt
func Combine(acc, src []byte, dt DataType, op ReduceOp) error {
	if len(acc) != len(src) {
		return fmt.Errorf("%w: combine %d vs %d bytes", ErrSizeMismatch, len(acc), len(src))
	}
	if len(acc)%dt.Size() != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of %s", ErrSizeMismatch, len(acc), dt)
	}
	switch dt {
	case Int32:
		ne := binary.NativeEndian
		for i := 0; i < len(acc); i += 4 {
			a, b := int32(ne.Uint32(acc[i:])), int32(ne.Uint32(src[i:]))
			ne.PutUint32(acc[i:], uint32(combine64(int64(a), int64(b), op)))
		}
	case Int64:
		ne := binary.NativeEndian
		for i := 0; i < len(acc); i += 8 {
			a, b := int64(ne.Uint64(acc[i:])), int64(ne.Uint64(src[i:]))
			ne.PutUint64(acc[i:], uint64(combine64(a, b, op)))
		}
	case Byte:
		for i := range acc {
			acc[i] = byte(combine64(int64(acc[i]), int64(src[i]), op))
		}
	default:
		return fmt.Errorf("unsupported data type %s", dt)
	}
	return nil
}

func combine64(a, b int64, op ReduceOp) int64 {
	switch op {
	case OpMax:
		return max(a, b)
	case OpMin:
		return min(a, b)
	case OpSum:
		return a + b
	default:
		return a | b
	}
}

func validOp(op ReduceOp) bool { return op <= OpBor }

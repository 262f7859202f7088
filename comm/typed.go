// Package comm provides the collective communication layer: rank/size discovery,
// all-reduce and broadcast over a global or per-group scope, and the
// grouping map-reduce that partitions ranks by an equivalence key.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"encoding/binary"
)

// typed wrappers over Fabric

func AllReduceInt32(f Fabric, scope Scope, pd *ParDesc, v int32, op ReduceOp) (int32, error) {
	var send, recv [4]byte
	binary.NativeEndian.PutUint32(send[:], uint32(v))
	if err := f.AllReduce(scope, pd, send[:], recv[:], Int32, op); err != nil {
		return 0, err
	}
	return int32(binary.NativeEndian.Uint32(recv[:])), nil
}

func AllReduceInt64(f Fabric, scope Scope, pd *ParDesc, v int64, op ReduceOp) (int64, error) {
	var send, recv [8]byte
	binary.NativeEndian.PutUint64(send[:], uint64(v))
	if err := f.AllReduce(scope, pd, send[:], recv[:], Int64, op); err != nil {
		return 0, err
	}
	return int64(binary.NativeEndian.Uint64(recv[:])), nil
}

// AllReduceBytes reduces element-wise and returns a new slice
func AllReduceBytes(f Fabric, scope Scope, pd *ParDesc, send []byte, op ReduceOp) ([]byte, error) {
	recv := make([]byte, len(send))
	if err := f.AllReduce(scope, pd, send, recv, Byte, op); err != nil {
		return nil, err
	}
	return recv, nil
}

func BcastInt64(f Fabric, scope Scope, pd *ParDesc, v int64) (int64, error) {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], uint64(v))
	if err := f.Broadcast(scope, pd, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.NativeEndian.Uint64(buf[:])), nil
}

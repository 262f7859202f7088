// Package cos provides common low-level types and utilities for all fgfs packages.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Compact binary records exchanged between ranks of the same job.
// All ranks share a host architecture, hence native byte order.
// Strings are written NUL-terminated, without a length marker:
//   - packing: compute the total with PackedCStrLen and SizeofU32 constants,
//     allocate once (NewPacker), write fields in order, ship Bytes()
//   - unpacking: read fields in the same order; readers never panic,
//     a short buffer surfaces as ErrBufferUnderrun

type (
	BytePack struct {
		off int
		b   []byte
	}

	ByteUnpack struct {
		off int
		b   []byte
	}

	Packer interface {
		Pack(packer *BytePack)
		PackedSize() int
	}

	Unpacker interface {
		Unpack(unpacker *ByteUnpack) error
	}
)

const (
	SizeofU32 = 4
	SizeofI32 = 4
	SizeofU64 = 8
	SizeofI64 = 8
)

var (
	ErrBufferUnderrun = errors.New("buffer underrun")
	ErrNoTerminator   = errors.New("missing NUL terminator")
)

// PackedCStrLen returns the size occupied by a given string in the output
func PackedCStrLen(s string) int { return len(s) + 1 }

func NewPacker(buf []byte, bufLen int) *BytePack {
	if buf == nil {
		return &BytePack{b: make([]byte, bufLen)}
	}
	return &BytePack{b: buf}
}

func NewUnpacker(buf []byte) *ByteUnpack { return &ByteUnpack{b: buf} }

//
// Packer
//

func (bw *BytePack) WriteUint32(i uint32) {
	binary.NativeEndian.PutUint32(bw.b[bw.off:], i)
	bw.off += SizeofU32
}

func (bw *BytePack) WriteInt32(i int32) { bw.WriteUint32(uint32(i)) }

func (bw *BytePack) WriteUint64(i uint64) {
	binary.NativeEndian.PutUint64(bw.b[bw.off:], i)
	bw.off += SizeofU64
}

func (bw *BytePack) WriteInt64(i int64) { bw.WriteUint64(uint64(i)) }

func (bw *BytePack) WriteCString(s string) {
	bw.off += copy(bw.b[bw.off:], s)
	bw.b[bw.off] = 0
	bw.off++
}

func (bw *BytePack) WriteAny(st Packer) { st.Pack(bw) }

func (bw *BytePack) Bytes() []byte { return bw.b[:bw.off] }

//
// Unpacker
//

func (br *ByteUnpack) Len() int { return len(br.b) - br.off }

func (br *ByteUnpack) ReadUint32() (uint32, error) {
	if len(br.b)-br.off < SizeofU32 {
		return 0, ErrBufferUnderrun
	}
	n := binary.NativeEndian.Uint32(br.b[br.off:])
	br.off += SizeofU32
	return n, nil
}

func (br *ByteUnpack) ReadInt32() (int32, error) {
	n, err := br.ReadUint32()
	return int32(n), err
}

func (br *ByteUnpack) ReadUint64() (uint64, error) {
	if len(br.b)-br.off < SizeofU64 {
		return 0, ErrBufferUnderrun
	}
	n := binary.NativeEndian.Uint64(br.b[br.off:])
	br.off += SizeofU64
	return n, nil
}

func (br *ByteUnpack) ReadInt64() (int64, error) {
	n, err := br.ReadUint64()
	return int64(n), err
}

func (br *ByteUnpack) ReadCString() (string, error) {
	if br.off >= len(br.b) {
		return "", ErrBufferUnderrun
	}
	i := bytes.IndexByte(br.b[br.off:], 0)
	if i < 0 {
		return "", ErrNoTerminator
	}
	s := string(br.b[br.off : br.off+i])
	br.off += i + 1
	return s, nil
}

func (br *ByteUnpack) ReadAny(st Unpacker) error { return st.Unpack(br) }

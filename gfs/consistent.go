// Package gfs answers, collectively over all ranks of a job, questions
// about how a file is served across nodes: is it node-local, how many
// distinct servers provide it, is its content identical everywhere.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package gfs

import (
	"fmt"
	"os"
	"time"

	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/cmn/nlog"
	"github.com/NVIDIA/fgfs/comm"
	"github.com/NVIDIA/fgfs/stats"
	"github.com/NVIDIA/fgfs/tracing"
	"github.com/pkg/errors"
)

// outcome of the signature comparison, MAX-reduced
const (
	sigEqual    = 0
	sigDiffer   = 1
	sigSizeDiff = 2
)

const packedFileInfoSize = 3 * cos.SizeofU64

// FileInfo is the stat(2) subset shipped from a representative to its group
type FileInfo struct {
	Size  int64       `json:"size"`
	Mode  os.FileMode `json:"mode"`
	Mtime int64       `json:"mtime"` // unix nanoseconds
}

func (*FileInfo) PackedSize() int { return packedFileInfoSize }

func (fi *FileInfo) Pack(packer *cos.BytePack) {
	packer.WriteInt64(fi.Size)
	packer.WriteUint64(uint64(fi.Mode))
	packer.WriteInt64(fi.Mtime)
}

func (fi *FileInfo) Unpack(unpacker *cos.ByteUnpack) (err error) {
	if fi.Size, err = unpacker.ReadInt64(); err != nil {
		return
	}
	var mode uint64
	if mode, err = unpacker.ReadUint64(); err != nil {
		return
	}
	fi.Mode = os.FileMode(mode)
	fi.Mtime, err = unpacker.ReadInt64()
	return
}

// IsConsistent reports whether every rank sees the same content.
// Unless serial, a file served by a single server is trivially consistent.
func (s *Status) IsConsistent(serial bool) (ans cos.Answer) {
	end := tracing.Start("gfs.consistent", "path", s.path, "serial", fmt.Sprint(serial))
	defer func() { end(ans.String()) }()

	if !serial {
		switch s.IsUnique() {
		case cos.Error:
			return cos.Error
		case cos.Yes:
			return cos.Yes
		}
	}
	var (
		mySig []byte
		err   error
	)
	if serial {
		mySig, err = s.SignatureSerial()
	} else {
		mySig, err = s.Signature()
	}
	if err != nil {
		s.logErr("signature", err)
		return cos.Error
	}
	code, err := s.compareSig(mySig)
	if err != nil {
		s.tracker().Inc(stats.ErrQueryCount)
		s.logErr("compare signatures", err)
		return cos.Error
	}
	switch code {
	case sigEqual:
		return cos.Yes
	case sigDiffer:
		return cos.No
	default:
		s.logErr("compare signatures", ErrSigMismatch)
		return cos.Error
	}
}

// compare against the master's copy, then agree on the worst outcome
func (s *Status) compareSig(mySig []byte) (int32, error) {
	var (
		f    = s.fabric()
		code = int32(sigEqual)
	)
	n, err := comm.BcastInt64(f, comm.Global, s.pd, int64(len(mySig)))
	if err != nil {
		return 0, err
	}
	theirs := make([]byte, n)
	if s.pd.Master() {
		copy(theirs, mySig)
	}
	if err := f.Broadcast(comm.Global, s.pd, theirs); err != nil {
		return 0, err
	}
	if int(n) != len(mySig) {
		code = sigSizeDiff
	} else {
		var x byte
		for i := range mySig {
			x |= mySig[i] ^ theirs[i]
		}
		if x != 0 {
			code = sigDiffer
		}
	}
	return comm.AllReduceInt32(f, comm.Global, s.pd, code, comm.OpMax)
}

// Signature returns the content signature of the path as seen by this rank.
// Poorly distributed files are read and hashed by group representatives
// only; the result is broadcast within each group.
func (s *Status) Signature() ([]byte, error) {
	poorly := s.IsPoorlyDistributed()
	if poorly.IsErr() {
		return nil, ErrNotTriaged
	}
	if poorly.IsNo() {
		return s.SignatureSerial()
	}
	if err := s.ForceGrouping(); err != nil {
		return nil, err
	}
	var (
		f      = s.fabric()
		isRep  = s.pd.IsRep().IsYes()
		fi     FileInfo
		mySig  []byte
		errRep error
		rc     int32
	)
	if isRep {
		mySig, errRep = s.localSig(&fi)
		if errRep != nil {
			rc = 1
		}
	}
	total, err := comm.AllReduceInt32(f, comm.Global, s.pd, rc, comm.OpSum)
	if err != nil {
		return nil, err
	}
	if total != 0 {
		if errRep != nil {
			return nil, errors.Wrapf(errRep, "representative %d", s.pd.Rank())
		}
		return nil, &ErrRanks{what: "representative signature", cnt: int(total)}
	}

	// stat, signature size, signature: representative => group
	buf := make([]byte, packedFileInfoSize)
	if isRep {
		fi.Pack(cos.NewPacker(buf, 0))
	}
	if err := f.Broadcast(comm.Group, s.pd, buf); err != nil {
		return nil, errors.Wrap(err, "group stat")
	}
	if err := fi.Unpack(cos.NewUnpacker(buf)); err != nil {
		return nil, err
	}
	n, err := comm.BcastInt64(f, comm.Group, s.pd, int64(len(mySig)))
	if err != nil {
		return nil, errors.Wrap(err, "group signature size")
	}
	if !isRep {
		mySig = make([]byte, n)
	}
	if err := f.Broadcast(comm.Group, s.pd, mySig); err != nil {
		return nil, errors.Wrap(err, "group signature")
	}
	s.finfo = &fi
	return mySig, nil
}

// SignatureSerial every rank reads and hashes the file itself
func (s *Status) SignatureSerial() ([]byte, error) {
	var (
		fi FileInfo
		rc int32
		f  = s.fabric()
		pd = s.pd
	)
	if pd.Rank() == comm.NotFilled {
		rank, size, master, err := f.RankSize()
		if err != nil {
			return nil, err
		}
		pd.SetRankSize(rank, size, master)
	}
	mySig, errL := s.localSig(&fi)
	if errL != nil {
		rc = 1
	}
	total, err := comm.AllReduceInt32(f, comm.Global, pd, rc, comm.OpSum)
	if err != nil {
		return nil, err
	}
	if total != 0 {
		if errL != nil {
			return nil, errL
		}
		return nil, &ErrRanks{what: "signature", cnt: int(total)}
	}
	s.finfo = &fi
	return mySig, nil
}

// stat, check, open, and hash
func (s *Status) localSig(fi *FileInfo) ([]byte, error) {
	finfo, err := os.Stat(s.path)
	if err != nil {
		return nil, err
	}
	if !finfo.Mode().IsRegular() {
		return nil, fmt.Errorf("%q: %w", s.path, ErrNotRegular)
	}
	if finfo.Mode().Perm()&0o400 == 0 {
		return nil, fmt.Errorf("%q: %w", s.path, ErrNotReadable)
	}
	file, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	started := time.Now()
	digest, err := s.env.Signer.Sign(file, finfo.Size())
	if err != nil {
		return nil, err
	}
	*fi = FileInfo{Size: finfo.Size(), Mode: finfo.Mode(), Mtime: finfo.ModTime().UnixNano()}
	s.tracker().AddMany(
		stats.NamedVal64{Name: stats.SignatureCount, Value: 1},
		stats.NamedVal64{Name: stats.SignatureSize, Value: finfo.Size()},
	)
	if nlog.V(nlog.SmoduleGfs) {
		nlog.Infof("%s: %s signature of %s in %v", s, s.env.Signer.Type(), cos.ToSizeIEC(finfo.Size(), 1), time.Since(started))
	}
	return digest, nil
}

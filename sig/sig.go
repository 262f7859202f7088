// Package sig computes content signatures of files, the basis of
// cross-node consistency checks.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package sig

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
	"sort"

	onexxhash "github.com/OneOfOne/xxhash"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

const (
	TypeMD5     = "md5" // default
	TypeXXHash  = "xxhash"
	TypeXXHash2 = "xxhash2"
	TypeSHA256  = "sha256"
	TypeBlake2b = "blake2b"
	TypeCRC32C  = "crc32c"
)

type (
	Signer interface {
		Type() string
		Size() int
		// Sign hashes the first size bytes of an open, regular file
		Sign(f *os.File, size int64) ([]byte, error)
	}

	hashSigner struct {
		newH func() hash.Hash
		ty   string
		size int
	}
)

// interface guard
var _ Signer = (*hashSigner)(nil)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

var signers = map[string]func() hash.Hash{
	TypeMD5:     md5.New,
	TypeXXHash:  func() hash.Hash { return onexxhash.New64() },
	TypeXXHash2: func() hash.Hash { return xxhash.New() },
	TypeSHA256:  sha256.New,
	TypeBlake2b: newBlake2b128,
	TypeCRC32C:  func() hash.Hash { return crc32.New(crc32cTable) },
}

func newBlake2b128() hash.Hash {
	h, err := blake2b.New(16, nil)
	if err != nil {
		panic(err) // unreachable: fixed valid size, no key
	}
	return h
}

func Types() []string {
	types := make([]string, 0, len(signers))
	for ty := range signers {
		types = append(types, ty)
	}
	sort.Strings(types)
	return types
}

func New(ty string) (Signer, error) {
	if ty == "" {
		ty = TypeMD5
	}
	newH, ok := signers[ty]
	if !ok {
		return nil, fmt.Errorf("unknown signature type %q (expecting one of %v)", ty, Types())
	}
	return &hashSigner{newH: newH, ty: ty, size: newH().Size()}, nil
}

func (s *hashSigner) Type() string { return s.ty }
func (s *hashSigner) Size() int    { return s.size }

func (s *hashSigner) Sign(f *os.File, size int64) ([]byte, error) {
	h := s.newH()
	if size > 0 {
		if err := hashMapped(h, f, size); err != nil {
			// e.g. file systems that cannot mmap
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
			h.Reset()
			if _, err := io.CopyN(h, f, size); err != nil {
				return nil, fmt.Errorf("read %q: %w", f.Name(), err)
			}
		}
	}
	return h.Sum(nil), nil
}

// SignFile opens and hashes path; the file must be regular
func SignFile(s Signer, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	finfo, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !finfo.Mode().IsRegular() {
		return nil, fmt.Errorf("%q is not a regular file", path)
	}
	return s.Sign(f, finfo.Size())
}

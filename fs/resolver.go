// Package fs resolves paths to the file systems that serve them:
// mount table, file system types, and location-independent URIs.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package fs

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoMount = errors.New("no mount point")

type (
	// FileURI is where a path lives, in terms every rank can compare:
	// two ranks reach the same server if and only if the URIs are equal
	// (modulo host aliasing)
	FileURI struct {
		URI         string     `json:"uri"`
		MountBranch string     `json:"mount_branch"`
		Entry       MountEntry `json:"entry"`
		Type        FsType     `json:"type"`
		Remote      bool       `json:"remote"`
	}

	Resolver interface {
		Resolve(path string) (*FileURI, error)
		// mount points of storage (non-pseudo) file systems, in table order
		MountPoints() []string
	}

	// MountTable is a Resolver over a snapshot of the mount table
	MountTable struct {
		hostname string
		entries  []MountEntry
		byDir    map[string]int // last entry wins (overmount)
		dirs     []string       // longest first
	}
)

// interface guard
var _ Resolver = (*MountTable)(nil)

func NewMountTable(entries []MountEntry, hostname string) *MountTable {
	mt := &MountTable{hostname: hostname, entries: entries, byDir: make(map[string]int, len(entries))}
	for i := range entries {
		dir := filepath.Clean(entries[i].Dir)
		entries[i].Dir = dir
		if _, ok := mt.byDir[dir]; !ok {
			mt.dirs = append(mt.dirs, dir)
		}
		mt.byDir[dir] = i
	}
	sort.SliceStable(mt.dirs, func(i, j int) bool { return len(mt.dirs[i]) > len(mt.dirs[j]) })
	return mt
}

func (mt *MountTable) Hostname() string { return mt.hostname }

func (mt *MountTable) Entries() []MountEntry { return mt.entries }

func (mt *MountTable) MountPoints() []string {
	var (
		mps  = make([]string, 0, len(mt.entries))
		seen = make(map[string]struct{}, len(mt.entries))
	)
	for i := range mt.entries {
		me := &mt.entries[i]
		if IsPseudoFs(me.Type) || mt.byDir[me.Dir] != i {
			continue
		}
		if _, ok := seen[me.Dir]; ok {
			continue
		}
		seen[me.Dir] = struct{}{}
		mps = append(mps, me.Dir)
	}
	return mps
}

// Entry returns the mount entry that serves path
func (mt *MountTable) Entry(path string) (*MountEntry, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		path = abs
	}
	path = filepath.Clean(path)
	for _, dir := range mt.dirs {
		if dir == "/" || path == dir || strings.HasPrefix(path, dir+"/") {
			me := mt.entries[mt.byDir[dir]]
			return &me, nil
		}
	}
	return nil, fmt.Errorf("%w for %q (%d entries)", ErrNoMount, path, len(mt.entries))
}

func (mt *MountTable) Resolve(path string) (*FileURI, error) {
	me, err := mt.Entry(path)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path, _ = filepath.Abs(path)
	}
	var (
		clean = filepath.Clean(path)
		rel   = strings.TrimPrefix(clean, me.Dir)
		ftype = LookupFsType(me.Type)
	)
	if rel != "" && rel[0] != '/' {
		rel = "/" + rel
	}
	return &FileURI{
		URI:         BuildURI(me, ftype, mt.hostname, rel),
		MountBranch: me.Dir,
		Entry:       *me,
		Type:        ftype,
		Remote:      ftype.Remote,
	}, nil
}

// BuildURI names the server side of a path:
//
//	nfs     srv:/export        => nfs://srv/export<rel>
//	lustre  10.0.0.1@o2ib:/lfs => lustre://10.0.0.1@o2ib/lfs<rel>
//	cifs    //srv/share        => cifs://srv/share<rel>
//	other remote (gpfs, ...)   => <type>://<fsname><rel>
//	local                      => file://<hostname><mountdir><rel>
func BuildURI(me *MountEntry, ftype FsType, hostname, rel string) string {
	if !ftype.Remote {
		dir := me.Dir
		if dir == "/" {
			dir = ""
		}
		return "file://" + hostname + dir + rel
	}
	var (
		scheme = strings.TrimPrefix(me.Type, "fuse.")
		src    = me.FsName
	)
	if strings.HasPrefix(scheme, "nfs") {
		scheme = "nfs"
	}
	switch {
	case strings.HasPrefix(src, "//"):
		src = src[2:]
	case strings.Contains(src, ":/"):
		i := strings.Index(src, ":/")
		host, export := src[:i], src[i+1:]
		// lustre failover NIDs: a@net:b@net:/fs
		if j := strings.IndexByte(host, ':'); j >= 0 {
			host = host[:j]
		}
		src = host + export
	}
	src = strings.TrimSuffix(src, "/")
	return scheme + "://" + src + rel
}

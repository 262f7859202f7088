// Package fs resolves paths to the file systems that serve them:
// mount table, file system types, and location-independent URIs.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package fs

// relative device speed and degree of scalability, per file system type
const (
	BaseDeviceSpeed   = 1
	LocalDeviceSpeed  = 4
	MaxDeviceSpeed    = 10
	BaseScalability   = 1
	ParallelFsScaling = 6
)

// FsType describes a class of file system
type FsType struct {
	Name        string `json:"name"`
	Speed       int32  `json:"speed"`
	Scalability int32  `json:"scalability"`
	Remote      bool   `json:"remote"`
}

var (
	fsTypes = map[string]FsType{}

	unknownFs = FsType{Name: "unknown", Speed: BaseDeviceSpeed, Scalability: BaseScalability}

	// kernel-internal file systems never offered as storage
	pseudoFs = map[string]struct{}{
		"proc": {}, "sysfs": {}, "devpts": {}, "devtmpfs": {}, "cgroup": {}, "cgroup2": {},
		"securityfs": {}, "debugfs": {}, "tracefs": {}, "pstore": {}, "bpf": {}, "mqueue": {},
		"hugetlbfs": {}, "configfs": {}, "fusectl": {}, "binfmt_misc": {}, "autofs": {},
		"rpc_pipefs": {}, "nsfs": {}, "efivarfs": {}, "selinuxfs": {}, "overlay": {}, "squashfs": {},
	}
)

func init() {
	for _, name := range []string{"ext2", "ext3", "ext4", "xfs", "btrfs", "zfs", "jfs", "reiserfs", "f2fs", "vfat"} {
		fsTypes[name] = FsType{Name: name, Speed: LocalDeviceSpeed, Scalability: BaseScalability}
	}
	for _, name := range []string{"tmpfs", "ramfs"} {
		fsTypes[name] = FsType{Name: name, Speed: MaxDeviceSpeed, Scalability: BaseScalability}
	}
	for _, name := range []string{"nfs", "nfs4", "cifs", "smb3", "smbfs", "fuse.sshfs", "9p"} {
		fsTypes[name] = FsType{Name: name, Speed: BaseDeviceSpeed, Scalability: BaseScalability, Remote: true}
	}
	for _, name := range []string{"lustre", "gpfs", "panfs", "beegfs", "dvs", "ceph", "fuse.glusterfs"} {
		fsTypes[name] = FsType{Name: name, Speed: BaseDeviceSpeed, Scalability: ParallelFsScaling, Remote: true}
	}
}

func LookupFsType(name string) FsType {
	if t, ok := fsTypes[name]; ok {
		return t
	}
	t := unknownFs
	t.Name = name
	return t
}

func IsPseudoFs(name string) bool {
	_, ok := pseudoFs[name]
	return ok
}

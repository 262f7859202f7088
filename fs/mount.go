// Package fs resolves paths to the file systems that serve them:
// mount table, file system types, and location-independent URIs.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package fs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MountEntry is one line of a mount table (see fstab(5))
type MountEntry struct {
	FsName string `json:"fsname"` // device or remote source, e.g. "srv:/export"
	Dir    string `json:"dir"`    // mount point
	Type   string `json:"type"`
	Opts   string `json:"opts"`
}

func (me *MountEntry) ReadOnly() bool {
	for _, o := range strings.Split(me.Opts, ",") {
		if o == "ro" {
			return true
		}
	}
	return false
}

// ParseMounts reads /proc/self/mounts format:
// fsname dir type opts freq passno, with octal escapes (\040 for space)
func ParseMounts(r io.Reader) ([]MountEntry, error) {
	var (
		entries []MountEntry
		scanner = bufio.NewScanner(r)
		lno     int
	)
	for scanner.Scan() {
		lno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("mounts: line %d: expecting at least 4 fields, got %d", lno, len(fields))
		}
		entries = append(entries, MountEntry{
			FsName: unescape(fields[0]),
			Dir:    unescape(fields[1]),
			Type:   fields[2],
			Opts:   fields[3],
		})
	}
	return entries, scanner.Err()
}

func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				sb.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

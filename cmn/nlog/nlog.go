// Package nlog - fgfs logger, a thin leveled facade over glog
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/golang/glog"
)

// Verbosity levels used across packages
const (
	SmoduleComm     = 1 // collective entry/exit
	SmoduleGfs      = 2 // per-query detail
	SmoduleClassify = 2
	SmoduleWire     = 4 // packed buffers, per-peer traffic
)

func InfoDepth(depth int, args ...any)    { glog.InfoDepth(depth+1, args...) }
func Infoln(args ...any)                  { glog.InfoDepth(1, fmt.Sprintln(args...)) }
func Infof(format string, args ...any)    { glog.InfoDepthf(1, format, args...) }
func Warningln(args ...any)               { glog.WarningDepth(1, fmt.Sprintln(args...)) }
func Warningf(format string, args ...any) { glog.WarningDepthf(1, format, args...) }
func ErrorDepth(depth int, args ...any)   { glog.ErrorDepth(depth+1, args...) }
func Errorln(args ...any)                 { glog.ErrorDepth(1, fmt.Sprintln(args...)) }
func Errorf(format string, args ...any)   { glog.ErrorDepthf(1, format, args...) }

func Flush() { glog.Flush() }

// V reports whether verbosity at the call site is at least the requested level
func V(level int) bool { return bool(glog.V(glog.Level(level))) }

// SetVerbosity changes glog's -v at runtime
func SetVerbosity(level int) error {
	return flag.Set("v", strconv.Itoa(level))
}

func SetToStderr(on bool) error {
	return flag.Set("logtostderr", strconv.FormatBool(on))
}

//go:build !oteltracing

// Package tracing offers support for distributed tracing utilizing OpenTelemetry (OTEL).
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package tracing

import (
	"github.com/NVIDIA/fgfs/cmn"
	"github.com/NVIDIA/fgfs/cmn/nlog"
)

func IsEnabled() bool { return false }

func Init(conf *cmn.TracingConf, _ int) error {
	if conf != nil && conf.Enabled {
		nlog.Warningln("tracing requested but not compiled in (build with -tags oteltracing)")
	}
	return nil
}

func Shutdown() {}

func Start(string, ...string) func(string) { return func(string) {} }

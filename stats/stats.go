// Package stats provides methods and functionality to register, track,
// and export metrics of collective operations: counters, sizes, and latencies.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import (
	"strings"
	"sync"
	ratomic "sync/atomic"
	"time"
)

// metric kinds
const (
	KindCounter = "counter"
	KindSize    = "size"
	KindLatency = "latency"
)

// naming convention: ".n" counter, ".size" bytes, ".ns" latency
const (
	AllReduceCount = "allreduce.n"
	AllReduceSize  = "allreduce.size"
	BcastCount     = "bcast.n"
	BcastSize      = "bcast.size"
	MapReduceCount = "mapreduce.n"
	MapReduceSize  = "mapreduce.size" // packed grouping map bytes, as broadcast
	MapReduceLat   = "mapreduce.ns"
	GroupingCount  = "grouping.n"
	AliasElimCount = "alias.elim.n"
	TriageCount    = "triage.n"
	TriageLat      = "triage.ns"
	SignatureCount = "signature.n"
	SignatureSize  = "signature.size" // bytes hashed locally
	ErrCollCount   = "err.collective.n"
	ErrQueryCount  = "err.query.n"
)

type (
	NamedVal64 struct {
		Name  string
		Value int64
	}

	Tracker interface {
		Inc(name string)
		Add(name string, val int64)
		AddMany(namedVal64 ...NamedVal64)
	}

	// Local keeps values in memory; the default tracker, and the base of Prom
	Local struct {
		vals sync.Map // name => *int64
	}
)

// interface guard
var (
	_ Tracker = (*Local)(nil)
	_ Tracker = (*Prom)(nil)
)

var all = map[string]string{
	AllReduceCount: KindCounter,
	AllReduceSize:  KindSize,
	BcastCount:     KindCounter,
	BcastSize:      KindSize,
	MapReduceCount: KindCounter,
	MapReduceSize:  KindSize,
	MapReduceLat:   KindLatency,
	GroupingCount:  KindCounter,
	AliasElimCount: KindCounter,
	TriageCount:    KindCounter,
	TriageLat:      KindLatency,
	SignatureCount: KindCounter,
	SignatureSize:  KindSize,
	ErrCollCount:   KindCounter,
	ErrQueryCount:  KindCounter,
}

func Kind(name string) string { return all[name] }

func IsErr(name string) bool { return strings.HasPrefix(name, "err.") }

func NewLocal() *Local { return &Local{} }

func (l *Local) Inc(name string) { l.Add(name, 1) }

func (l *Local) Add(name string, val int64) {
	v, _ := l.vals.LoadOrStore(name, new(int64))
	ratomic.AddInt64(v.(*int64), val)
}

func (l *Local) AddMany(nvs ...NamedVal64) {
	for _, nv := range nvs {
		l.Add(nv.Name, nv.Value)
	}
}

func (l *Local) Get(name string) int64 {
	v, ok := l.vals.Load(name)
	if !ok {
		return 0
	}
	return ratomic.LoadInt64(v.(*int64))
}

// Since returns elapsed nanoseconds, for latency metrics
func Since(started time.Time) int64 { return int64(time.Since(started)) }

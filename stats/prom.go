// Package stats provides methods and functionality to register, track,
// and export metrics of collective operations: counters, sizes, and latencies.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import (
	"strconv"
	"strings"
	"time"

	"github.com/NVIDIA/fgfs/cmn/debug"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fgfs"

type (
	iprom interface {
		add(val int64)
	}

	counter   struct{ prometheus.Counter }
	histogram struct{ prometheus.Histogram }

	// Prom mirrors every value into Prometheus collectors
	Prom struct {
		Local
		metrics map[string]iprom
	}
)

func (c counter) add(val int64)   { c.Counter.Add(float64(val)) }
func (h histogram) add(val int64) { h.Histogram.Observe(time.Duration(val).Seconds()) }

// e.g. "mapreduce.ns" => "fgfs_mapreduce_seconds"
func promName(name string) string {
	switch Kind(name) {
	case KindLatency:
		name = strings.TrimSuffix(name, ".ns") + ".seconds"
	case KindSize:
		name = strings.TrimSuffix(name, ".size") + ".bytes"
	default:
		name = strings.TrimSuffix(name, ".n") + ".total"
	}
	return strings.ReplaceAll(name, ".", "_")
}

func NewProm(reg prometheus.Registerer, rank int) (*Prom, error) {
	var (
		p      = &Prom{metrics: make(map[string]iprom, len(all))}
		labels = prometheus.Labels{"rank": strconv.Itoa(rank)}
	)
	for name, kind := range all {
		var (
			c    prometheus.Collector
			help = "fgfs " + kind + " " + name
		)
		switch kind {
		case KindLatency:
			h := prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        promName(name),
				Help:        help,
				ConstLabels: labels,
				Buckets:     prometheus.ExponentialBuckets(1e-5, 4, 10),
			})
			p.metrics[name], c = histogram{h}, h
		default:
			cnt := prometheus.NewCounter(prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        promName(name),
				Help:        help,
				ConstLabels: labels,
			})
			p.metrics[name], c = counter{cnt}, cnt
		}
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prom) Inc(name string) { p.Add(name, 1) }

func (p *Prom) Add(name string, val int64) {
	p.Local.Add(name, val)
	m, ok := p.metrics[name]
	debug.Assert(ok, name)
	if ok {
		m.add(val)
	}
}

func (p *Prom) AddMany(nvs ...NamedVal64) {
	for _, nv := range nvs {
		p.Add(nv.Name, nv.Value)
	}
}

// Package comm provides the collective communication layer: rank/size discovery,
// all-reduce and broadcast over a global or per-group scope, and the
// grouping map-reduce that partitions ranks by an equivalence key.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"fmt"
	"time"

	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/cmn/nlog"
	"github.com/NVIDIA/fgfs/stats"
	"github.com/pkg/errors"
)

const root = 0

type (
	// Engine implements Fabric on top of a Transport
	Engine struct {
		tr     Transport
		lookup HostLookup
		stats  stats.Tracker
	}

	Option func(*Engine)
)

// interface guard
var _ Fabric = (*Engine)(nil)

func WithHostLookup(lookup HostLookup) Option { return func(e *Engine) { e.lookup = lookup } }
func WithTracker(t stats.Tracker) Option      { return func(e *Engine) { e.stats = t } }

func NewEngine(tr Transport, opts ...Option) *Engine {
	e := &Engine{tr: tr, lookup: LookupIPv4, stats: stats.NewLocal()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Transport() Transport   { return e.tr }
func (e *Engine) Tracker() stats.Tracker { return e.stats }

func (e *Engine) RankSize() (rank, size int, master bool, err error) {
	rank, size = e.tr.Rank(), e.tr.Size()
	if size <= 0 || rank < 0 || rank >= size {
		return 0, 0, false, fmt.Errorf("%w: rank %d, size %d", ErrNoRankSize, rank, size)
	}
	return rank, size, rank == root, nil
}

func (e *Engine) AllReduce(scope Scope, pd *ParDesc, send, recv []byte, dt DataType, op ReduceOp) error {
	if len(send) != len(recv) || len(send)%dt.Size() != 0 {
		return fmt.Errorf("%w: all-reduce send %d, recv %d bytes of %s", ErrSizeMismatch, len(send), len(recv), dt)
	}
	if !validOp(op) {
		return fmt.Errorf("all-reduce: invalid operator %s", op)
	}
	sub := SplitFor(scope, pd)
	if err := e.tr.AllReduce(sub, send, recv, dt, op); err != nil {
		e.stats.Inc(stats.ErrCollCount)
		return errors.Wrapf(err, "all-reduce(%s, %s, %s)", sub, dt, op)
	}
	e.stats.AddMany(
		stats.NamedVal64{Name: stats.AllReduceCount, Value: 1},
		stats.NamedVal64{Name: stats.AllReduceSize, Value: int64(len(send))},
	)
	return nil
}

func (e *Engine) Broadcast(scope Scope, pd *ParDesc, buf []byte) error {
	sub := SplitFor(scope, pd)
	if err := e.tr.Broadcast(sub, buf); err != nil {
		e.stats.Inc(stats.ErrCollCount)
		return errors.Wrapf(err, "broadcast(%s, %dB)", sub, len(buf))
	}
	e.stats.AddMany(
		stats.NamedVal64{Name: stats.BcastCount, Value: 1},
		stats.NamedVal64{Name: stats.BcastSize, Value: int64(len(buf))},
	)
	return nil
}

// Grouping partitions ranks by item; on return pd describes this rank's group.
// The grouping map of pd must be empty.
func (e *Engine) Grouping(scope Scope, pd *ParDesc, item string, elimAlias bool) error {
	if scope != Global {
		return ErrNotGlobal
	}
	if pd.MapLen() != 0 {
		return ErrMapNotEmpty
	}
	prev := pd.URI()
	pd.SetURI(item)
	err := e.MapReduce(scope, pd, []string{item}, elimAlias)
	if err == nil {
		err = pd.SetGroupInfo()
	}
	if err != nil {
		// nothing committed: empty map, previous URI, grouping not done
		pd.ResetGrouping()
		pd.SetURI(prev)
		return err
	}
	e.stats.Inc(stats.GroupingCount)
	if nlog.V(nlog.SmoduleComm) {
		nlog.Infoln("grouping:", pd.String(), item)
	}
	return nil
}

// MapReduce leaves on every rank the same map: each distinct item
// with the lowest contributing rank and the number of contributing ranks.
// On error the map is left empty.
func (e *Engine) MapReduce(scope Scope, pd *ParDesc, items []string, elimAlias bool) (err error) {
	if scope != Global {
		return ErrNotGlobal
	}
	if len(items) == 0 {
		return ErrEmptyItems
	}
	rank, _, master, err := e.RankSize()
	if err != nil {
		return err
	}
	started := time.Now()
	if pd.Rank() == NotFilled {
		pd.SetRankSize(rank, e.tr.Size(), master)
	}
	defer func() {
		if err != nil {
			pd.ClearMap()
		}
	}()
	for _, item := range items {
		pd.Insert(item, ReduceDesc{FirstRank: uint32(rank), Count: 1})
	}

	if _, err = reduceMap(e.tr, pd, root); err != nil {
		e.stats.Inc(stats.ErrCollCount)
		return err
	}
	if master && elimAlias {
		merged, err := pd.EliminateAlias(e.lookup)
		if err != nil {
			return err
		}
		if merged {
			e.stats.Inc(stats.AliasElimCount)
		}
	}

	// release the reduced map from the root
	var (
		sbuf = make([]byte, cos.SizeofU32)
		gmap []byte
	)
	if master {
		gmap = pd.PackMap()
		cos.NewPacker(sbuf, 0).WriteUint32(uint32(len(gmap)))
	}
	if err = e.Broadcast(Global, nil, sbuf); err != nil {
		return errors.Wrap(err, "map-reduce: map size")
	}
	n, _ := cos.NewUnpacker(sbuf).ReadUint32()
	if !master {
		gmap = make([]byte, n)
	}
	if err = e.Broadcast(Global, nil, gmap); err != nil {
		return errors.Wrap(err, "map-reduce: map")
	}
	if !master {
		pd.ClearMap()
		if err = pd.UnpackMap(gmap); err != nil {
			return errors.Wrap(err, "map-reduce: unpack")
		}
	}
	if elimAlias {
		pd.AdjustURI()
	}
	e.stats.AddMany(
		stats.NamedVal64{Name: stats.MapReduceCount, Value: 1},
		stats.NamedVal64{Name: stats.MapReduceSize, Value: int64(n)},
		stats.NamedVal64{Name: stats.MapReduceLat, Value: stats.Since(started)},
	)
	return nil
}

// Package memfab is an in-process transport: every rank of the job is a
// goroutine, collectives rendezvous in shared memory.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package memfab

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/NVIDIA/fgfs/comm"
)

const p2pQueueDepth = 64

var ErrAborted = errors.New("memfab: job aborted")

type (
	Kind uint8

	contrib struct {
		sub  *comm.Split
		send []byte
		recv []byte // all-reduce result, or the broadcast buffer
		rank int
		kind Kind
	}

	round struct {
		done  chan struct{}
		errs  []error
		ctrbs []contrib
		kind  Kind
		dt    comm.DataType
		op    comm.ReduceOp
		n     int
	}

	// World is the shared state of an n-rank job
	World struct {
		rounds  map[uint64]*round
		faults  map[Kind]error
		p2p     [][]chan []byte // [src][dst]
		abortCh chan struct{}
		aborted error
		mu      sync.Mutex
		n       int
		once    sync.Once
	}

	// Endpoint is one rank's view of the World; not safe for concurrent use
	Endpoint struct {
		w    *World
		rank int
		seq  uint64
	}
)

const (
	KindAllReduce Kind = iota + 1
	KindBcast
)

// interface guard
var _ comm.Transport = (*Endpoint)(nil)

func (k Kind) String() string {
	switch k {
	case KindAllReduce:
		return "all-reduce"
	case KindBcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

func NewWorld(n int) *World {
	w := &World{
		rounds:  make(map[uint64]*round),
		faults:  make(map[Kind]error),
		p2p:     make([][]chan []byte, n),
		abortCh: make(chan struct{}),
		n:       n,
	}
	for src := range n {
		w.p2p[src] = make([]chan []byte, n)
		for dst := range n {
			w.p2p[src][dst] = make(chan []byte, p2pQueueDepth)
		}
	}
	return w
}

func (w *World) Size() int { return w.n }

func (w *World) Endpoint(rank int) *Endpoint { return &Endpoint{w: w, rank: rank} }

// InjectFault fails the next collective of the given kind on every rank
func (w *World) InjectFault(k Kind, err error) {
	w.mu.Lock()
	w.faults[k] = err
	w.mu.Unlock()
}

// Abort releases every rank blocked in the World
func (w *World) Abort(err error) {
	w.once.Do(func() {
		w.mu.Lock()
		w.aborted = err
		w.mu.Unlock()
		close(w.abortCh)
	})
}

func (w *World) abortErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.aborted == nil {
		return ErrAborted
	}
	return fmt.Errorf("%w: %v", ErrAborted, w.aborted)
}

//////////////
// Endpoint //
//////////////

func (ep *Endpoint) Rank() int { return ep.rank }
func (ep *Endpoint) Size() int { return ep.w.n }

func (ep *Endpoint) AllReduce(sub *comm.Split, send, recv []byte, dt comm.DataType, op comm.ReduceOp) error {
	return ep.collective(contrib{sub: sub, send: send, recv: recv, rank: ep.rank, kind: KindAllReduce}, dt, op)
}

func (ep *Endpoint) Broadcast(sub *comm.Split, buf []byte) error {
	return ep.collective(contrib{sub: sub, recv: buf, rank: ep.rank, kind: KindBcast}, 0, 0)
}

func (ep *Endpoint) Send(dst int, buf []byte) error {
	if dst < 0 || dst >= ep.w.n {
		return fmt.Errorf("memfab: invalid destination %d", dst)
	}
	msg := append([]byte(nil), buf...)
	select {
	case ep.w.p2p[ep.rank][dst] <- msg:
		return nil
	case <-ep.w.abortCh:
		return ep.w.abortErr()
	}
}

func (ep *Endpoint) Recv(src int) ([]byte, error) {
	if src < 0 || src >= ep.w.n {
		return nil, fmt.Errorf("memfab: invalid source %d", src)
	}
	select {
	case msg := <-ep.w.p2p[src][ep.rank]:
		return msg, nil
	case <-ep.w.abortCh:
		return nil, ep.w.abortErr()
	}
}

// Every rank issues the same sequence of collectives; the i-th call
// of each rank meets the i-th call of all others. The last one to
// arrive computes the result for all.
func (ep *Endpoint) collective(c contrib, dt comm.DataType, op comm.ReduceOp) error {
	w := ep.w
	seq := ep.seq
	ep.seq++

	w.mu.Lock()
	r, ok := w.rounds[seq]
	if !ok {
		r = &round{done: make(chan struct{}), errs: make([]error, w.n), kind: c.kind, dt: dt, op: op}
		w.rounds[seq] = r
	}
	r.ctrbs = append(r.ctrbs, c)
	r.n++
	if r.n == w.n {
		delete(w.rounds, seq)
		if err, ok := w.faults[r.kind]; ok {
			delete(w.faults, r.kind)
			for i := range r.errs {
				r.errs[i] = err
			}
		} else {
			r.complete()
		}
		close(r.done)
	}
	w.mu.Unlock()

	select {
	case <-r.done:
		return r.errs[ep.rank]
	case <-w.abortCh:
		return w.abortErr()
	}
}

func (r *round) fail(ranks []int, err error) {
	for _, rank := range ranks {
		if r.errs[rank] == nil {
			r.errs[rank] = err
		}
	}
}

// complete runs under World.mu with all contributions present
func (r *round) complete() {
	type member struct {
		c   *contrib
		key int
	}
	var (
		groups = make(map[int64][]member, 1)
		all    = make([]int, 0, len(r.ctrbs))
	)
	for i := range r.ctrbs {
		c := &r.ctrbs[i]
		all = append(all, c.rank)
		color, key := int64(-1), 0
		if c.sub != nil {
			color, key = int64(c.sub.Color), c.sub.Key
		}
		groups[color] = append(groups[color], member{c, key})
	}
	for i := range r.ctrbs {
		c := &r.ctrbs[i]
		if (c.sub == nil && len(groups) > 1) || c.kind != r.kind {
			r.fail(all, errors.New("memfab: mismatched collectives"))
			return
		}
	}
	for _, members := range groups {
		sort.Slice(members, func(i, j int) bool {
			if members[i].key != members[j].key {
				return members[i].key < members[j].key
			}
			return members[i].c.rank < members[j].c.rank
		})
		ctrbs := make([]*contrib, len(members))
		ranks := make([]int, len(members))
		for i, m := range members {
			ctrbs[i], ranks[i] = m.c, m.c.rank
		}
		switch r.kind {
		case KindAllReduce:
			r.reduce(ctrbs, ranks)
		case KindBcast:
			r.bcast(ctrbs)
		}
	}
}

func (r *round) reduce(ctrbs []*contrib, ranks []int) {
	acc := append([]byte(nil), ctrbs[0].send...)
	for _, c := range ctrbs[1:] {
		if err := comm.Combine(acc, c.send, r.dt, r.op); err != nil {
			r.fail(ranks, err)
			return
		}
	}
	for _, c := range ctrbs {
		if len(c.recv) != len(acc) {
			r.errs[c.rank] = fmt.Errorf("%w: recv %d, expected %d", comm.ErrSizeMismatch, len(c.recv), len(acc))
			continue
		}
		copy(c.recv, acc)
	}
}

func (r *round) bcast(ctrbs []*contrib) {
	src := ctrbs[0].recv
	for _, c := range ctrbs[1:] {
		if len(c.recv) != len(src) {
			r.errs[c.rank] = fmt.Errorf("%w: broadcast %d, local %d", comm.ErrSizeMismatch, len(src), len(c.recv))
			continue
		}
		copy(c.recv, src)
	}
}

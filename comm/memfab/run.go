// Package memfab is an in-process transport: every rank of the job is a
// goroutine, collectives rendezvous in shared memory.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package memfab

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Run executes fn as an n-rank SPMD job and waits for all ranks.
// The first failing rank aborts the World so that peers blocked
// in a collective return instead of waiting forever.
func Run(n int, fn func(ep *Endpoint) error) error {
	return NewWorld(n).Run(fn)
}

func (w *World) Run(fn func(ep *Endpoint) error) error {
	var g errgroup.Group
	for rank := range w.n {
		ep := w.Endpoint(rank)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("rank %d: panic: %v", rank, r)
				}
				if err != nil {
					w.Abort(err)
				}
			}()
			if err = fn(ep); err != nil {
				err = fmt.Errorf("rank %d: %w", rank, err)
			}
			return err
		})
	}
	return g.Wait()
}

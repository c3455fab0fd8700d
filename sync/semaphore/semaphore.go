// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package semaphore provides named semaphores.
package semaphore

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Semaphore is a counting semaphore with statistics.
type Semaphore struct {
	name string
	n    int
	w    *semaphore.Weighted

	servs atomic.Int64
	waits atomic.Int64
	reqs  atomic.Int64
}

// New creates a new semaphore with name and capacity.
func New(name string, n int) *Semaphore {
	s := &Semaphore{
		name: name,
		n:    n,
		w:    semaphore.NewWeighted(int64(n)),
	}
	return s
}

// WaitAcquire acquires a semaphore.
// It returns a context for acquired semaphore and func to release it.
func (s *Semaphore) WaitAcquire(ctx context.Context) (context.Context, func(), error) {
	s.waits.Add(1)
	err := s.w.Acquire(ctx, 1)
	s.waits.Add(-1)
	if err != nil {
		return ctx, func() {}, err
	}
	s.servs.Add(1)
	s.reqs.Add(1)
	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			s.servs.Add(-1)
			s.w.Release(1)
		})
	}, nil
}

// Name returns name of the semaphore.
func (s *Semaphore) Name() string {
	return s.name
}

// Capacity returns capacity of the semaphore.
func (s *Semaphore) Capacity() int {
	if s == nil {
		return 0
	}
	return s.n
}

// NumServs returns number of currently served.
func (s *Semaphore) NumServs() int {
	return int(s.servs.Load())
}

// NumWaits returns number of waiters.
func (s *Semaphore) NumWaits() int {
	return int(s.waits.Load())
}

// NumRequests returns total number of requests.
func (s *Semaphore) NumRequests() int {
	return int(s.reqs.Load())
}

// Do runs f under semaphore.
func (s *Semaphore) Do(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, done, err := s.WaitAcquire(ctx)
	if err != nil {
		return err
	}
	defer done()
	return f(ctx)
}

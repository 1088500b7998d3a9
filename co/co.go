// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co holds small goroutine helpers.
package co

import (
	"sync"
)

// Goes tracks a group of goroutines.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait blocks until every goroutine started by Go returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once every goroutine started by Go returned.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}

// Waiter yields the channel to wait on for the next broadcast.
type Waiter interface {
	C() <-chan struct{}
}

// Signal announces an event to every goroutine waiting on it. The zero value is ready.
type Signal struct {
	l  sync.Mutex
	ch chan struct{}
}

func (s *Signal) current() chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

// Broadcast wakes all waiters.
func (s *Signal) Broadcast() {
	s.l.Lock()
	defer s.l.Unlock()

	close(s.current())
	s.ch = make(chan struct{})
}

// NewWaiter returns a waiter. C returns the same channel until it was closed
// by a broadcast, then the channel of the following broadcast.
func (s *Signal) NewWaiter() Waiter {
	s.l.Lock()
	defer s.l.Unlock()
	return &waiter{s: s, ref: s.current()}
}

type waiter struct {
	s    *Signal
	ref  chan struct{}
	used bool
}

func (w *waiter) C() <-chan struct{} {
	w.s.l.Lock()
	defer w.s.l.Unlock()

	if w.used {
		select {
		case <-w.ref:
			w.ref = w.s.current()
		default:
		}
	}
	w.used = true
	return w.ref
}

/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

  Licensed under the Apache License, Version 2.0 (the "License");
  you may not use this file except in compliance with the License.
  You may obtain a copy of the License at

      http://www.apache.org/licenses/LICENSE-2.0

  Unless required by applicable law or agreed to in writing, software
  distributed under the License is distributed on an "AS IS" BASIS,
  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
  See the License for the specific language governing permissions and
  limitations under the License.

*/

package timesource

import (
	"sync"
	"time"
)

// Cancellation is a scoped cancellation signal. Cancel is idempotent.
type Cancellation struct {
	mu        sync.Mutex
	done      chan struct{}
	cancelled bool
}

func newCancellation() *Cancellation {
	return &Cancellation{done: make(chan struct{})}
}

// Cancel signals cancellation. Calling it more than once is a no-op.
func (c *Cancellation) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return
	}
	c.cancelled = true
	close(c.done)
}

// Done returns a channel that is closed once Cancel has run.
func (c *Cancellation) Done() <-chan struct{} { return c.done }

// Cancelled reports whether Cancel has already run.
func (c *Cancellation) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// CreateTimeout returns a signal that cancels itself after duration has
// elapsed on source. A non-positive duration returns an already-cancelled
// signal; the source's statistics still record one created+fired+disposed
// event for that synthetic, instantaneous timer.
func CreateTimeout(source Source, duration time.Duration) *Cancellation {
	c := newCancellation()

	if duration <= 0 {
		stats := source.Stats()
		stats.TimersCreated.Add(1)
		stats.TimersFired.Add(1)
		stats.TimersDisposed.Add(1)
		c.Cancel()
		return c
	}

	var timer Timer
	timer, _ = source.CreateTimer(func(any) {
		c.Cancel()
		timer.Dispose()
	}, nil, duration, Forever)

	return c
}

// Handle is a scoped resource combining a Cancellation and the timer
// that drives it. Release cancels the signal (idempotently), disposes
// the timer if it has not already fired, and is itself idempotent: a
// second Release after the timer already disposed itself on firing does
// not double-count the disposed statistic.
type Handle struct {
	mu         sync.Mutex
	signal     *Cancellation
	timer      Timer
	disposed   bool
	stats      *Stats
	wasExpired bool
}

// CreateTimeoutHandle is the scoped-resource counterpart of
// CreateTimeout: the caller owns the Handle's lifetime and must call
// Release to free the underlying timer.
func CreateTimeoutHandle(source Source, duration time.Duration) *Handle {
	h := &Handle{signal: newCancellation(), stats: source.Stats()}

	if duration <= 0 {
		source.Stats().TimersCreated.Add(1)
		source.Stats().TimersFired.Add(1)
		source.Stats().TimersDisposed.Add(1)
		h.signal.Cancel()
		h.disposed = true
		h.wasExpired = true
		return h
	}

	timer, _ := source.CreateTimer(func(any) {
		h.mu.Lock()
		h.wasExpired = true
		h.mu.Unlock()
		h.signal.Cancel()
	}, nil, duration, Forever)
	h.timer = timer

	return h
}

// Done returns the handle's cancellation-done channel.
func (h *Handle) Done() <-chan struct{} { return h.signal.Done() }

// Cancelled reports whether the signal has fired or been released.
func (h *Handle) Cancelled() bool { return h.signal.Cancelled() }

// Release cancels the signal and disposes the underlying timer if it has
// not already disposed itself by firing. Idempotent.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.disposed = true
	h.signal.Cancel()
	if h.timer != nil && !h.wasExpired {
		h.timer.Dispose()
	}
}

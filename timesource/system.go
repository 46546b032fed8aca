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
	"context"
	"time"
)

// SystemSource delegates to the host clock and the Go runtime's timer
// facility.
type SystemSource struct {
	start time.Time
	stats Stats
}

// NewSystemSource creates a time source backed by the host clock.
func NewSystemSource() *SystemSource {
	return &SystemSource{start: time.Now()}
}

func (s *SystemSource) NowUTC() time.Time { return time.Now().UTC() }

// MonotonicTicks reports nanoseconds since the source was created, using
// the monotonic reading Go's time.Time carries internally; it is
// unaffected by wall-clock adjustments (NTP steps, manual clock changes).
func (s *SystemSource) MonotonicTicks() int64 { return int64(time.Since(s.start)) }

func (s *SystemSource) LocalTimeZone() *time.Location { return time.Local }

func (s *SystemSource) Stats() *Stats { return &s.stats }

func (s *SystemSource) CreateTimer(callback func(state any), state any, due, period time.Duration) (Timer, error) {
	if err := validateDuration("due", due); err != nil {
		return nil, err
	}
	if err := validateDuration("period", period); err != nil {
		return nil, err
	}

	t := &systemTimer{source: s, callback: callback, state: state, period: period}
	t.arm(due)
	s.stats.TimersCreated.Add(1)
	return t, nil
}

// Sleep blocks until d elapses or ctx is cancelled, whichever comes
// first. It is a pure convenience wrapper around CreateTimer, threading
// context.Context the way the rest of the ecosystem's client code does;
// it introduces no new timing invariant.
func (s *SystemSource) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	done := make(chan struct{})
	timer, err := s.CreateTimer(func(any) { close(done) }, nil, d, Forever)
	if err != nil {
		return err
	}
	defer timer.Dispose()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type systemTimer struct {
	source   *SystemSource
	callback func(state any)
	state    any
	period   time.Duration
	inner    *time.Timer
	disposed bool
}

func (t *systemTimer) arm(due time.Duration) {
	if due == Forever {
		// parked: never fires on its own.
		return
	}
	t.inner = time.AfterFunc(due, t.fire)
}

func (t *systemTimer) fire() {
	t.source.stats.TimersFired.Add(1)
	t.callback(t.state)
	if t.period != Forever && t.period > 0 {
		t.source.stats.PeriodicReschedules.Add(1)
		t.inner = time.AfterFunc(t.period, t.fire)
	} else {
		t.Dispose()
	}
}

func (t *systemTimer) Change(due, period time.Duration) (bool, error) {
	if err := validateDuration("due", due); err != nil {
		return false, err
	}
	if err := validateDuration("period", period); err != nil {
		return false, err
	}
	if t.disposed {
		return false, nil
	}
	if t.inner != nil {
		t.inner.Stop()
	}
	t.period = period
	t.arm(due)
	t.source.stats.TimersChanged.Add(1)
	return true, nil
}

func (t *systemTimer) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	if t.inner != nil {
		t.inner.Stop()
	}
	t.source.stats.TimersDisposed.Add(1)
}

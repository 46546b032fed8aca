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

// Package timesource is the injectable time seam that every other
// primitive in this module is built on: a pluggable source of ⟨𝒕⟩, split
// into a System variant that delegates to the host, and a Simulated
// variant that gives fully deterministic wall time and a monotonic
// scheduler with coalescing timers.
package timesource

import (
	"math"
	"time"

	"github.com/fogfish/chronoid/xerrors"
)

// Forever is the sentinel duration meaning "infinite": as a due, the
// timer is parked and never fires from Advance alone; as a period, the
// timer is one-shot.
const Forever = time.Duration(math.MaxInt64)

// Source is the common interface implemented by both the system and the
// simulated time sources.
type Source interface {
	// NowUTC returns the current wall time.
	NowUTC() time.Time
	// MonotonicTicks returns a free-running counter, in nanoseconds,
	// unaffected by wall-time edits.
	MonotonicTicks() int64
	// CreateTimer arms due from now, then every period thereafter
	// (Forever for a one-shot). callback(state) runs once per fire.
	CreateTimer(callback func(state any), state any, due, period time.Duration) (Timer, error)
	// LocalTimeZone is informational only.
	LocalTimeZone() *time.Location
	// Stats returns the live statistics counters for this source.
	Stats() *Stats
}

// Timer is a handle to a single scheduled (possibly periodic) callback.
type Timer interface {
	// Change rearms the timer with a new due/period, relative to now.
	// Returns false if the timer was already disposed.
	Change(due, period time.Duration) (bool, error)
	// Dispose cancels the timer. Idempotent.
	Dispose()
}

func validateDuration(arg string, d time.Duration) error {
	if d == Forever {
		return nil
	}
	if d < 0 {
		return &xerrors.InvalidArgumentError{Arg: arg, Reason: "negative, non-infinite duration"}
	}
	return nil
}

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

package hlc

import "sync/atomic"

// Stats holds the per-factory atomic counters described in the
// coordinator design: event counts plus drift/advance extrema observed
// across Receive calls.
type Stats struct {
	LocalEventCount  atomic.Int64
	SendCount        atomic.Int64
	ReceiveCount     atomic.Int64
	ClockAdvances    atomic.Int64
	RemoteAheadCount atomic.Int64

	maxRemoteAheadMS   atomic.Int64
	maxRemoteBehindMS  atomic.Int64
	maxObservedDriftMS atomic.Int64
}

func bumpMax(a *atomic.Int64, v int64) {
	for {
		cur := a.Load()
		if v <= cur {
			return
		}
		if a.CompareAndSwap(cur, v) {
			return
		}
	}
}

// MaxRemoteAheadMS is the largest observed (remote.wall_time_ms -
// before.wall_time_ms) across all Receive calls where it was positive.
func (s *Stats) MaxRemoteAheadMS() int64 { return s.maxRemoteAheadMS.Load() }

// MaxRemoteBehindMS is the largest observed (before.wall_time_ms -
// remote.wall_time_ms) across all Receive calls where it was positive.
func (s *Stats) MaxRemoteBehindMS() int64 { return s.maxRemoteBehindMS.Load() }

// MaxObservedDriftMS is the largest observed (logical_ms - physical_ms)
// across all drift checks, local event or receive alike.
func (s *Stats) MaxObservedDriftMS() int64 { return s.maxObservedDriftMS.Load() }

// Snapshot is a point-in-time, plain copy of Stats for logging/tests.
type Snapshot struct {
	LocalEventCount    int64
	SendCount          int64
	ReceiveCount       int64
	ClockAdvances      int64
	RemoteAheadCount   int64
	MaxRemoteAheadMS   int64
	MaxRemoteBehindMS  int64
	MaxObservedDriftMS int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		LocalEventCount:    s.LocalEventCount.Load(),
		SendCount:          s.SendCount.Load(),
		ReceiveCount:       s.ReceiveCount.Load(),
		ClockAdvances:      s.ClockAdvances.Load(),
		RemoteAheadCount:   s.RemoteAheadCount.Load(),
		MaxRemoteAheadMS:   s.maxRemoteAheadMS.Load(),
		MaxRemoteBehindMS:  s.maxRemoteBehindMS.Load(),
		MaxObservedDriftMS: s.maxObservedDriftMS.Load(),
	}
}

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

import "sync/atomic"

// Stats holds monotonic counters observing a Source's timer activity.
// Every field is updated with atomic instructions so readers never need
// to take a lock, and an "interlocked max" CAS loop keeps MaxQueueLength
// correct under concurrent Advance/CreateTimer calls.
type Stats struct {
	TimersCreated       atomic.Int64
	TimersChanged       atomic.Int64
	TimersDisposed      atomic.Int64
	TimersFired         atomic.Int64
	PeriodicReschedules atomic.Int64
	AdvanceCalls        atomic.Int64
	TicksAdvanced       atomic.Int64
	QueueEnqueues       atomic.Int64
	MaxQueueLength      atomic.Int64
}

// bumpMaxQueueLength performs an interlocked max update.
func (s *Stats) bumpMaxQueueLength(n int64) {
	for {
		cur := s.MaxQueueLength.Load()
		if n <= cur {
			return
		}
		if s.MaxQueueLength.CompareAndSwap(cur, n) {
			return
		}
	}
}

// Snapshot is a point-in-time, non-atomic copy of Stats suitable for
// logging or assertions.
type Snapshot struct {
	TimersCreated       int64
	TimersChanged       int64
	TimersDisposed      int64
	TimersFired         int64
	PeriodicReschedules int64
	AdvanceCalls        int64
	TicksAdvanced       int64
	QueueEnqueues       int64
	MaxQueueLength      int64
}

// Snapshot reads all counters into a plain value.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		TimersCreated:       s.TimersCreated.Load(),
		TimersChanged:       s.TimersChanged.Load(),
		TimersDisposed:      s.TimersDisposed.Load(),
		TimersFired:         s.TimersFired.Load(),
		PeriodicReschedules: s.PeriodicReschedules.Load(),
		AdvanceCalls:        s.AdvanceCalls.Load(),
		TicksAdvanced:       s.TicksAdvanced.Load(),
		QueueEnqueues:       s.QueueEnqueues.Load(),
		MaxQueueLength:      s.MaxQueueLength.Load(),
	}
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.TimersCreated.Store(0)
	s.TimersChanged.Store(0)
	s.TimersDisposed.Store(0)
	s.TimersFired.Store(0)
	s.PeriodicReschedules.Store(0)
	s.AdvanceCalls.Store(0)
	s.TicksAdvanced.Store(0)
	s.QueueEnqueues.Store(0)
	s.MaxQueueLength.Store(0)
}

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

package vclock

import "sync/atomic"

// Stats holds the coordinator's per-operation atomic counters.
type Stats struct {
	SendCount       atomic.Int64
	ReceiveCount    atomic.Int64
	LocalEventCount atomic.Int64
	ClockMerges     atomic.Int64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	SendCount       int64
	ReceiveCount    int64
	LocalEventCount int64
	ClockMerges     int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		SendCount:       s.SendCount.Load(),
		ReceiveCount:    s.ReceiveCount.Load(),
		LocalEventCount: s.LocalEventCount.Load(),
		ClockMerges:     s.ClockMerges.Load(),
	}
}

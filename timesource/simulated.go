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
	"container/heap"
	"math"
	"sync"
	"time"

	"github.com/fogfish/chronoid/xerrors"
)

// SimulatedSource is a time source whose wall time and scheduler ticks
// are advanced only by explicit calls, giving fully reproducible timer
// execution. Grounded in the juju/juju testing.Clock idiom: a mutex-
// guarded sorted queue of alarms, drained on Advance.
type SimulatedSource struct {
	mu     sync.Mutex
	wall   time.Time
	ticks  int64
	nextID uint64
	queue  timerHeap
	timers map[uint64]*simTimerState
	stats  Stats
}

// NewSimulatedSource creates a simulated time source starting at epoch.
func NewSimulatedSource(start time.Time) *SimulatedSource {
	return &SimulatedSource{
		wall:   start,
		timers: make(map[uint64]*simTimerState),
	}
}

func (s *SimulatedSource) NowUTC() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wall
}

func (s *SimulatedSource) MonotonicTicks() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *SimulatedSource) LocalTimeZone() *time.Location { return time.UTC }

func (s *SimulatedSource) Stats() *Stats { return &s.stats }

// SetUTCNow replaces wall time. It does not advance scheduler ticks or
// fire timers; wall time may move backward.
func (s *SimulatedSource) SetUTCNow(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wall = t
}

// entry is a snapshot pushed onto the priority queue; it is compared
// against the live simTimerState.dueAtTicks on pop to detect staleness
// left behind by Change (a fresh entry is pushed instead of mutating the
// old one in place).
type entry struct {
	dueAtTicks int64
	id         uint64
	index      int
}

type timerHeap []*entry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].dueAtTicks != h[j].dueAtTicks {
		return h[i].dueAtTicks < h[j].dueAtTicks
	}
	return h[i].id < h[j].id
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

type simTimerState struct {
	id          uint64
	callback    func(state any)
	state       any
	dueAtTicks  int64
	periodTicks int64 // 0 means one-shot
	disposed    bool
}

// Advance atomically adds d to wall time and scheduler ticks, then
// drains the queue: every timer whose due_at_ticks <= the new scheduler
// ticks fires exactly once (coalescing: at most one tick per timer per
// Advance call, regardless of how many periods fit within d). Callbacks
// run on the caller's goroutine after the lock is released, and may
// re-enter the source (create/change/dispose timers, including the
// firing timer itself).
func (s *SimulatedSource) Advance(d time.Duration) error {
	if d < 0 {
		return &xerrors.InvalidArgumentError{Arg: "d", Reason: "negative advance"}
	}

	s.mu.Lock()
	s.wall = s.wall.Add(d)
	s.ticks += int64(d)
	s.stats.AdvanceCalls.Add(1)
	s.stats.TicksAdvanced.Add(int64(d))

	type fire struct {
		callback func(state any)
		state    any
	}
	var fired []fire

	for s.queue.Len() > 0 {
		top := s.queue[0]
		if top.dueAtTicks > s.ticks {
			break
		}
		heap.Pop(&s.queue)

		ts, ok := s.timers[top.id]
		if !ok || ts.disposed || ts.dueAtTicks != top.dueAtTicks {
			// stale: superseded by Change, or already disposed.
			continue
		}

		fired = append(fired, fire{ts.callback, ts.state})
		s.stats.TimersFired.Add(1)

		if ts.periodTicks > 0 {
			ts.dueAtTicks = s.ticks + ts.periodTicks
			heap.Push(&s.queue, &entry{dueAtTicks: ts.dueAtTicks, id: ts.id})
			s.stats.QueueEnqueues.Add(1)
			s.stats.PeriodicReschedules.Add(1)
		} else {
			ts.disposed = true
			delete(s.timers, ts.id)
			s.stats.TimersDisposed.Add(1)
		}
	}
	s.stats.bumpMaxQueueLength(int64(s.queue.Len()))
	s.mu.Unlock()

	for _, f := range fired {
		f.callback(f.state)
	}
	return nil
}

// AdvanceTo is sugar for SetUTCNow followed by Advance by the wall-clock
// delta. It is not atomic with calling the two separately, and exists
// purely for deterministic test ergonomics.
func (s *SimulatedSource) AdvanceTo(t time.Time) error {
	s.mu.Lock()
	d := t.Sub(s.wall)
	s.mu.Unlock()
	if d < 0 {
		s.SetUTCNow(t)
		return nil
	}
	return s.Advance(d)
}

func (s *SimulatedSource) CreateTimer(callback func(state any), state any, due, period time.Duration) (Timer, error) {
	if err := validateDuration("due", due); err != nil {
		return nil, err
	}
	if err := validateDuration("period", period); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	dueAtTicks := int64(math.MaxInt64)
	if due != Forever {
		dueAtTicks = s.ticks + int64(due)
	}
	periodTicks := int64(0)
	if period != Forever && period > 0 {
		periodTicks = int64(period)
	}

	ts := &simTimerState{
		id:          id,
		callback:    callback,
		state:       state,
		dueAtTicks:  dueAtTicks,
		periodTicks: periodTicks,
	}
	s.timers[id] = ts
	heap.Push(&s.queue, &entry{dueAtTicks: dueAtTicks, id: id})
	s.stats.QueueEnqueues.Add(1)
	s.stats.TimersCreated.Add(1)
	s.stats.bumpMaxQueueLength(int64(s.queue.Len()))

	return &simTimer{source: s, id: id}, nil
}

type simTimer struct {
	source *SimulatedSource
	id     uint64
}

func (t *simTimer) Change(due, period time.Duration) (bool, error) {
	if err := validateDuration("due", due); err != nil {
		return false, err
	}
	if err := validateDuration("period", period); err != nil {
		return false, err
	}

	t.source.mu.Lock()
	defer t.source.mu.Unlock()

	ts, ok := t.source.timers[t.id]
	if !ok || ts.disposed {
		return false, nil
	}

	dueAtTicks := int64(math.MaxInt64)
	if due != Forever {
		dueAtTicks = t.source.ticks + int64(due)
	}
	periodTicks := int64(0)
	if period != Forever && period > 0 {
		periodTicks = int64(period)
	}

	ts.dueAtTicks = dueAtTicks
	ts.periodTicks = periodTicks
	heap.Push(&t.source.queue, &entry{dueAtTicks: dueAtTicks, id: t.id})
	t.source.stats.QueueEnqueues.Add(1)
	t.source.stats.TimersChanged.Add(1)
	t.source.stats.bumpMaxQueueLength(int64(t.source.queue.Len()))
	return true, nil
}

func (t *simTimer) Dispose() {
	t.source.mu.Lock()
	defer t.source.mu.Unlock()

	ts, ok := t.source.timers[t.id]
	if !ok || ts.disposed {
		return
	}
	ts.disposed = true
	delete(t.source.timers, t.id)
	t.source.stats.TimersDisposed.Add(1)
}

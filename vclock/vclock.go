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

// Package vclock implements an immutable sparse vector clock: a sorted
// mapping from node id to counter, with exact happens-before / concurrent
// detection. Grounded in the race detector's fixed-array vector clock
// algebra (merge-by-max, partial order via two-pointer scan), adapted here
// to a sparse sorted-slice representation since node ids are not densely
// packed.
package vclock

import (
	"sort"

	"github.com/fogfish/chronoid/xerrors"
)

// MaxNodes is the capacity ceiling enforced by Increment.
const MaxNodes = 65536

// VectorClock is an immutable value: two parallel sorted slices,
// node_ids strictly ascending with no duplicates, counters aligned.
// Missing entries read as 0. The zero value is the empty clock.
type VectorClock struct {
	nodeIDs  []uint16
	counters []uint64
}

// Nodes returns the clock's node ids in ascending order. The returned
// slice is owned by the caller; it is a copy of the internal state.
func (v VectorClock) Nodes() []uint16 {
	out := make([]uint16, len(v.nodeIDs))
	copy(out, v.nodeIDs)
	return out
}

// Len is the number of node ids tracked.
func (v VectorClock) Len() int { return len(v.nodeIDs) }

// Get returns the counter for nodeID, or 0 if absent.
func (v VectorClock) Get(nodeID uint16) uint64 {
	i := sort.Search(len(v.nodeIDs), func(i int) bool { return v.nodeIDs[i] >= nodeID })
	if i < len(v.nodeIDs) && v.nodeIDs[i] == nodeID {
		return v.counters[i]
	}
	return 0
}

// Increment returns a copy of v with nodeID's counter advanced by one,
// inserting a new entry at its sorted position if absent. Fails with
// CapacityExceeded if the clock would grow past MaxNodes distinct ids.
func (v VectorClock) Increment(nodeID uint16) (VectorClock, error) {
	i := sort.Search(len(v.nodeIDs), func(i int) bool { return v.nodeIDs[i] >= nodeID })

	if i < len(v.nodeIDs) && v.nodeIDs[i] == nodeID {
		out := v.clone()
		out.counters[i]++
		return out, nil
	}

	if len(v.nodeIDs) >= MaxNodes {
		return VectorClock{}, &xerrors.CapacityExceededError{Limit: MaxNodes}
	}

	nodeIDs := make([]uint16, len(v.nodeIDs)+1)
	counters := make([]uint64, len(v.counters)+1)
	copy(nodeIDs, v.nodeIDs[:i])
	copy(counters, v.counters[:i])
	nodeIDs[i] = nodeID
	counters[i] = 1
	copy(nodeIDs[i+1:], v.nodeIDs[i:])
	copy(counters[i+1:], v.counters[i:])

	return VectorClock{nodeIDs: nodeIDs, counters: counters}, nil
}

func (v VectorClock) clone() VectorClock {
	nodeIDs := make([]uint16, len(v.nodeIDs))
	counters := make([]uint64, len(v.counters))
	copy(nodeIDs, v.nodeIDs)
	copy(counters, v.counters)
	return VectorClock{nodeIDs: nodeIDs, counters: counters}
}

// Merge returns the least upper bound of v and other: a linear
// two-pointer scan taking the max counter at each node id present in
// either clock. Commutative, associative, idempotent.
func (v VectorClock) Merge(other VectorClock) VectorClock {
	nodeIDs := make([]uint16, 0, len(v.nodeIDs)+len(other.nodeIDs))
	counters := make([]uint64, 0, cap(nodeIDs))

	i, j := 0, 0
	for i < len(v.nodeIDs) || j < len(other.nodeIDs) {
		switch {
		case j >= len(other.nodeIDs) || (i < len(v.nodeIDs) && v.nodeIDs[i] < other.nodeIDs[j]):
			nodeIDs = append(nodeIDs, v.nodeIDs[i])
			counters = append(counters, v.counters[i])
			i++
		case i >= len(v.nodeIDs) || other.nodeIDs[j] < v.nodeIDs[i]:
			nodeIDs = append(nodeIDs, other.nodeIDs[j])
			counters = append(counters, other.counters[j])
			j++
		default:
			nodeIDs = append(nodeIDs, v.nodeIDs[i])
			c := v.counters[i]
			if other.counters[j] > c {
				c = other.counters[j]
			}
			counters = append(counters, c)
			i++
			j++
		}
	}

	return VectorClock{nodeIDs: nodeIDs, counters: counters}
}

// Ordering is the result of Compare.
type Ordering int

const (
	Equal Ordering = iota
	Before
	After
	Concurrent
)

func (o Ordering) String() string {
	switch o {
	case Equal:
		return "Equal"
	case Before:
		return "Before"
	case After:
		return "After"
	default:
		return "Concurrent"
	}
}

// Compare classifies the partial-order relationship between v and other
// via a linear merge-style scan, maintaining two flags (v<=other,
// other<=v) with early exit to Concurrent once both go false.
func (v VectorClock) Compare(other VectorClock) Ordering {
	thisLE, otherLE := true, true

	i, j := 0, 0
	for (i < len(v.nodeIDs) || j < len(other.nodeIDs)) && (thisLE || otherLE) {
		switch {
		case j >= len(other.nodeIDs) || (i < len(v.nodeIDs) && v.nodeIDs[i] < other.nodeIDs[j]):
			if v.counters[i] > 0 {
				otherLE = false
			}
			i++
		case i >= len(v.nodeIDs) || other.nodeIDs[j] < v.nodeIDs[i]:
			if other.counters[j] > 0 {
				thisLE = false
			}
			j++
		default:
			if v.counters[i] > other.counters[j] {
				otherLE = false
			}
			if other.counters[j] > v.counters[i] {
				thisLE = false
			}
			i++
			j++
		}
	}

	switch {
	case thisLE && otherLE:
		return Equal
	case thisLE:
		return Before
	case otherLE:
		return After
	default:
		return Concurrent
	}
}

// HappensBefore reports whether v strictly precedes other.
func (v VectorClock) HappensBefore(other VectorClock) bool { return v.Compare(other) == Before }

// HappensAfter reports whether v strictly follows other.
func (v VectorClock) HappensAfter(other VectorClock) bool { return v.Compare(other) == After }

// IsConcurrentWith reports whether neither clock precedes the other.
func (v VectorClock) IsConcurrentWith(other VectorClock) bool { return v.Compare(other) == Concurrent }

// Equal reports structural equality over the canonical form.
func (v VectorClock) Equal(other VectorClock) bool { return v.Compare(other) == Equal }

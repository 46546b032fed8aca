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

import "sync"

// Coordinator is a per-node mutable holder wrapping a VectorClock and its
// node id under a lock, exposing the message-passing API on top of the
// immutable value operations.
type Coordinator struct {
	mu      sync.Mutex
	nodeID  uint16
	current VectorClock
	stats   Stats
}

// NewCoordinator creates a coordinator for nodeID starting from the empty
// clock.
func NewCoordinator(nodeID uint16) *Coordinator {
	return &Coordinator{nodeID: nodeID}
}

// Stats returns the coordinator's statistics counters.
func (c *Coordinator) Stats() *Stats { return &c.stats }

// Snapshot returns the current clock value. Safe to retain: VectorClock
// is immutable.
func (c *Coordinator) Snapshot() VectorClock {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// BeforeSend increments the local node's counter and returns the
// resulting snapshot to attach to an outgoing message.
func (c *Coordinator) BeforeSend() (VectorClock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.current.Increment(c.nodeID)
	if err != nil {
		return VectorClock{}, err
	}
	c.current = next
	c.stats.SendCount.Add(1)
	return c.current, nil
}

// BeforeReceive merges remote into the local clock, then increments the
// local node's counter.
func (c *Coordinator) BeforeReceive(remote VectorClock) (VectorClock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := c.current.Merge(remote)
	c.stats.ClockMerges.Add(1)

	next, err := merged.Increment(c.nodeID)
	if err != nil {
		return VectorClock{}, err
	}
	c.current = next
	c.stats.ReceiveCount.Add(1)
	return c.current, nil
}

// NewLocalEvent increments the local node's counter for an event with no
// message attached.
func (c *Coordinator) NewLocalEvent() (VectorClock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.current.Increment(c.nodeID)
	if err != nil {
		return VectorClock{}, err
	}
	c.current = next
	c.stats.LocalEventCount.Add(1)
	return c.current, nil
}

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

import (
	"sync"

	"github.com/fogfish/chronoid/timesource"
)

// Registry is a process-wide node_id -> Factory mapping keyed by a shared
// time source, used to simulate a cluster of HLC-bearing nodes against one
// deterministic clock in tests.
type Registry struct {
	mu  sync.Mutex
	ts  timesource.Source
	opt []Option

	factories map[uint16]*Factory
}

// NewRegistry creates a registry whose factories all draw physical time
// from ts. opts are applied to every factory created by Register.
func NewRegistry(ts timesource.Source, opts ...Option) *Registry {
	return &Registry{
		ts:        ts,
		opt:       opts,
		factories: make(map[uint16]*Factory),
	}
}

// Register returns the factory for nodeID, creating it on first use.
// Idempotent: a second call with the same id returns the same factory.
func (r *Registry) Register(nodeID uint16) *Factory {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.factories[nodeID]; ok {
		return f
	}
	f := NewFactory(r.ts, nodeID, r.opt...)
	r.factories[nodeID] = f
	return f
}

// SimulateMessage calls Send on the sender's factory and Receive (with the
// sent timestamp) on the receiver's factory, atomically with respect to
// other registry operations (the two transitions are the message-passing
// unit the registry exposes to external observers).
func (r *Registry) SimulateMessage(sender, receiver uint16) (Timestamp, Timestamp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	from := r.factories[sender]
	to := r.factories[receiver]

	sent, err := from.Send()
	if err != nil {
		return Timestamp{}, Timestamp{}, err
	}
	received, err := to.Receive(sent)
	if err != nil {
		return sent, Timestamp{}, err
	}
	return sent, received, nil
}

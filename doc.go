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

/*

Package chronoid implements the four interlocked primitives that
distributed services need to order, correlate and deduplicate events
without a central clock:

↣ timesource is an injectable wall-clock + monotonic scheduler, with a
fully deterministic "simulated" variant for reproducible tests.

↣ uuidv7 is a lock-free RFC 9562 v7 identifier factory, strictly
monotonic per instance even when wall time stalls or moves backward.

↣ hlc is a Hybrid Logical Clock combining physical milliseconds with a
12-bit counter and a node id, preserving causality under bounded drift.

↣ vclock is an immutable sparse vector clock giving exact happens-before
and concurrency detection between nodes.

Inspiration

This module descends from a k-ordered identifier scheme
(https://github.com/fogfish/guid) built around a single ⟨𝒕, 𝒍, 𝒔⟩ triple:
a monotonic clock fraction, a spatially unique node location, and a
sequence counter that prevents collisions within one clock tick. That
triple recurs, in slightly different shapes, in all four packages here:
UUIDv7's (wall_time, counter) packed state, HLC's (logical_ms, counter,
node_id), and the vector clock's (node_id -> counter) map. Each package
now speaks its own standardised wire format: RFC 9562 for identifiers,
big-endian fixed-width fractions for HLC, a sparse sorted map for vector
clocks, rather than the original's 96/64-bit drift-biased encoding, but
the bit-splitting and node-identifier resolution machinery that encoding
relied on is still in use, adapted, under internal/bitpack and
internal/nodeid.

Usage

A service typically owns one timesource.Source (system in production, a
simulated one under test), and derives an uuidv7.Factory and an
hlc.Factory from it, both keyed by the same node id:

	ts := timesource.NewSystemSource()
	nodeID := chronoid.ResolveNodeID()
	ids := uuidv7.NewFactory(ts)
	clock := hlc.NewFactory(ts, uint16(nodeID))

Messages crossing a node boundary carry an hlc.Timestamp and/or a
vclock.VectorClock in a header (see hlc.ParseHeader / vclock.ParseHeader),
so the receiver can Witness / Receive them before replying.

*/
package chronoid

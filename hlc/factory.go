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
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/fogfish/chronoid/timesource"
	"github.com/fogfish/chronoid/xerrors"
)

// Clock is the interface a Factory satisfies, mirroring the shape of
// cockroachdb's hlc.Clock so callers can depend on the narrower surface.
type Clock interface {
	Send() (Timestamp, error)
	Receive(remote Timestamp) (Timestamp, error)
	Witness(remoteMS int64) (Timestamp, error)
	Now() Timestamp
}

// Option configures a Factory.
type Option func(*Factory)

// WithMaxDrift sets the maximum tolerated (logical_ms - physical_ms)
// drift. Zero (the default) disables strict enforcement: drift is still
// tracked in statistics but never rejected.
func WithMaxDrift(maxDriftMS int64) Option {
	return func(f *Factory) {
		f.maxDriftMS = maxDriftMS
		f.throwOnDrift = maxDriftMS > 0
	}
}

// WithRandomSource injects the byte stream used to fill the random tail
// when producing a UUIDv7 embedding. Defaults to crypto/rand.Reader.
func WithRandomSource(r io.Reader) Option {
	return func(f *Factory) { f.random = r }
}

// WithLogger attaches a logger used to record drift-exceeded events at
// Debug level. Counter-overflow rolls are not logged.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(f *Factory) { f.logger = l }
}

// Factory is a per-node HLC coordinator: state (logical_ms, counter,
// node_id) under one mutex, an injected random source read for six fresh
// bytes on every UUIDv7 embedding (no random buffer is kept between
// calls), and the Send/Receive/Witness transitions from cockroachdb's
// util/hlc/hlc.go, generalised to this module's multi-encoding shape.
type Factory struct {
	mu sync.Mutex

	ts     timesource.Source
	nodeID uint16

	logicalMS int64
	counter   uint16

	maxDriftMS   int64
	throwOnDrift bool

	random io.Reader
	logger *zap.SugaredLogger

	stats Stats
}

// NewFactory creates an HLC factory for nodeID, drawing physical time
// from ts.
func NewFactory(ts timesource.Source, nodeID uint16, opts ...Option) *Factory {
	f := &Factory{
		ts:     ts,
		nodeID: nodeID,
		random: rand.Reader,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Stats returns the factory's statistics counters.
func (f *Factory) Stats() *Stats { return &f.stats }

// Now returns the last-issued timestamp without advancing state.
func (f *Factory) Now() Timestamp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Timestamp{WallTimeMS: f.logicalMS, Counter: f.counter, NodeID: f.nodeID}
}

func (f *Factory) physicalMS() int64 {
	return f.ts.NowUTC().UnixMilli()
}

// checkDrift must be called with f.mu held. It records the observed drift
// and, if strict enforcement is enabled and exceeded, returns an error.
func (f *Factory) checkDrift(pt int64) error {
	drift := f.logicalMS - pt
	bumpMax(&f.stats.maxObservedDriftMS, drift)
	if f.throwOnDrift && drift > f.maxDriftMS {
		f.logger.Debugw("hlc: drift exceeded", "drift", drift, "max", f.maxDriftMS)
		return &xerrors.HlcDriftExceededError{ActualMS: drift, MaxMS: f.maxDriftMS}
	}
	return nil
}

// Send produces a local-event timestamp: the physical clock advances the
// logical clock when it is ahead, otherwise the counter ticks forward
// with an overflow roll into the next millisecond.
func (f *Factory) Send() (Timestamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pt := f.physicalMS()

	if pt > f.logicalMS {
		f.logicalMS = pt
		f.counter = 0
	} else {
		f.counter++
		if f.counter > 0xFFF {
			f.logicalMS++
			f.counter = 0
		}
	}

	f.stats.SendCount.Add(1)
	f.stats.LocalEventCount.Add(1)

	if err := f.checkDrift(pt); err != nil {
		return Timestamp{}, err
	}
	return Timestamp{WallTimeMS: f.logicalMS, Counter: f.counter, NodeID: f.nodeID}, nil
}

// SendUUID is Send, additionally rendering the result as a UUIDv7
// embedding with a freshly drawn random tail.
func (f *Factory) SendUUID() (ts Timestamp, id [16]byte, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pt := f.physicalMS()
	if pt > f.logicalMS {
		f.logicalMS = pt
		f.counter = 0
	} else {
		f.counter++
		if f.counter > 0xFFF {
			f.logicalMS++
			f.counter = 0
		}
	}

	f.stats.SendCount.Add(1)
	f.stats.LocalEventCount.Add(1)

	if err = f.checkDrift(pt); err != nil {
		return Timestamp{}, [16]byte{}, err
	}

	ts = Timestamp{WallTimeMS: f.logicalMS, Counter: f.counter, NodeID: f.nodeID}

	var tail [6]byte
	_, _ = io.ReadFull(f.random, tail[:])
	u := ToUUID(ts, tail[:])
	return ts, [16]byte(u), nil
}

// Receive witnesses a remote timestamp, producing a result strictly
// greater than both the prior local timestamp and remote (lexicographic
// order). node_id in the result is always the local id.
func (f *Factory) Receive(remote Timestamp) (Timestamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receiveLocked(remote)
}

func (f *Factory) receiveLocked(remote Timestamp) (Timestamp, error) {
	pt := f.physicalMS()
	before := f.logicalMS

	local := Timestamp{WallTimeMS: f.logicalMS, Counter: f.counter, NodeID: f.nodeID}
	physical := Timestamp{WallTimeMS: pt}

	max := local
	if remote.Compare(max) > 0 {
		max = remote
	}
	if physical.Compare(max) > 0 {
		max = physical
	}

	switch {
	case max.Compare(local) == 0:
		f.counter++
		if f.counter > 0xFFF {
			f.logicalMS++
			f.counter = 0
		}
	case max.Compare(remote) == 0:
		f.logicalMS = remote.WallTimeMS
		f.counter = remote.Counter + 1
		if f.counter > 0xFFF {
			f.logicalMS++
			f.counter = 0
		}
	default:
		f.logicalMS = pt
		f.counter = 0
	}

	f.stats.ReceiveCount.Add(1)

	if remote.WallTimeMS > before {
		bumpMax(&f.stats.maxRemoteAheadMS, remote.WallTimeMS-before)
		f.stats.RemoteAheadCount.Add(1)
	} else if remote.WallTimeMS < before {
		bumpMax(&f.stats.maxRemoteBehindMS, before-remote.WallTimeMS)
	}
	if remote.WallTimeMS > before && f.logicalMS == remote.WallTimeMS {
		f.stats.ClockAdvances.Add(1)
	}

	if err := f.checkDrift(pt); err != nil {
		return Timestamp{}, err
	}
	return Timestamp{WallTimeMS: f.logicalMS, Counter: f.counter, NodeID: f.nodeID}, nil
}

// Witness is the scalar convenience form of Receive, equivalent to
// witnessing (remoteMS, 0, 0).
func (f *Factory) Witness(remoteMS int64) (Timestamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receiveLocked(Timestamp{WallTimeMS: remoteMS})
}

// CheckpointSize is the size of the Checkpoint blob.
const CheckpointSize = 12

// Checkpoint exposes (logical_ms, counter, node_id) as a 12-byte
// little-endian blob.
func (f *Factory) Checkpoint() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	b := make([]byte, CheckpointSize)
	binary.LittleEndian.PutUint64(b[0:8], uint64(f.logicalMS))
	binary.LittleEndian.PutUint16(b[8:10], f.counter)
	binary.LittleEndian.PutUint16(b[10:12], f.nodeID)
	return b
}

// Restore adopts a checkpoint only if it moves the clock forward: if the
// checkpoint's (logical_ms, counter) is lexicographically greater than the
// current pair, it is adopted; otherwise the call is a no-op.
func (f *Factory) Restore(blob []byte) error {
	if len(blob) < CheckpointSize {
		return &xerrors.BufferTooSmallError{Need: CheckpointSize, Got: len(blob)}
	}

	logicalMS := int64(binary.LittleEndian.Uint64(blob[0:8]))
	counter := binary.LittleEndian.Uint16(blob[8:10])

	f.mu.Lock()
	defer f.mu.Unlock()

	if logicalMS > f.logicalMS || (logicalMS == f.logicalMS && counter > f.counter) {
		f.logicalMS = logicalMS
		f.counter = counter
	}
	return nil
}

var _ Clock = (*Factory)(nil)

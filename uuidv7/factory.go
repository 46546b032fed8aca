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

package uuidv7

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/fogfish/chronoid/timesource"
	"github.com/fogfish/chronoid/xerrors"
)

// OverflowPolicy selects what a Factory does when the 12-bit counter is
// exhausted within a single wall-time millisecond.
type OverflowPolicy int

const (
	// SpinWait busy-waits (yielding between attempts) until wall time
	// advances to the next millisecond, then retries.
	SpinWait OverflowPolicy = iota
	// IncrementTimestamp advances the packed timestamp by one
	// millisecond ahead of wall time and draws a fresh counter.
	IncrementTimestamp
	// Throw fails with CounterOverflowError.
	Throw
	// Auto behaves as IncrementTimestamp when the factory's time source
	// is a *timesource.SimulatedSource (where SpinWait could block
	// forever without an explicit Advance), and as SpinWait otherwise.
	Auto
)

func (p OverflowPolicy) String() string {
	switch p {
	case SpinWait:
		return "SpinWait"
	case IncrementTimestamp:
		return "IncrementTimestamp"
	case Throw:
		return "Throw"
	case Auto:
		return "Auto"
	default:
		return "Unknown"
	}
}

// Option configures a Factory.
type Option func(*Factory)

// WithRandomSource injects the byte stream used for the random tail
// bytes and counter seeding. Defaults to crypto/rand.Reader; tests
// substitute a deterministic stream.
func WithRandomSource(r io.Reader) Option {
	return func(f *Factory) { f.random = r }
}

// WithOverflowPolicy selects the counter-overflow behaviour. Defaults to
// Auto.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(f *Factory) { f.policy = p }
}

// WithLogger attaches a logger that records counter-overflow rolls at
// Debug level. The default is a no-op so the hot path never pays for
// logging when unconfigured.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(f *Factory) { f.logger = l }
}

// Factory is a lock-free RFC 9562 v7 identifier generator. One 64-bit
// word (48-bit wall time ms, 16-bit counter) is updated with a CAS loop;
// the packed word only ever increases, so ABA is structurally
// impossible.
type Factory struct {
	ts     timesource.Source
	state  atomic.Uint64
	policy OverflowPolicy
	random io.Reader
	logger *zap.SugaredLogger

	bufs sync.Pool // *randBuf, refilled in chunks from `random`
}

// NewFactory creates a Factory drawing wall time from ts.
func NewFactory(ts timesource.Source, opts ...Option) *Factory {
	f := &Factory{
		ts:     ts,
		policy: Auto,
		random: rand.Reader,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.bufs.New = func() any { return &randBuf{cursor: randChunkSize} }
	return f
}

const randChunkSize = 4096

// randBuf is a goroutine-local-ish scratch buffer (borrowed from and
// returned to a sync.Pool, the closest stand-in Go has for true
// thread-local storage) refilled in chunks to reduce syscalls into the
// injected random source.
type randBuf struct {
	buf    [randChunkSize]byte
	cursor int
}

func (f *Factory) fill(dst []byte) error {
	rb := f.bufs.Get().(*randBuf)
	defer f.bufs.Put(rb)

	for len(dst) > 0 {
		if rb.cursor >= len(rb.buf) {
			if _, err := io.ReadFull(f.random, rb.buf[:]); err != nil {
				return err
			}
			rb.cursor = 0
		}
		n := copy(dst, rb.buf[rb.cursor:])
		rb.cursor += n
		dst = dst[n:]
	}
	return nil
}

func (f *Factory) randomStartCounter() uint16 {
	var b [2]byte
	if err := f.fill(b[:]); err != nil {
		// crypto/rand failure is not recoverable; fall back to zero
		// rather than propagating an error into every New() call.
		return 0
	}
	// Bias to the low half (11 bits) to leave headroom for monotone
	// increments within the same millisecond.
	return binary.BigEndian.Uint16(b[:]) & 0x7FF
}

func (f *Factory) isSimulated() bool {
	_, ok := f.ts.(*timesource.SimulatedSource)
	return ok
}

// New allocates one UUIDv7.
func (f *Factory) New() (UUID, error) {
	spins := 0
	for {
		cur := f.state.Load()
		curTS := int64(cur >> 16)
		curCounter := uint16(cur)

		pt := f.ts.NowUTC().UnixMilli()

		var newTS int64
		var newCounter uint16

		switch {
		case pt > curTS:
			newTS = pt
			newCounter = f.randomStartCounter()

		case curCounter < 0xFFF:
			// pt == curTS, or pt < curTS (clock went backwards): in
			// both cases we continue from the current state rather
			// than adopting pt, to preserve monotonicity.
			newTS = curTS
			newCounter = curCounter + 1

		default:
			resolved, retry, err := f.resolveOverflow(curTS)
			if err != nil {
				return UUID{}, err
			}
			if retry {
				spins++
				f.backoff(spins)
				continue
			}
			newTS, newCounter = resolved.ts, resolved.counter
		}

		newState := uint64(newTS)<<16 | uint64(newCounter)
		if f.state.CompareAndSwap(cur, newState) {
			return f.encode(newTS, newCounter)
		}
		spins++
		f.backoff(spins)
	}
}

type overflowResolution struct {
	ts      int64
	counter uint16
}

// resolveOverflow implements the counter-overflow policy table. retry
// asks the caller to re-read state and try again (used by SpinWait,
// which waits for wall time to tick over rather than computing a new
// state itself).
func (f *Factory) resolveOverflow(curTS int64) (overflowResolution, bool, error) {
	policy := f.policy
	if policy == Auto {
		if f.isSimulated() {
			policy = IncrementTimestamp
		} else {
			policy = SpinWait
		}
	}

	switch policy {
	case SpinWait:
		for f.ts.NowUTC().UnixMilli() <= curTS {
			runtime.Gosched()
		}
		return overflowResolution{}, true, nil

	case IncrementTimestamp:
		f.logger.Debugw("uuidv7: counter overflow, incrementing timestamp", "wallTimeMS", curTS)
		return overflowResolution{ts: curTS + 1, counter: f.randomStartCounter()}, false, nil

	case Throw:
		return overflowResolution{}, false, &xerrors.CounterOverflowError{WallTimeMS: curTS}

	default:
		return overflowResolution{}, false, &xerrors.CounterOverflowError{WallTimeMS: curTS}
	}
}

// backoff is a bounded spin/yield ladder: a few busy spins, then
// cooperative yields, so no goroutine is starved indefinitely under
// finite contention.
func (f *Factory) backoff(attempt int) {
	switch {
	case attempt < 4:
		// busy spin
	default:
		runtime.Gosched()
	}
}

func (f *Factory) encode(ts int64, counter uint16) (UUID, error) {
	var u UUID
	// bytes 0-5: 48-bit wall time.
	u[0] = byte(ts >> 40)
	u[1] = byte(ts >> 32)
	u[2] = byte(ts >> 24)
	u[3] = byte(ts >> 16)
	u[4] = byte(ts >> 8)
	u[5] = byte(ts)

	// byte 6: version (0x7) high nibble, counter[11:8] low nibble.
	u[6] = 0x70 | byte(counter>>8&0x0F)
	// byte 7: counter[7:0].
	u[7] = byte(counter)

	// bytes 8-15: variant + random.
	if err := f.fill(u[8:]); err != nil {
		return UUID{}, err
	}
	u[8] = (u[8] & 0x3F) | 0x80

	return u, nil
}

// NewMany fills buf with len(buf) freshly allocated identifiers, defined
// as repeated calls to New.
func (f *Factory) NewMany(buf []UUID) error {
	for i := range buf {
		u, err := f.New()
		if err != nil {
			return err
		}
		buf[i] = u
	}
	return nil
}

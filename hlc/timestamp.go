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

// Package hlc implements a Hybrid Logical Clock: a per-node logical clock
// combining physical wall time with a counter and a node id, preserving
// causality under bounded clock drift. Grounded in cockroachdb's
// util/hlc/hlc.go Send/Receive discipline, adapted to this module's
// multi-encoding, multi-node-registry shape.
package hlc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fogfish/chronoid/internal/bitpack"
	"github.com/fogfish/chronoid/xerrors"
)

// Timestamp is an HLC value: physical milliseconds, a logical counter that
// breaks ties within the same millisecond, and the node id of the
// timestamp's producer. Total order is lexicographic over the triple.
type Timestamp struct {
	WallTimeMS int64
	Counter    uint16
	NodeID     uint16
}

// Compare returns -1, 0 or 1 as t is lexicographically less than, equal
// to, or greater than other.
func (t Timestamp) Compare(other Timestamp) int {
	switch {
	case t.WallTimeMS != other.WallTimeMS:
		if t.WallTimeMS < other.WallTimeMS {
			return -1
		}
		return 1
	case t.Counter != other.Counter:
		if t.Counter < other.Counter {
			return -1
		}
		return 1
	case t.NodeID != other.NodeID:
		if t.NodeID < other.NodeID {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Less reports whether t sorts strictly before other.
func (t Timestamp) Less(other Timestamp) bool { return t.Compare(other) < 0 }

// ToPacked64 renders the lossy 64-bit form: wall48<<16 | (counter&0xFFF)<<4
// | (node_id&0xF). Ordering as unsigned 64-bit integers matches the
// lexicographic triple order up to the masking.
func (t Timestamp) ToPacked64() uint64 {
	wall := uint64(t.WallTimeMS) & 0xFFFFFFFFFFFF
	return wall<<16 | (uint64(t.Counter)&0xFFF)<<4 | (uint64(t.NodeID) & 0xF)
}

// FromPacked64 is the inverse of ToPacked64. Counter and node id are
// truncated to 12 and 4 bits respectively; the caller accepts this loss in
// exchange for the compact form.
func FromPacked64(packed uint64) Timestamp {
	return Timestamp{
		WallTimeMS: int64(packed >> 16),
		Counter:    uint16(packed>>4) & 0xFFF,
		NodeID:     uint16(packed & 0xF),
	}
}

// Binary10Size is the size of the big-endian 10-byte encoding.
const Binary10Size = 10

// WriteBinary10 encodes t into a 10-byte big-endian form: 6 bytes wall
// time, 2 bytes counter, 2 bytes node id. Lexicographic byte order matches
// timestamp order for all encodable values. dst must have length at least
// Binary10Size.
func (t Timestamp) WriteBinary10(dst []byte) error {
	if len(dst) < Binary10Size {
		return &xerrors.BufferTooSmallError{Need: Binary10Size, Got: len(dst)}
	}
	bitpack.PutUint48(dst[0:6], uint64(t.WallTimeMS))
	dst[6] = byte(t.Counter >> 8)
	dst[7] = byte(t.Counter)
	dst[8] = byte(t.NodeID >> 8)
	dst[9] = byte(t.NodeID)
	return nil
}

// ToBinary10 is WriteBinary10 into a freshly allocated slice.
func (t Timestamp) ToBinary10() []byte {
	b := make([]byte, Binary10Size)
	_ = t.WriteBinary10(b)
	return b
}

// ReadBinary10 is the inverse of WriteBinary10.
func ReadBinary10(src []byte) (Timestamp, error) {
	if len(src) < Binary10Size {
		return Timestamp{}, &xerrors.BufferTooSmallError{Need: Binary10Size, Got: len(src)}
	}
	return Timestamp{
		WallTimeMS: int64(bitpack.Uint48(src[0:6])),
		Counter:    uint16(src[6])<<8 | uint16(src[7]),
		NodeID:     uint16(src[8])<<8 | uint16(src[9]),
	}, nil
}

// String renders the strict text form "{wall_ms:013d}.{counter:04d}@{node_id}".
func (t Timestamp) String() string {
	return fmt.Sprintf("%013d.%04d@%d", t.WallTimeMS, t.Counter, t.NodeID)
}

// Parse strictly decodes the text form produced by String: exactly one
// '@', exactly one '.' before it, all fields non-empty non-negative
// integers.
func Parse(s string) (Timestamp, error) {
	at := strings.IndexByte(s, '@')
	if at < 0 || strings.IndexByte(s[at+1:], '@') >= 0 {
		return Timestamp{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "missing or duplicate '@'"}
	}
	head, nodePart := s[:at], s[at+1:]

	dot := strings.IndexByte(head, '.')
	if dot < 0 || strings.IndexByte(head[dot+1:], '.') >= 0 {
		return Timestamp{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "missing or duplicate '.'"}
	}
	wallPart, counterPart := head[:dot], head[dot+1:]

	if wallPart == "" || counterPart == "" || nodePart == "" {
		return Timestamp{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "empty field"}
	}

	wall, err := strconv.ParseInt(wallPart, 10, 64)
	if err != nil || wall < 0 {
		return Timestamp{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "malformed wall time"}
	}
	counter, err := strconv.ParseUint(counterPart, 10, 16)
	if err != nil {
		return Timestamp{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "malformed counter"}
	}
	node, err := strconv.ParseUint(nodePart, 10, 16)
	if err != nil {
		return Timestamp{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "malformed node id"}
	}

	return Timestamp{WallTimeMS: wall, Counter: uint16(counter), NodeID: uint16(node)}, nil
}

// TryParse is the non-throwing variant: it reports success only when the
// parsed value's String() reproduces the input exactly.
func TryParse(s string) (Timestamp, bool) {
	t, err := Parse(s)
	if err != nil {
		return Timestamp{}, false
	}
	if t.String() != s {
		return Timestamp{}, false
	}
	return t, true
}

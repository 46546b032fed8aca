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

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fogfish/chronoid/xerrors"
)

// entryWidth is the per-node size of the binary encoding: 2 bytes node id
// + 8 bytes counter.
const entryWidth = 10

// BinarySize returns the encoded size of v: 4 + 10*count.
func (v VectorClock) BinarySize() int { return 4 + entryWidth*len(v.nodeIDs) }

// WriteBinary encodes v as a 4-byte big-endian count followed by count
// (node_id:u16, counter:u64) entries, both big-endian. dst must have
// length at least BinarySize().
func (v VectorClock) WriteBinary(dst []byte) error {
	need := v.BinarySize()
	if len(dst) < need {
		return &xerrors.BufferTooSmallError{Need: need, Got: len(dst)}
	}
	binary.BigEndian.PutUint32(dst[0:4], uint32(len(v.nodeIDs)))
	off := 4
	for i := range v.nodeIDs {
		binary.BigEndian.PutUint16(dst[off:off+2], v.nodeIDs[i])
		binary.BigEndian.PutUint64(dst[off+2:off+10], v.counters[i])
		off += entryWidth
	}
	return nil
}

// ToBinary is WriteBinary into a freshly allocated slice.
func (v VectorClock) ToBinary() []byte {
	b := make([]byte, v.BinarySize())
	_ = v.WriteBinary(b)
	return b
}

// ReadBinary decodes the binary form produced by WriteBinary. Unsorted or
// duplicated input is canonicalised by collapsing each node id to its max
// observed counter.
func ReadBinary(src []byte) (VectorClock, error) {
	if len(src) < 4 {
		return VectorClock{}, &xerrors.BufferTooSmallError{Need: 4, Got: len(src)}
	}
	count := int(binary.BigEndian.Uint32(src[0:4]))
	need := 4 + entryWidth*count
	if len(src) < need {
		return VectorClock{}, &xerrors.BufferTooSmallError{Need: need, Got: len(src)}
	}

	counters := make(map[uint16]uint64, count)
	off := 4
	for i := 0; i < count; i++ {
		id := binary.BigEndian.Uint16(src[off : off+2])
		c := binary.BigEndian.Uint64(src[off+2 : off+10])
		if cur, ok := counters[id]; !ok || c > cur {
			counters[id] = c
		}
		off += entryWidth
	}
	return fromMap(counters), nil
}

func fromMap(m map[uint16]uint64) VectorClock {
	ids := make([]uint16, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	counters := make([]uint64, len(ids))
	for i, id := range ids {
		counters[i] = m[id]
	}
	return VectorClock{nodeIDs: ids, counters: counters}
}

// String renders the canonical text form "n1:c1,n2:c2,..." ascending by
// node id; an empty clock renders as the empty string.
func (v VectorClock) String() string {
	if len(v.nodeIDs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, id := range v.nodeIDs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d:%d", id, v.counters[i])
	}
	return b.String()
}

// ParseText decodes the text form produced by String. Unsorted or
// duplicated input is tolerated and canonicalised by per-node max.
func ParseText(s string) (VectorClock, error) {
	if s == "" {
		return VectorClock{}, nil
	}

	counters := make(map[uint16]uint64)
	for _, pair := range strings.Split(s, ",") {
		colon := strings.IndexByte(pair, ':')
		if colon < 0 {
			return VectorClock{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "missing ':' in entry"}
		}
		idPart, counterPart := pair[:colon], pair[colon+1:]
		if idPart == "" || counterPart == "" {
			return VectorClock{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "empty entry field"}
		}
		id, err := strconv.ParseUint(idPart, 10, 16)
		if err != nil {
			return VectorClock{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "malformed node id"}
		}
		c, err := strconv.ParseUint(counterPart, 10, 64)
		if err != nil {
			return VectorClock{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "malformed counter"}
		}
		if cur, ok := counters[uint16(id)]; !ok || c > cur {
			counters[uint16(id)] = c
		}
	}
	return fromMap(counters), nil
}

// TryParseText is the non-throwing variant of ParseText.
func TryParseText(s string) (VectorClock, bool) {
	v, err := ParseText(s)
	if err != nil {
		return VectorClock{}, false
	}
	return v, true
}

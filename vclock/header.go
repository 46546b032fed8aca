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
	"encoding/hex"
	"strings"

	"github.com/fogfish/chronoid/xerrors"
)

// Header is the X-VectorClock wire header: a clock plus optional 16-byte
// correlation and causation ids, trailing-optional.
type Header struct {
	Clock          VectorClock
	Correlation    [16]byte
	HasCorrelation bool
	Causation      [16]byte
	HasCausation   bool
}

// String renders "{clock_text}[;{correlation-32hex}[;{causation-32hex}]]".
// An empty clock with no ids renders as the empty string.
func (h Header) String() string {
	var b strings.Builder
	b.WriteString(h.Clock.String())
	if h.HasCorrelation {
		b.WriteByte(';')
		b.WriteString(hex.EncodeToString(h.Correlation[:]))
		if h.HasCausation {
			b.WriteByte(';')
			b.WriteString(hex.EncodeToString(h.Causation[:]))
		}
	}
	return b.String()
}

// ParseHeader strictly decodes the text header, rejecting structurally
// invalid input without panicking.
func ParseHeader(s string) (Header, error) {
	parts := strings.SplitN(s, ";", 3)

	clock, err := ParseText(parts[0])
	if err != nil {
		return Header{}, err
	}
	h := Header{Clock: clock}

	if len(parts) >= 2 {
		b, err := decodeHex16(parts[1])
		if err != nil {
			return Header{}, err
		}
		h.Correlation = b
		h.HasCorrelation = true
	}
	if len(parts) == 3 {
		b, err := decodeHex16(parts[2])
		if err != nil {
			return Header{}, err
		}
		h.Causation = b
		h.HasCausation = true
	}
	return h, nil
}

// TryParseHeader is the non-throwing variant of ParseHeader.
func TryParseHeader(s string) (Header, bool) {
	h, err := ParseHeader(s)
	if err != nil {
		return Header{}, false
	}
	return h, true
}

func decodeHex16(s string) ([16]byte, error) {
	var out [16]byte
	if len(s) != 32 {
		return out, &xerrors.InvalidArgumentError{Arg: "s", Reason: "id segment must be 32 hex characters"}
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, &xerrors.InvalidArgumentError{Arg: "s", Reason: "malformed hex id segment"}
	}
	copy(out[:], b)
	return out, nil
}

// WriteBinaryHeader encodes h as the clock's binary form concatenated
// with two optional 16-byte ids, each preceded by a 1-byte presence flag
// (0 or 1) so the binary form stays self-describing without relying on
// total message length.
func (h Header) WriteBinaryHeader() []byte {
	clockBin := h.Clock.ToBinary()
	out := make([]byte, 0, len(clockBin)+1+16+1+16)
	out = append(out, clockBin...)

	if h.HasCorrelation {
		out = append(out, 1)
		out = append(out, h.Correlation[:]...)
		if h.HasCausation {
			out = append(out, 1)
			out = append(out, h.Causation[:]...)
		} else {
			out = append(out, 0)
		}
	} else {
		out = append(out, 0)
	}
	return out
}

// ReadBinaryHeader is the inverse of WriteBinaryHeader.
func ReadBinaryHeader(src []byte) (Header, error) {
	if len(src) < 4 {
		return Header{}, &xerrors.BufferTooSmallError{Need: 4, Got: len(src)}
	}
	count := int(binary.BigEndian.Uint32(src[0:4]))
	clockSize := 4 + entryWidth*count

	clock, err := ReadBinary(src)
	if err != nil {
		return Header{}, err
	}

	h := Header{Clock: clock}
	off := clockSize
	if off >= len(src) {
		return Header{}, &xerrors.BufferTooSmallError{Need: off + 1, Got: len(src)}
	}
	if src[off] == 1 {
		if len(src) < off+17 {
			return Header{}, &xerrors.BufferTooSmallError{Need: off + 17, Got: len(src)}
		}
		copy(h.Correlation[:], src[off+1:off+17])
		h.HasCorrelation = true
		off += 17
	} else {
		off++
	}

	if off < len(src) && src[off] == 1 {
		if len(src) < off+17 {
			return Header{}, &xerrors.BufferTooSmallError{Need: off + 17, Got: len(src)}
		}
		copy(h.Causation[:], src[off+1:off+17])
		h.HasCausation = true
	}

	return h, nil
}

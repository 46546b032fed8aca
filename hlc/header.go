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
	"encoding/hex"
	"strings"

	"github.com/fogfish/chronoid/xerrors"
)

// Header is the X-HLC-Timestamp wire header: a timestamp plus optional
// 16-byte correlation and causation ids, trailing-optional.
type Header struct {
	Timestamp      Timestamp
	Correlation    [16]byte
	HasCorrelation bool
	Causation      [16]byte
	HasCausation   bool
}

// String renders "{ts}[;{correlation-32hex}[;{causation-32hex}]]".
func (h Header) String() string {
	var b strings.Builder
	b.WriteString(h.Timestamp.String())
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

// ParseHeader strictly decodes a Header, rejecting structurally invalid
// input without panicking.
func ParseHeader(s string) (Header, error) {
	parts := strings.Split(s, ";")
	if len(parts) > 3 {
		return Header{}, &xerrors.InvalidArgumentError{Arg: "s", Reason: "too many segments"}
	}

	ts, err := Parse(parts[0])
	if err != nil {
		return Header{}, err
	}
	h := Header{Timestamp: ts}

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

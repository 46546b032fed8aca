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

// Package uuidv7 implements a lock-free RFC 9562 v7 identifier factory:
// 128-bit, big-endian, time-ordered identifiers that remain strictly
// monotonic per factory instance even when wall time stalls or moves
// backward.
package uuidv7

import (
	"encoding/hex"
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"

	"github.com/fogfish/chronoid/internal/bitpack"
)

// UUID is a 128-bit RFC 9562 identifier.
type UUID [16]byte

// String returns the canonical 8-4-4-4-12 hyphenated hex representation.
func (u UUID) String() string {
	var buf [36]byte
	hex.Encode(buf[0:8], u[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], u[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], u[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], u[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], u[10:16])
	return string(buf[:])
}

// Parse decodes the canonical hyphenated hex representation.
func Parse(s string) (UUID, error) {
	var u UUID
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return u, fmt.Errorf("uuidv7: malformed uuid %q", s)
	}
	groups := [5][2]int{{0, 8}, {9, 13}, {14, 18}, {19, 23}, {24, 36}}
	dst := [5][2]int{{0, 4}, {4, 6}, {6, 8}, {8, 10}, {10, 16}}
	for i, g := range groups {
		if _, err := hex.Decode(u[dst[i][0]:dst[i][1]], []byte(s[g[0]:g[1]])); err != nil {
			return UUID{}, fmt.Errorf("uuidv7: malformed uuid %q: %w", s, err)
		}
	}
	return u, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Version returns the RFC version nibble (7 for identifiers produced by
// this package).
func (u UUID) Version() int { return int(u[6] >> 4) }

// Variant returns the RFC 4122 variant tag of byte 8.
func (u UUID) Variant() string {
	switch u[8] >> 6 {
	case 0b10:
		return "RFC4122"
	case 0b00, 0b01:
		return "NCS"
	default:
		return "future"
	}
}

// Timestamp extracts the 48-bit wall-time-in-milliseconds prefix.
func (u UUID) Timestamp() int64 {
	return int64(bitpack.Uint48(u[0:6]))
}

// Time is Timestamp as a time.Time.
func (u UUID) Time() time.Time {
	ms := u.Timestamp()
	return time.UnixMilli(ms).UTC()
}

// ToGoogleUUID converts to the github.com/google/uuid representation so
// callers can hand a generated identifier to any library built against
// that package (gRPC metadata, database UUID columns, logging). Both
// types share the same big-endian 128-bit RFC layout, so this is a byte
// cast plus a version/variant sanity check.
func ToGoogleUUID(u UUID) (googleuuid.UUID, error) {
	if u.Version() != 7 {
		return googleuuid.UUID{}, fmt.Errorf("uuidv7: not a v7 identifier (version %d)", u.Version())
	}
	if u.Variant() != "RFC4122" {
		return googleuuid.UUID{}, fmt.Errorf("uuidv7: not an RFC 4122 variant (%s)", u.Variant())
	}
	return googleuuid.UUID(u), nil
}

// FromGoogleUUID converts a github.com/google/uuid.UUID into this
// package's UUID, without validating version/variant bits (the caller
// may be round-tripping a foreign identifier).
func FromGoogleUUID(g googleuuid.UUID) UUID {
	return UUID(g)
}

// sortableAlphabet is a lexicographically-sortable hex alphabet (ASCII
// order preserved), used here at nibble (4-bit) width since 128 does not
// divide evenly by 6. The result is a compact, sort-preserving string
// form alongside the canonical hyphenated one, the same role ULID's
// base32 encoding plays for its own 128-bit identifiers.
var sortableAlphabet = []rune{
	'0', '1', '2', '3', '4', '5', '6', '7',
	'8', '9', 'A', 'B', 'C', 'D', 'E', 'F',
}

var sortableIndex = func() map[rune]byte {
	m := make(map[rune]byte, len(sortableAlphabet))
	for i, r := range sortableAlphabet {
		m[r] = byte(i)
	}
	return m
}()

// EncodeSortable renders u as a 32-character, lexicographically
// sortable string (one character per nibble, most significant first).
func EncodeSortable(u UUID) string {
	hi := uint64(u[0])<<56 | uint64(u[1])<<48 | uint64(u[2])<<40 | uint64(u[3])<<32 |
		uint64(u[4])<<24 | uint64(u[5])<<16 | uint64(u[6])<<8 | uint64(u[7])
	lo := uint64(u[8])<<56 | uint64(u[9])<<48 | uint64(u[10])<<40 | uint64(u[11])<<32 |
		uint64(u[12])<<24 | uint64(u[13])<<16 | uint64(u[14])<<8 | uint64(u[15])

	nibbles := bitpack.Split(hi, lo, 128, 4)
	out := make([]rune, len(nibbles))
	for i, n := range nibbles {
		out[i] = sortableAlphabet[n]
	}
	return string(out)
}

// DecodeSortable is the inverse of EncodeSortable.
func DecodeSortable(s string) (UUID, error) {
	if len(s) != 32 {
		return UUID{}, fmt.Errorf("uuidv7: malformed sortable encoding (len %d)", len(s))
	}
	nibbles := make([]byte, 32)
	for i, r := range s {
		b, ok := sortableIndex[r]
		if !ok {
			return UUID{}, fmt.Errorf("uuidv7: invalid sortable character %q", r)
		}
		nibbles[i] = b
	}
	hi, lo := bitpack.Fold(128, 4, nibbles)

	var u UUID
	for i := 0; i < 8; i++ {
		u[i] = byte(hi >> (56 - 8*i))
	}
	for i := 0; i < 8; i++ {
		u[8+i] = byte(lo >> (56 - 8*i))
	}
	return u, nil
}

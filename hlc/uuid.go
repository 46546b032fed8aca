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
	"github.com/fogfish/chronoid/internal/bitpack"
	"github.com/fogfish/chronoid/uuidv7"
)

// ToUUID embeds t and six random tail bytes into an RFC 9562 v7
// identifier: bytes 0-5 wall time, byte 6 version + counter[11:8], byte 7
// counter[7:0], byte 8 variant + node_id[13:8], byte 9 node_id[7:0], bytes
// 10-15 the supplied random tail. random must have length >= 6; only the
// first 6 bytes are used.
func ToUUID(t Timestamp, random []byte) uuidv7.UUID {
	var u uuidv7.UUID
	bitpack.PutUint48(u[0:6], uint64(t.WallTimeMS))
	u[6] = 0x70 | byte(t.Counter>>8&0x0F)
	u[7] = byte(t.Counter)
	u[8] = 0x80 | byte(t.NodeID>>8&0x3F)
	u[9] = byte(t.NodeID)
	copy(u[10:16], random[:6])
	return u
}

// FromUUID is the inverse projection of ToUUID: it recovers the embedded
// HLC triple, discarding the random tail. It does not require the version
// nibble to be 7 or the variant bits to be 10; callers that care should
// check u.Version()/u.Variant() themselves.
func FromUUID(u uuidv7.UUID) Timestamp {
	return Timestamp{
		WallTimeMS: int64(bitpack.Uint48(u[0:6])),
		Counter:    uint16(u[6]&0x0F)<<8 | uint16(u[7]),
		NodeID:     uint16(u[8]&0x3F)<<8 | uint16(u[9]),
	}
}

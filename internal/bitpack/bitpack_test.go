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

package bitpack_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fogfish/chronoid/internal/bitpack"
)

func TestSplitFoldRoundTrip(t *testing.T) {
	hi, lo := uint64(0x0102030405060708), uint64(0x090A0B0C0D0E0F10)

	nibbles := bitpack.Split(hi, lo, 128, 4)
	require.Len(t, nibbles, 32)

	gotHi, gotLo := bitpack.Fold(128, 4, nibbles)
	require.Equal(t, hi, gotHi)
	require.Equal(t, lo, gotLo)
}

func TestSplitFoldByteWidth(t *testing.T) {
	hi, lo := uint64(0xAABBCCDDEEFF0011), uint64(0x2233445566778899)

	bytes := bitpack.Split(hi, lo, 128, 8)
	require.Len(t, bytes, 16)
	require.Equal(t, byte(0xAA), bytes[0])
	require.Equal(t, byte(0x99), bytes[15])

	gotHi, gotLo := bitpack.Fold(128, 8, bytes)
	require.Equal(t, hi, gotHi)
	require.Equal(t, lo, gotLo)
}

func TestUint48RoundTrip(t *testing.T) {
	const v = uint64(0x0102030405060708) & 0xFFFFFFFFFFFF // 48 meaningful bits

	var b [6]byte
	bitpack.PutUint48(b[:], v)
	require.Equal(t, v, bitpack.Uint48(b[:]))
}

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

package hlc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fogfish/chronoid/hlc"
)

func TestHeaderRoundTripNoIDs(t *testing.T) {
	ts := hlc.Timestamp{WallTimeMS: 1_700_000_000_000, Counter: 12, NodeID: 3}
	h := hlc.Header{Timestamp: ts}

	s := h.String()
	require.Equal(t, "1700000000000.0012@3", s)

	back, err := hlc.ParseHeader(s)
	require.NoError(t, err)
	require.Equal(t, ts, back.Timestamp)
	require.False(t, back.HasCorrelation)
}

func TestHeaderRoundTripWithIDs(t *testing.T) {
	ts := hlc.Timestamp{WallTimeMS: 1_700_000_000_000, Counter: 12, NodeID: 3}
	var h hlc.Header
	h.Timestamp = ts
	h.HasCorrelation = true
	copy(h.Correlation[:], []byte("aaaaaaaaaaaaaaaa"))
	h.HasCausation = true
	copy(h.Causation[:], []byte("bbbbbbbbbbbbbbbb"))

	s := h.String()
	back, err := hlc.ParseHeader(s)
	require.NoError(t, err)
	require.Equal(t, ts, back.Timestamp)
	require.Equal(t, h.Correlation, back.Correlation)
	require.Equal(t, h.Causation, back.Causation)
}

func TestHeaderRejectsTooManySegments(t *testing.T) {
	_, ok := hlc.TryParseHeader("1700000000000.0012@3;aa;bb;cc")
	require.False(t, ok)
}

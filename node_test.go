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

package chronoid_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fogfish/chronoid"
)

func TestNodeIDStringParseRoundTrip(t *testing.T) {
	n := chronoid.NodeID(4242)
	back, err := chronoid.ParseNodeID(n.String())
	require.NoError(t, err)
	require.Equal(t, n, back)
}

func TestResolveNodeIDDefaultsToRandom(t *testing.T) {
	a := chronoid.ResolveNodeID()
	b := chronoid.ResolveNodeID()
	require.NotEqual(t, a, b, "two independent random resolutions should not collide in practice")
}

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

package nodeid_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fogfish/chronoid/internal/nodeid"
)

func TestWithID(t *testing.T) {
	require.EqualValues(t, 0xBEEF, nodeid.Resolve(nodeid.WithID(0xBEEF)))
}

func TestWithEnvIsDeterministic(t *testing.T) {
	os.Setenv("CONFIG_CHRONOID_NODE_ID", "node-a")
	defer os.Unsetenv("CONFIG_CHRONOID_NODE_ID")

	a := nodeid.Resolve(nodeid.WithEnv())
	b := nodeid.Resolve(nodeid.WithEnv())
	require.Equal(t, a, b)
}

func TestWithEnvDiffersByValue(t *testing.T) {
	os.Setenv("CONFIG_CHRONOID_NODE_ID", "node-a")
	a := nodeid.Resolve(nodeid.WithEnv())
	os.Setenv("CONFIG_CHRONOID_NODE_ID", "node-b")
	b := nodeid.Resolve(nodeid.WithEnv())
	os.Unsetenv("CONFIG_CHRONOID_NODE_ID")

	require.NotEqual(t, a, b)
}

func TestResolveDefaultsToRandom(t *testing.T) {
	a := nodeid.Resolve()
	b := nodeid.Resolve()
	require.NotEqual(t, a, b)
}

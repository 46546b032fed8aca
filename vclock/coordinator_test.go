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

package vclock_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fogfish/chronoid/vclock"
)

func TestCoordinatorBeforeSendIncrementsLocal(t *testing.T) {
	c := vclock.NewCoordinator(1)
	snap, err := c.BeforeSend()
	require.NoError(t, err)
	require.EqualValues(t, 1, snap.Get(1))
	require.EqualValues(t, 1, c.Stats().SendCount.Load())
}

func TestCoordinatorBeforeReceiveMergesAndIncrements(t *testing.T) {
	c := vclock.NewCoordinator(1)

	var remote vclock.VectorClock
	remote, err := remote.Increment(2)
	require.NoError(t, err)

	merged, err := c.BeforeReceive(remote)
	require.NoError(t, err)
	require.EqualValues(t, 1, merged.Get(1))
	require.EqualValues(t, 1, merged.Get(2))
	require.EqualValues(t, 1, c.Stats().ClockMerges.Load())
	require.EqualValues(t, 1, c.Stats().ReceiveCount.Load())
}

func TestCoordinatorNewLocalEvent(t *testing.T) {
	c := vclock.NewCoordinator(1)
	_, err := c.NewLocalEvent()
	require.NoError(t, err)
	_, err = c.NewLocalEvent()
	require.NoError(t, err)

	require.EqualValues(t, 2, c.Snapshot().Get(1))
	require.EqualValues(t, 2, c.Stats().LocalEventCount.Load())
}

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

package timesource_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fogfish/chronoid/timesource"
)

func TestCreateTimeoutCancelsAfterDuration(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)

	c := timesource.CreateTimeout(src, 5*time.Second)
	require.False(t, c.Cancelled())

	require.NoError(t, src.Advance(5*time.Second))
	require.True(t, c.Cancelled())
}

func TestCreateTimeoutNonPositiveDurationCancelsImmediately(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)

	c := timesource.CreateTimeout(src, 0)
	require.True(t, c.Cancelled())

	snap := src.Stats().Snapshot()
	require.EqualValues(t, 1, snap.TimersCreated)
	require.EqualValues(t, 1, snap.TimersFired)
	require.EqualValues(t, 1, snap.TimersDisposed)
}

func TestCreateTimeoutHandleReleaseDoesNotDoubleCountDispose(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)

	h := timesource.CreateTimeoutHandle(src, 5*time.Second)
	require.NoError(t, src.Advance(5*time.Second))
	require.True(t, h.Cancelled())

	before := src.Stats().Snapshot().TimersDisposed
	h.Release()
	after := src.Stats().Snapshot().TimersDisposed

	require.Equal(t, before, after, "releasing a handle whose timer already disposed itself on firing must not double-count")
}

func TestCreateTimeoutHandleReleaseBeforeFiring(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)

	h := timesource.CreateTimeoutHandle(src, 5*time.Second)
	h.Release()

	require.True(t, h.Cancelled())
	require.EqualValues(t, 1, src.Stats().Snapshot().TimersDisposed)
}

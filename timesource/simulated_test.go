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

var epoch = time.UnixMilli(1_700_000_000_000)

func TestSimulatedOneShotFires(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)

	fired := false
	_, err := src.CreateTimer(func(any) { fired = true }, nil, 5*time.Second, timesource.Forever)
	require.NoError(t, err)

	require.NoError(t, src.Advance(4*time.Second))
	require.False(t, fired)

	require.NoError(t, src.Advance(1*time.Second))
	require.True(t, fired)
}

func TestSimulatedPeriodicCoalesces(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)

	count := 0
	_, err := src.CreateTimer(func(any) { count++ }, nil, time.Second, time.Second)
	require.NoError(t, err)

	require.NoError(t, src.Advance(10*time.Second))
	require.Equal(t, 1, count, "at most one tick fires per Advance call regardless of elapsed periods")
}

func TestSimulatedCreationOrderTieBreak(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)

	var order []int
	for i := 0; i < 5; i++ {
		id := i
		_, err := src.CreateTimer(func(any) { order = append(order, id) }, nil, time.Second, timesource.Forever)
		require.NoError(t, err)
	}

	require.NoError(t, src.Advance(time.Second))
	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSimulatedChangeTolersatesStaleEntry(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)

	fireCount := 0
	timer, err := src.CreateTimer(func(any) { fireCount++ }, nil, time.Second, timesource.Forever)
	require.NoError(t, err)

	ok, err := timer.Change(10*time.Second, timesource.Forever)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, src.Advance(time.Second))
	require.Equal(t, 0, fireCount, "the stale pre-Change entry at 1s must not fire")

	require.NoError(t, src.Advance(9*time.Second))
	require.Equal(t, 1, fireCount)
}

func TestSimulatedCallbackReentrance(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)

	var secondFired bool
	_, err := src.CreateTimer(func(any) {
		_, innerErr := src.CreateTimer(func(any) { secondFired = true }, nil, 0, timesource.Forever)
		require.NoError(t, innerErr)
	}, nil, time.Second, timesource.Forever)
	require.NoError(t, err)

	require.NoError(t, src.Advance(time.Second))
	require.False(t, secondFired, "a timer created from within a firing callback is enqueued after this Advance's drain loop has already run")

	require.NoError(t, src.Advance(0))
	require.True(t, secondFired, "the re-entrantly created timer fires on the next Advance, since its due has already been reached")
}

func TestSimulatedDeterminism(t *testing.T) {
	run := func() []int {
		src := timesource.NewSimulatedSource(epoch)
		var fired []int
		for i := 0; i < 5; i++ {
			id := i
			_, err := src.CreateTimer(func(any) { fired = append(fired, id) }, nil, time.Duration(i+1)*time.Second, timesource.Forever)
			require.NoError(t, err)
		}
		for i := 0; i < 5; i++ {
			require.NoError(t, src.Advance(time.Second))
		}
		return fired
	}

	require.Equal(t, run(), run())
}

func TestSimulatedAdvanceRejectsNegative(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)
	err := src.Advance(-time.Second)
	require.Error(t, err)
}

func TestSimulatedAdvanceToForward(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)
	err := src.AdvanceTo(epoch.Add(3 * time.Second))
	require.NoError(t, err)
	require.Equal(t, epoch.Add(3*time.Second), src.NowUTC())
	require.Equal(t, int64(3*time.Second), src.MonotonicTicks())
}

func TestSimulatedAdvanceToBackward(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)
	require.NoError(t, src.Advance(5*time.Second))

	err := src.AdvanceTo(epoch.Add(2 * time.Second))
	require.NoError(t, err)
	require.Equal(t, epoch.Add(2*time.Second), src.NowUTC())
	require.Equal(t, int64(5*time.Second), src.MonotonicTicks(), "moving wall time backward does not touch scheduler ticks")
}

func TestSimulatedStatsAccuracy(t *testing.T) {
	src := timesource.NewSimulatedSource(epoch)

	timer, err := src.CreateTimer(func(any) {}, nil, time.Second, time.Second)
	require.NoError(t, err)
	require.NoError(t, src.Advance(time.Second))
	require.NoError(t, src.Advance(time.Second))
	_, err = timer.Change(5*time.Second, timesource.Forever)
	require.NoError(t, err)
	timer.Dispose()

	snap := src.Stats().Snapshot()
	require.EqualValues(t, 1, snap.TimersCreated)
	require.EqualValues(t, 2, snap.TimersFired)
	require.EqualValues(t, 2, snap.PeriodicReschedules)
	require.EqualValues(t, 1, snap.TimersChanged)
	require.EqualValues(t, 1, snap.TimersDisposed)
	require.EqualValues(t, 2, snap.AdvanceCalls)
}

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
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fogfish/chronoid/hlc"
	"github.com/fogfish/chronoid/timesource"
)

var epoch = time.UnixMilli(1_700_000_000_000)

func TestSendMonotonicity(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	f := hlc.NewFactory(ts, 1)

	prev, err := f.Send()
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		cur, err := f.Send()
		require.NoError(t, err)
		require.True(t, prev.Less(cur))
		prev = cur
	}
}

func TestCounterResetOnPhysicalJump(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	f := hlc.NewFactory(ts, 1)

	_, err := f.Send()
	require.NoError(t, err)

	require.NoError(t, ts.Advance(10*time.Second))
	next, err := f.Send()
	require.NoError(t, err)

	require.Equal(t, epoch.Add(10*time.Second).UnixMilli(), next.WallTimeMS)
	require.EqualValues(t, 0, next.Counter)
}

func TestWitnessAdvancesStrictly(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	f := hlc.NewFactory(ts, 1)

	before := f.Now()
	after, err := f.Witness(before.WallTimeMS + 1000)
	require.NoError(t, err)
	require.True(t, before.Less(after))
}

func TestReceiveAdoptsRemoteWallTime(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	f := hlc.NewFactory(ts, 1)

	remote := hlc.Timestamp{WallTimeMS: epoch.UnixMilli() + 5000, Counter: 7, NodeID: 9}
	after, err := f.Receive(remote)
	require.NoError(t, err)

	require.Equal(t, remote.WallTimeMS, after.WallTimeMS)
	require.Equal(t, remote.Counter+1, after.Counter)
	require.EqualValues(t, 1, after.NodeID, "node_id in the result is always the local id")
}

func TestReceiveNodeIDAlwaysLocal(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	f := hlc.NewFactory(ts, 42)

	after, err := f.Receive(hlc.Timestamp{WallTimeMS: epoch.UnixMilli(), NodeID: 99})
	require.NoError(t, err)
	require.EqualValues(t, 42, after.NodeID)
}

func TestDriftExceededStrict(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	f := hlc.NewFactory(ts, 1, hlc.WithMaxDrift(100))

	_, err := f.Witness(epoch.UnixMilli() + 10_000)
	require.Error(t, err)
}

func TestDriftTrackedWithoutStrictEnforcement(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	f := hlc.NewFactory(ts, 1)

	_, err := f.Witness(epoch.UnixMilli() + 10_000)
	require.NoError(t, err)
	require.EqualValues(t, 10_000, f.Stats().MaxObservedDriftMS())
}

func TestCheckpointRestoreOnlyMovesForward(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	f := hlc.NewFactory(ts, 1)

	_, err := f.Send()
	require.NoError(t, err)
	blob := f.Checkpoint()

	require.NoError(t, ts.Advance(time.Second))
	advanced, err := f.Send()
	require.NoError(t, err)

	require.NoError(t, f.Restore(blob))
	require.Equal(t, advanced, f.Now(), "restoring an older checkpoint must not move the clock backward")
}

func TestCheckpointRestoreAdoptsNewer(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	f := hlc.NewFactory(ts, 1)

	_, err := f.Send()
	require.NoError(t, err)

	other := hlc.NewFactory(ts, 1)
	require.NoError(t, ts.Advance(time.Minute))
	newer, err := other.Send()
	require.NoError(t, err)

	require.NoError(t, f.Restore(other.Checkpoint()))
	require.Equal(t, newer, f.Now())
}

func TestSendUUIDEmbedding(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	f := hlc.NewFactory(ts, 3)

	want, id, err := f.SendUUID()
	require.NoError(t, err)

	back := hlc.FromUUID(id)
	require.Equal(t, want.WallTimeMS, back.WallTimeMS)
	require.Equal(t, want.Counter, back.Counter)
	require.Equal(t, want.NodeID, back.NodeID)
}

func TestRegistrySimulateMessage(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	reg := hlc.NewRegistry(ts)

	reg.Register(1)
	reg.Register(2)

	sent, received, err := reg.SimulateMessage(1, 2)
	require.NoError(t, err)
	require.True(t, sent.Compare(received) < 0)
}

func TestRegistryRegisterIsIdempotent(t *testing.T) {
	ts := timesource.NewSimulatedSource(epoch)
	reg := hlc.NewRegistry(ts)

	a := reg.Register(5)
	b := reg.Register(5)
	require.Same(t, a, b)
}

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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fogfish/chronoid/timesource"
)

func TestSystemSourceNowAdvances(t *testing.T) {
	src := timesource.NewSystemSource()
	a := src.NowUTC()
	time.Sleep(10 * time.Millisecond)
	b := src.NowUTC()
	require.True(t, b.After(a))
}

func TestSystemSourceMonotonicTicksNeverRegress(t *testing.T) {
	src := timesource.NewSystemSource()
	a := src.MonotonicTicks()
	time.Sleep(5 * time.Millisecond)
	b := src.MonotonicTicks()
	require.GreaterOrEqual(t, b, a)
}

func TestSystemSourceTimerFires(t *testing.T) {
	src := timesource.NewSystemSource()

	done := make(chan struct{})
	_, err := src.CreateTimer(func(any) { close(done) }, nil, 10*time.Millisecond, timesource.Forever)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestSystemSourceSleepRespectsCancellation(t *testing.T) {
	src := timesource.NewSystemSource()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := src.Sleep(ctx, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSystemSourceRejectsNegativeDuration(t *testing.T) {
	src := timesource.NewSystemSource()
	_, err := src.CreateTimer(func(any) {}, nil, -time.Second, timesource.Forever)
	require.Error(t, err)
}

// Copyright 2026 Audiokit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package interpolator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/audiokit/mediaclock/pkg/clock"
)

// snapshot captures the full epoch for bit-for-bit comparisons
type snapshot struct {
	state   State
	tf      float64
	t0      int64
	pos0    int64
	read    int64
	queued  int64
	latency int64
	last    int64
	nowLast int64
}

func (i *Interpolator) snap() snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()

	return snapshot{
		state:   i.state,
		tf:      i.tf,
		t0:      i.t0,
		pos0:    i.pos0,
		read:    i.read,
		queued:  i.queued,
		latency: i.latency,
		last:    i.last,
		nowLast: i.nowLast,
	}
}

func newTestInterpolator(latency int64) (*Interpolator, *clock.Mock) {
	m := clock.NewMock()
	i := New(WithClock(m), WithLatency(latency))
	return i, m
}

func TestDefaults(t *testing.T) {
	i, _ := newTestInterpolator(0)

	s := i.snap()
	require.Equal(t, StateStopped, s.state)
	require.Equal(t, DefaultLatency, s.latency)
	require.Equal(t, int64(160000), s.latency)
	require.Equal(t, int64(0), i.GetStreamUsecs())
	require.Equal(t, int64(0), i.UsecsQueued())
	require.Equal(t, int64(0), i.ReadPointer())
}

func TestSetLatency(t *testing.T) {
	i, _ := newTestInterpolator(100000)
	require.Equal(t, int64(100000), i.snap().latency)

	i.SetLatency(80000)
	require.Equal(t, int64(80000), i.snap().latency)

	i.SetLatency(0)
	require.Equal(t, DefaultLatency, i.snap().latency)

	i.SetLatency(-5)
	require.Equal(t, DefaultLatency, i.snap().latency)
}

func TestColdStart(t *testing.T) {
	i, _ := newTestInterpolator(100000)

	i.PostBuffer(20000)

	s := i.snap()
	require.Equal(t, StateRolling, s.state)
	require.Equal(t, int64(20000), s.read)
	require.Equal(t, int64(-30000), s.pos0)
	require.Equal(t, 1.0, s.tf)
	require.Equal(t, int64(0), s.queued)

	t.Run("small latency still offsets by 40ms", func(t *testing.T) {
		i, _ := newTestInterpolator(20000)
		i.PostBuffer(20000)
		s := i.snap()
		require.Equal(t, int64(20000-40000), s.pos0)
	})
}

func TestLockIn(t *testing.T) {
	i, m := newTestInterpolator(100000)

	i.PostBuffer(20000)
	m.AdvanceUsecs(20000)
	i.PostBuffer(20000)

	// pos1 = -30000 + 1.0*20000, e = pos1 - (read - latency) = 70000,
	// so the raw factor 1 - 0.7 lands on the lower clamp
	s := i.snap()
	require.Equal(t, StateRolling, s.state)
	require.Equal(t, int64(20000), s.t0)
	require.Equal(t, int64(-10000), s.pos0)
	require.Equal(t, int64(20000), s.read)
	require.Equal(t, int64(20000), s.queued)
	require.Equal(t, int64(40000), i.ReadPointer())
	require.Equal(t, 0.5, s.tf)
}

func TestAggregation(t *testing.T) {
	i, m := newTestInterpolator(100000)

	i.PostBuffer(20000)
	m.AdvanceUsecs(20000)
	i.PostBuffer(40000)

	before := i.snap()
	require.Equal(t, int64(40000), before.queued)

	// 5000 < 40000/4: posts coalesce without touching the epoch
	m.AdvanceUsecs(5000)
	i.PostBuffer(40000)

	after := i.snap()
	require.Equal(t, int64(80000), after.queued)
	require.Equal(t, before.t0, after.t0)
	require.Equal(t, before.pos0, after.pos0)
	require.Equal(t, before.read, after.read)
	require.Equal(t, before.tf, after.tf)
}

func TestUnderrunViaRead(t *testing.T) {
	i, m := newTestInterpolator(100000)

	i.PostBuffer(20000)
	m.AdvanceUsecs(10000000)

	rp := i.ReadPointer()
	pos := i.GetStreamUsecs()
	require.Equal(t, rp, pos)

	s := i.snap()
	require.Equal(t, StateStopped, s.state)
	require.Equal(t, 0.0, s.tf)
	require.Equal(t, int64(0), s.queued)
	require.Equal(t, s.read, s.pos0)

	// time stays frozen afterwards
	m.AdvanceUsecs(1000000)
	require.Equal(t, pos, i.GetStreamUsecs())
}

func TestUnderrunViaPost(t *testing.T) {
	i, m := newTestInterpolator(100000)

	i.PostBuffer(20000)

	// a post long after the fifo ran dry projects past the write pointer
	m.AdvanceUsecs(10000000)
	i.PostBuffer(20000)

	s := i.snap()
	require.Equal(t, StateStopped, s.state)
	require.Equal(t, 0.0, s.tf)
	require.Equal(t, s.read, s.pos0)
	require.Equal(t, int64(0), s.queued)
}

func TestPauseResume(t *testing.T) {
	i, m := newTestInterpolator(100000)

	i.PostBuffer(20000)
	m.AdvanceUsecs(20000)
	i.PostBuffer(20000)
	m.AdvanceUsecs(5000)
	i.GetStreamUsecs()

	i.Pause(false)
	require.Equal(t, StatePaused, i.State())

	s := i.snap()
	require.Equal(t, int64(0), s.queued)
	require.Equal(t, s.last, s.pos0)

	// paused time is frozen no matter how much wall time passes
	frozen := i.GetStreamUsecs()
	m.AdvanceUsecs(500000)
	require.Equal(t, frozen, i.GetStreamUsecs())
	m.AdvanceUsecs(500000)
	require.Equal(t, frozen, i.GetStreamUsecs())

	i.Resume()
	require.Equal(t, StatePaused, i.State())
	require.Equal(t, frozen, i.GetStreamUsecs())

	// the next post re-locks at unity instead of reacting to the error
	m.AdvanceUsecs(20000)
	i.PostBuffer(20000)
	s = i.snap()
	require.Equal(t, StateRolling, s.state)
	require.Equal(t, 1.0, s.tf)
}

func TestPauseWhileStoppedIsNoop(t *testing.T) {
	i, _ := newTestInterpolator(100000)

	before := i.snap()
	i.Pause(false)
	require.Equal(t, before, i.snap())
}

func TestOverrunClamp(t *testing.T) {
	i, m := newTestInterpolator(100000)

	i.PostBuffer(20000)

	// a burst way past 2x latency aggregates first, then slams the loop
	m.AdvanceUsecs(20000)
	i.PostBuffer(600000)
	m.AdvanceUsecs(140000)
	i.PostBuffer(20000)

	s := i.snap()
	require.Equal(t, StateRolling, s.state)
	require.Equal(t, 2.0, s.tf)
	require.Equal(t, s.read-s.latency, s.pos0)
	require.Equal(t, int64(160000), s.t0)
	require.Equal(t, int64(20000), s.queued)
}

func TestMonotonicityAndEnvelope(t *testing.T) {
	i, m := newTestInterpolator(100000)

	i.PostBuffer(20000)

	prev := i.GetStreamUsecs()
	for cycle := 0; cycle < 200; cycle++ {
		m.AdvanceUsecs(7000)
		pos := i.GetStreamUsecs()
		require.GreaterOrEqual(t, pos, prev)
		require.LessOrEqual(t, pos, i.ReadPointer())
		require.Equal(t, StateRolling, i.State())
		prev = pos

		m.AdvanceUsecs(6000)
		pos = i.GetStreamUsecs()
		require.GreaterOrEqual(t, pos, prev)
		prev = pos

		m.AdvanceUsecs(7000)
		i.PostBuffer(20000)
	}
}

func TestConvergence(t *testing.T) {
	i, m := newTestInterpolator(100000)

	i.PostBuffer(20000)
	for cycle := 0; cycle < 100; cycle++ {
		m.AdvanceUsecs(20000)
		i.PostBuffer(20000)

		s := i.snap()
		require.GreaterOrEqual(t, s.tf, 0.5)
		require.LessOrEqual(t, s.tf, 2.0)
	}

	// steady cadence locks the loop: Tf -> 1, position error -> 0
	s := i.snap()
	require.Equal(t, StateRolling, s.state)
	require.InDelta(t, 1.0, s.tf, 0.01)
	require.InDelta(t, float64(s.read-s.latency), float64(s.pos0), 500)
}

func TestSeekIdempotence(t *testing.T) {
	t.Run("stopped", func(t *testing.T) {
		i, _ := newTestInterpolator(100000)

		i.Seek(500000)
		first := i.snap()
		i.Seek(500000)
		require.Equal(t, first, i.snap())

		require.Equal(t, StateStopped, first.state)
		require.Equal(t, int64(500000), first.pos0)
		require.Equal(t, int64(500000), first.read)
		require.Equal(t, 0.0, first.tf)
	})

	t.Run("rolling", func(t *testing.T) {
		i, m := newTestInterpolator(100000)
		i.PostBuffer(20000)
		m.AdvanceUsecs(20000)

		i.Seek(500000)
		first := i.snap()
		i.Seek(500000)
		require.Equal(t, first, i.snap())

		require.Equal(t, StateRolling, first.state)
		require.Equal(t, int64(500000), first.read)
		require.Equal(t, int64(400000), first.pos0)
		require.Equal(t, 1.0, first.tf)
		require.Equal(t, first.pos0, first.last)
	})
}

func TestStopEqualsPauseTrue(t *testing.T) {
	run := func(finish func(i *Interpolator)) snapshot {
		i, m := newTestInterpolator(100000)
		i.PostBuffer(20000)
		m.AdvanceUsecs(20000)
		i.PostBuffer(20000)
		m.AdvanceUsecs(5000)
		finish(i)
		return i.snap()
	}

	stopped := run(func(i *Interpolator) { i.Stop() })
	paused := run(func(i *Interpolator) { i.Pause(true) })
	require.Equal(t, stopped, paused)

	require.Equal(t, StateStopped, stopped.state)
	require.Equal(t, int64(0), stopped.queued)
}

func TestReset(t *testing.T) {
	i, m := newTestInterpolator(100000)
	i.PostBuffer(20000)
	m.AdvanceUsecs(20000)
	i.PostBuffer(20000)

	i.Reset()

	s := i.snap()
	require.Equal(t, StateStopped, s.state)
	require.Equal(t, int64(0), s.pos0)
	require.Equal(t, int64(0), s.read)
	require.Equal(t, int64(0), s.queued)
	require.Equal(t, 0.0, s.tf)
	require.Equal(t, int64(0), i.GetStreamUsecs())
}

func TestResumeOutsidePaused(t *testing.T) {
	i, m := newTestInterpolator(100000)
	m.AdvanceUsecs(1000)

	// logged as a programmer error, but the epoch is still re-pinned
	i.Resume()

	s := i.snap()
	require.Equal(t, StateStopped, s.state)
	require.Equal(t, 1.0, s.tf)
	require.Equal(t, int64(1000), s.t0)
}

func TestForciblyUpdateReadPointer(t *testing.T) {
	i, m := newTestInterpolator(100000)
	i.PostBuffer(20000)
	m.AdvanceUsecs(20000)
	i.PostBuffer(20000)
	require.Equal(t, int64(20000), i.UsecsQueued())

	i.ForciblyUpdateReadPointer(500000)
	require.Equal(t, int64(500000), i.ReadPointer())
	require.Equal(t, int64(480000), i.snap().read)
}

func TestBytesToUsecs(t *testing.T) {
	// 48kHz stereo s16: 4-byte frames
	require.Equal(t, int64(25000), BytesToUsecs(4800, 4, 48000))
	require.Equal(t, int64(1000000), BytesToUsecs(192000, 4, 48000))

	// partial frames truncate
	require.Equal(t, int64(0), BytesToUsecs(3, 4, 48000))
}

type countingObserver struct {
	stateChanges int
	feedbacks    int
	underruns    int
	overruns     int
	rewinds      int
	lastTf       float64
}

func (o *countingObserver) OnStateChange(from, to State)   { o.stateChanges++ }
func (o *countingObserver) OnFeedback(tf float64, e int64) { o.feedbacks++; o.lastTf = tf }
func (o *countingObserver) OnUnderrun()                    { o.underruns++ }
func (o *countingObserver) OnOverrun()                     { o.overruns++ }
func (o *countingObserver) OnRewind(diff int64)            { o.rewinds++ }

func TestObserver(t *testing.T) {
	m := clock.NewMock()
	obs := &countingObserver{}
	i := New(WithClock(m), WithLatency(100000), WithObserver(obs))

	i.PostBuffer(20000) // STOPPED -> ROLLING
	require.Equal(t, 1, obs.stateChanges)

	m.AdvanceUsecs(20000)
	i.PostBuffer(20000)
	require.Equal(t, 1, obs.feedbacks)
	require.Equal(t, 0.5, obs.lastTf)

	m.AdvanceUsecs(10000000)
	i.GetStreamUsecs() // underrun stops the clock
	require.Equal(t, 1, obs.underruns)
	require.Equal(t, 2, obs.stateChanges)
}

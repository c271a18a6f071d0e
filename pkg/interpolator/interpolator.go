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
	"sync"

	"github.com/audiokit/mediaclock/pkg/clock"
	"github.com/audiokit/mediaclock/pkg/errors"
	"github.com/audiokit/mediaclock/pkg/logger"
)

// DefaultLatency is used whenever no usable latency has been set. The
// end-to-end audio latency is typically twice the HAL buffering, and
// the common HAL configuration is 4 x 20ms.
const DefaultLatency = int64(20000 * 4 * 2)

// minInitialOffset bounds the cold-start offset from below so very
// small latencies still leave the loop room to lock.
const minInitialOffset = int64(40000)

// Observer receives out-of-band notifications from the interpolator.
// Callbacks run with the interpolator's mutex held and must not call
// back into it.
type Observer interface {
	OnStateChange(from, to State)
	OnFeedback(tf float64, errUsecs int64)
	OnUnderrun()
	OnOverrun()
	OnRewind(diffUsecs int64)
}

// Interpolator holds the timing epoch for one media stream. A single
// writer posts buffers and drives the lifecycle; any number of readers
// may query the stream position concurrently.
type Interpolator struct {
	mu sync.Mutex

	state   State
	tf      float64 // time factor: media usecs per wall usec
	t0      int64   // wall-clock epoch
	pos0    int64   // media position at t0
	read    int64   // cumulative media written as of the previous post
	queued  int64   // media posted but not yet rolled into read
	latency int64   // size of all fifos between here and the output

	// rewind detection
	last    int64 // last media time reported to anyone
	nowLast int64 // wall-clock time of last

	clock    clock.Clock
	observer Observer
}

type Option func(*Interpolator)

// WithClock replaces the system monotonic clock, typically with a mock.
func WithClock(c clock.Clock) Option {
	return func(i *Interpolator) {
		i.clock = c
	}
}

// WithLatency sets the end-to-end FIFO latency in microseconds.
// Non-positive values fall back to DefaultLatency.
func WithLatency(usecs int64) Option {
	return func(i *Interpolator) {
		if usecs > 0 {
			i.latency = usecs
		} else {
			i.latency = DefaultLatency
		}
	}
}

// WithObserver attaches an instrumentation hook.
func WithObserver(o Observer) Option {
	return func(i *Interpolator) {
		i.observer = o
	}
}

func New(opts ...Option) *Interpolator {
	i := &Interpolator{
		state:   StateStopped,
		latency: DefaultLatency,
		clock:   clock.NewSystemClock(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.Seek(0)
	return i
}

// SetLatency updates the FIFO latency. Non-positive values restore
// DefaultLatency. Takes effect on the next feedback cycle; the epoch
// is untouched.
func (i *Interpolator) SetLatency(latUsecs int64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if latUsecs > 0 {
		i.latency = latUsecs
	} else {
		i.latency = DefaultLatency
	}
}

// State returns the current mode.
func (i *Interpolator) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.state
}

// UsecsQueued returns the media duration posted by the most recent
// PostBuffer but not yet rolled into the cumulative write position.
func (i *Interpolator) UsecsQueued() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.queued
}

// ReadPointer returns the cumulative write position in media time.
func (i *Interpolator) ReadPointer() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.readPointerLocked()
}

// mutex must already be locked
func (i *Interpolator) readPointerLocked() int64 {
	return i.read + i.queued
}

// ForciblyUpdateReadPointer overrides the cumulative write position
// when an outside party has authoritative knowledge of the FIFO write
// pointer.
func (i *Interpolator) ForciblyUpdateReadPointer(readPointer int64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.read = readPointer - i.queued
}

// GetStreamUsecs returns the interpolated media time
//
//	t = pos0 + Tf * (now - t0)
//
// clamped to the read pointer. While rolling, successive calls are
// non-decreasing. Never blocks on the writer.
func (i *Interpolator) GetStreamUsecs() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.clock.NowUsecs()

	if i.state == StatePaused {
		return i.pos0
	}

	dtWall := now - i.t0
	if dtWall < 0 {
		logger.Errorw("negative wall-clock delta", errors.ErrClockNotMonotonic(dtWall),
			"now", now, "t0", i.t0)
		dtWall = 0
	}
	tMedia := i.pos0 + int64(i.tf*float64(dtWall))
	if tMedia < i.last {
		logger.Warnw("time is rewinding", nil,
			"diff", tMedia-i.last, "tf", i.tf, "t0", i.t0, "pos0", i.pos0,
			"dt", dtWall, "now", now, "last", i.last, "nowLast", i.nowLast)
		if i.observer != nil {
			i.observer.OnRewind(tMedia - i.last)
		}
	}
	if tMedia >= i.readPointerLocked() && i.state == StateRolling {
		tMedia = i.readPointerLocked()
		logger.Errorw("underrun while reading stream time", errors.ErrUnderrun)
		i.errUnderrun()
	}

	i.last = tMedia
	i.nowLast = now
	return tMedia
}

// PostBuffer announces that frameUsecs of playable media were just
// written into the FIFO. It must be called at the beginning of each
// fill callback, by a single writer.
//
// The posted duration is not rendered into the cumulative write
// position immediately: the timing of this call is a good indication
// of the timing of the previous post, so the previous amount is rolled
// in now and frameUsecs is held as queued until the next cycle. Posts
// arriving faster than a quarter of their nominal cadence are
// aggregated into queued without touching the epoch.
//
// On each full cycle the loop projects the epoch forward,
//
//	pos1 = pos0 + Tf * (t1 - t0)
//
// compares it against the position the write pointer implies,
//
//	pos1Desired = read - latency
//	e = pos1 - pos1Desired
//
// and picks the time factor that makes the two time-lines intersect
// one latency from now:
//
//	Tf = 1.0 - e/latency
//
// The factor is clamped to [0.5, 2.0]; hitting the upper clamp is
// treated as an overrun, and the projection reaching the write pointer
// as an underrun.
func (i *Interpolator) PostBuffer(frameUsecs int64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	setTfToUnity := false

	if i.state != StateRolling {
		if i.state == StatePaused {
			i.setState(StateRolling, InputPostBuffer)
			// one-cycle re-lock below, skip the error term
			setTfToUnity = true
		}

		if i.state == StateStopped {
			// Half the latency was found by trial and error to let
			// playback stabilize within about 2-4 video frames.
			initialOffset := i.latency / 2
			if i.queued != 0 {
				logger.Warnw("cold start with non-zero queue", nil,
					"queued", i.queued, "frameUsecs", frameUsecs)
			}
			i.t0 = i.clock.NowUsecs()
			i.setState(StateRolling, InputPostBuffer)
			i.read += frameUsecs
			if initialOffset < minInitialOffset {
				initialOffset = minInitialOffset
			}
			i.pos0 = i.read - initialOffset
			i.queued = 0
			i.tf = 1.0
			return
		}
	}

	t1 := i.clock.NowUsecs()
	dt := t1 - i.t0

	if i.state == StateRolling && dt < frameUsecs/4 {
		// This call is very close in time to the previous one.
		// Combine the two and treat them as a single post, otherwise
		// the burst would alias into the feedback loop.
		i.queued += frameUsecs
		return
	}

	i.read += i.queued
	pos1 := i.pos0 + int64(i.tf*float64(dt))
	pos1Desired := i.read - i.latency
	e := float64(pos1 - pos1Desired)

	if pos1 < i.last && i.last > 0 {
		// ignored at the start of playback
		logger.Warnw("this cycle will cause a rewind", nil,
			"pos1", pos1, "last", i.last, "diff", pos1-i.last)
	}
	if setTfToUnity {
		e = 0
		i.tf = 1.0
	} else {
		i.tf = 1.0 - e/float64(i.latency)
	}

	i.pos0 = pos1
	i.t0 = t1
	i.queued = frameUsecs

	if i.tf >= 2.0 {
		i.tf = 2.0
		logger.Errorw("overrun", errors.ErrOverrun,
			"read", i.read, "pos0", i.pos0, "latency", i.latency)
		i.errOverrun()
	} else if i.tf < 0.5 {
		i.tf = 0.5
	}

	if i.pos0 >= i.read {
		logger.Errorw("underrun after feedback update", errors.ErrUnderrun,
			"read", i.read, "pos0", i.pos0)
		i.errUnderrun()
	}

	if i.observer != nil {
		i.observer.OnFeedback(i.tf, int64(e))
	}

	logger.Debugw("epoch updated",
		"t0", i.t0, "dt", dt, "tf", i.tf, "pos0", i.pos0,
		"read", i.read, "queued", i.queued, "latency", i.latency, "e", e)
}

// errUnderrun freezes time at the write pointer and stops the clock.
// Mutex must already be locked.
func (i *Interpolator) errUnderrun() {
	i.tf = 0.0
	i.read += i.queued
	i.pos0 = i.read
	i.queued = 0
	i.setState(StateStopped, InputErrUnderrun)
	if i.observer != nil {
		i.observer.OnUnderrun()
	}
}

// errOverrun abruptly re-pins the epoch one latency behind the write
// pointer. Mutex must already be locked.
func (i *Interpolator) errOverrun() {
	if i.state == StateRolling {
		i.pos0 = i.read - i.latency
		i.t0 = i.clock.NowUsecs()
	}
	if i.observer != nil {
		i.observer.OnOverrun()
	}
}

// BytesToUsecs converts a byte count into playable microseconds for
// PCM data with the given frame size and sample rate.
func BytesToUsecs(bytes, frameSize, sampleRate int64) int64 {
	return (bytes / frameSize) * 1000000 / sampleRate
}

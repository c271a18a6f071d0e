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
	"github.com/audiokit/mediaclock/pkg/errors"
	"github.com/audiokit/mediaclock/pkg/logger"
)

// Seek re-pins the epoch to the given media position. While stopped or
// paused the clock is left frozen at the new position; while rolling
// the epoch is placed one latency behind it and the loop restarts at
// unity.
func (i *Interpolator) Seek(mediaTime int64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	logger.Debugw("seek", "mediaTime", mediaTime, "state", i.state.String())

	if i.state == StateStopped || i.state == StatePaused {
		i.pos0 = mediaTime
		i.read = mediaTime
		i.queued = 0
		i.t0 = i.clock.NowUsecs()
		i.tf = 0.0
		i.last = mediaTime
		i.nowLast = 0
	} else {
		i.read = mediaTime
		i.pos0 = i.read - i.latency
		i.queued = 0
		i.t0 = i.clock.NowUsecs()
		i.tf = 1.0
		i.last = i.pos0
		i.nowLast = 0
	}
}

// Pause freezes the clock. With flushingFIFO it stops instead,
// re-pinning at the end of whatever had been queued; this is also the
// implementation of Stop. Without it, a rolling clock freezes at the
// last reported time and keeps the FIFO contents accounted for; in any
// other state the call is a no-op.
func (i *Interpolator) Pause(flushingFIFO bool) {
	var seekTo int64

	i.mu.Lock()
	if flushingFIFO {
		i.setState(StateStopped, InputStop)
		seekTo = i.readPointerLocked()
	} else if i.state == StateRolling {
		i.setState(StatePaused, InputPause)
		i.read += i.queued
		i.pos0 = i.last
		i.t0 = i.clock.NowUsecs()
		i.queued = 0
	}
	// release before seeking, Seek takes the mutex itself
	i.mu.Unlock()

	if flushingFIFO {
		i.Seek(seekTo)
	}
}

// Stop halts the clock and flushes FIFO accounting.
func (i *Interpolator) Stop() {
	i.Pause(true)
}

// Reset stops the clock and rewinds it to zero.
func (i *Interpolator) Reset() {
	i.Stop()
	i.Seek(0)
}

// Resume restarts wall time after a pause. Legal only from PAUSED; the
// state does not change until the next PostBuffer drives the
// transition to ROLLING.
func (i *Interpolator) Resume() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != StatePaused {
		logger.Errorw("resume outside PAUSED", errors.ErrInvalidState("resume", i.state.String()))
	}
	i.t0 = i.clock.NowUsecs()
	i.tf = 1.0
}

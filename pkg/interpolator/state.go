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

// State is the mode of the interpolator.
//
//	StateStopped - media is not moving, the clock is frozen and the
//	               fifos are flushed. Initial state.
//	StateRolling - the pipeline has reached steady state and the
//	               feedback loop controls how time progresses.
//	StatePaused  - media is not moving, the clock is frozen and the
//	               fifos keep their contents.
type State int

const (
	StateStopped State = iota
	StateRolling
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateRolling:
		return "ROLLING"
	case StatePaused:
		return "PAUSED"
	default:
		return "UNKNOWN"
	}
}

// Input is the reason for a state change.
type Input int

const (
	InputStop Input = iota
	InputSeek
	InputPause
	InputPostBuffer
	InputErrUnderrun
	InputErrOverrun
)

func (i Input) String() string {
	switch i {
	case InputStop:
		return "STOP"
	case InputSeek:
		return "SEEK"
	case InputPause:
		return "PAUSE"
	case InputPostBuffer:
		return "POST_BUFFER"
	case InputErrUnderrun:
		return "ERR_UNDERRUN"
	case InputErrOverrun:
		return "ERR_OVERRUN"
	default:
		return "UNKNOWN"
	}
}

// State transition chart:
//
//	+------------------------------------------------------+
//	|                                                      |
//	|              STOPPED (Initial state)                 |<------+
//	|                                                      |       |
//	+------------------------------------------------------+       |
//	  A                                  |                         |
//	  |                            PostBuffer()                    |
//	 Stop()                              |                         |
//	  |                                  |                         |
//	  |                                  V                         |
//	+--------+                      +---------+                    |
//	|        |<----Pause()----------|         |                    |
//	| PAUSED |                      | ROLLING |---errUnderrun------+
//	|        |---PostBuffer()------>|         |     or Stop()
//	+--------+                      +---------+
//	                                     |  A
//	                                     |  |
//	                                errOverrun (re-pin epoch)
//
// Seek() re-pins the epoch but never changes the state.
//
// setState applies the change unconditionally but logs any pair not on
// the chart as a programmer error. Mutex must already be locked.
func (i *Interpolator) setState(s State, in Input) {
	if i.state == s {
		logger.Debugw("setState called for current state", "state", s.String(), "input", in.String())
		return
	}

	legal := false
	switch i.state {
	case StateStopped:
		legal = s == StateRolling && in == InputPostBuffer
	case StateRolling:
		legal = (s == StatePaused && in == InputPause) ||
			(s == StateStopped && (in == InputStop || in == InputErrUnderrun))
	case StatePaused:
		legal = (s == StateRolling && in == InputPostBuffer) ||
			(s == StateStopped && (in == InputStop || in == InputSeek))
	}
	if !legal {
		logger.Errorw("illegal state transition",
			errors.ErrInvalidTransition(i.state.String(), s.String(), in.String()))
	}

	logger.Debugw("state change",
		"from", i.state.String(), "to", s.String(), "input", in.String())

	from := i.state
	i.state = s
	if i.observer != nil {
		i.observer.OnStateChange(from, s)
	}
}

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

package feeder

import (
	"time"

	"github.com/frostbyte73/core"

	"github.com/audiokit/mediaclock/pkg/clock"
	"github.com/audiokit/mediaclock/pkg/interpolator"
	"github.com/audiokit/mediaclock/pkg/logger"
)

// Feeder stands in for an audio fill callback: it posts a fixed frame
// duration into the interpolator at frame cadence. It is the single
// writer for the interpolator it drives.
type Feeder struct {
	interp     *interpolator.Interpolator
	clock      clock.Clock
	frameUsecs int64

	draining core.Fuse // broken when a stop has been requested
	finished core.Fuse // broken when the feed loop has exited
}

func New(interp *interpolator.Interpolator, c clock.Clock, frameUsecs int64) *Feeder {
	return &Feeder{
		interp:     interp,
		clock:      c,
		frameUsecs: frameUsecs,
	}
}

func (f *Feeder) Start() {
	go f.feed()
}

func (f *Feeder) feed() {
	defer f.finished.Break()

	logger.Debugw("feeder started", "frameUsecs", f.frameUsecs)

	t := f.clock.Ticker(time.Duration(f.frameUsecs) * time.Microsecond)
	defer t.Stop()

	// prime the fifo so the clock starts rolling immediately
	f.interp.PostBuffer(f.frameUsecs)

	for {
		select {
		case <-t.C:
			f.interp.PostBuffer(f.frameUsecs)
		case <-f.draining.Watch():
			f.interp.Stop()
			logger.Debugw("feeder drained")
			return
		}
	}
}

// Stop halts the feed loop and stops the interpolator. Blocks until
// the loop has exited.
func (f *Feeder) Stop() {
	f.draining.Break()
	<-f.finished.Watch()
}

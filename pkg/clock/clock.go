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

package clock

import (
	"time"

	bclock "github.com/benbjohnson/clock"
)

// Clock supplies monotonic microsecond timestamps measured from an
// arbitrary epoch fixed at construction. Timestamps from different
// Clock instances are not comparable.
type Clock interface {
	// NowUsecs returns microseconds elapsed since the clock's epoch.
	NowUsecs() int64
	// Ticker delivers ticks at the given interval on this clock's timeline.
	Ticker(d time.Duration) *bclock.Ticker
}

type systemClock struct {
	inner bclock.Clock
	epoch time.Time
}

// NewSystemClock returns a Clock backed by the system monotonic clock,
// anchored at the current time.
func NewSystemClock() Clock {
	inner := bclock.New()
	return &systemClock{
		inner: inner,
		epoch: inner.Now(),
	}
}

func (s *systemClock) NowUsecs() int64 {
	return s.inner.Now().Sub(s.epoch).Microseconds()
}

func (s *systemClock) Ticker(d time.Duration) *bclock.Ticker {
	return s.inner.Ticker(d)
}

// Mock is a Clock whose time only moves when advanced by the test.
type Mock struct {
	inner *bclock.Mock
	epoch time.Time
}

func NewMock() *Mock {
	inner := bclock.NewMock()
	return &Mock{
		inner: inner,
		epoch: inner.Now(),
	}
}

func (m *Mock) NowUsecs() int64 {
	return m.inner.Now().Sub(m.epoch).Microseconds()
}

func (m *Mock) Ticker(d time.Duration) *bclock.Ticker {
	return m.inner.Ticker(d)
}

// Advance moves the mock clock forward, firing any timers and tickers
// scheduled within the window.
func (m *Mock) Advance(d time.Duration) {
	m.inner.Add(d)
}

// AdvanceUsecs moves the mock clock forward by the given microseconds.
func (m *Mock) AdvanceUsecs(usecs int64) {
	m.inner.Add(time.Duration(usecs) * time.Microsecond)
}

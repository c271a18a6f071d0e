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

package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"

	"github.com/audiokit/mediaclock/pkg/interpolator"
)

// Monitor exports interpolator health as prometheus metrics. It is
// attached through interpolator.WithObserver; callbacks run under the
// interpolator's mutex, so they only touch atomics and gauges.
type Monitor struct {
	underruns atomic.Int64
	overruns  atomic.Int64
	rewinds   atomic.Int64

	promState      prometheus.Gauge
	promTimeFactor prometheus.Gauge
	promPosError   prometheus.Histogram
	promPosition   prometheus.Gauge
	promUnderruns  prometheus.Counter
	promOverruns   prometheus.Counter
	promRewinds    prometheus.Counter
}

func NewMonitor(name string) *Monitor {
	m := &Monitor{}

	constLabels := prometheus.Labels{"name": name}

	m.promState = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "audiokit",
		Subsystem:   "mediaclock",
		Name:        "state",
		Help:        "interpolator state (0=stopped, 1=rolling, 2=paused)",
		ConstLabels: constLabels,
	})

	m.promTimeFactor = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "audiokit",
		Subsystem:   "mediaclock",
		Name:        "time_factor",
		Help:        "media usecs produced per wall usec",
		ConstLabels: constLabels,
	})

	m.promPosError = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   "audiokit",
		Subsystem:   "mediaclock",
		Name:        "position_error_usecs",
		Help:        "position error fed into the time-factor update",
		Buckets:     []float64{-80000, -40000, -20000, -10000, -5000, 0, 5000, 10000, 20000, 40000, 80000},
		ConstLabels: constLabels,
	})

	m.promPosition = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "audiokit",
		Subsystem:   "mediaclock",
		Name:        "stream_position_usecs",
		Help:        "last sampled interpolated stream position",
		ConstLabels: constLabels,
	})

	m.promUnderruns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "audiokit",
		Subsystem:   "mediaclock",
		Name:        "underruns",
		Help:        "number of times the clock caught up to the write pointer",
		ConstLabels: constLabels,
	})

	m.promOverruns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "audiokit",
		Subsystem:   "mediaclock",
		Name:        "overruns",
		Help:        "number of abrupt re-pins after falling too far behind",
		ConstLabels: constLabels,
	})

	m.promRewinds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "audiokit",
		Subsystem:   "mediaclock",
		Name:        "rewinds",
		Help:        "number of projected rewinds observed by readers",
		ConstLabels: constLabels,
	})

	prometheus.MustRegister(m.promState, m.promTimeFactor, m.promPosError,
		m.promPosition, m.promUnderruns, m.promOverruns, m.promRewinds)

	return m
}

func (m *Monitor) OnStateChange(from, to interpolator.State) {
	m.promState.Set(float64(to))
}

func (m *Monitor) OnFeedback(tf float64, errUsecs int64) {
	m.promTimeFactor.Set(tf)
	m.promPosError.Observe(float64(errUsecs))
}

func (m *Monitor) OnUnderrun() {
	m.underruns.Inc()
	m.promUnderruns.Inc()
}

func (m *Monitor) OnOverrun() {
	m.overruns.Inc()
	m.promOverruns.Inc()
}

func (m *Monitor) OnRewind(diffUsecs int64) {
	m.rewinds.Inc()
	m.promRewinds.Inc()
}

// RecordPosition is called by the sampling loop, not the interpolator.
func (m *Monitor) RecordPosition(usecs int64) {
	m.promPosition.Set(float64(usecs))
}

func (m *Monitor) Underruns() int64 {
	return m.underruns.Load()
}

func (m *Monitor) Overruns() int64 {
	return m.overruns.Load()
}

func (m *Monitor) Rewinds() int64 {
	return m.rewinds.Load()
}

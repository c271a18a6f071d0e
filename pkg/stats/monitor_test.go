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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/audiokit/mediaclock/pkg/clock"
	"github.com/audiokit/mediaclock/pkg/interpolator"
)

func TestMonitor(t *testing.T) {
	m := clock.NewMock()
	monitor := NewMonitor("test")
	i := interpolator.New(
		interpolator.WithClock(m),
		interpolator.WithLatency(100000),
		interpolator.WithObserver(monitor),
	)

	i.PostBuffer(20000)
	m.AdvanceUsecs(10000000)
	i.GetStreamUsecs()

	require.Equal(t, int64(1), monitor.Underruns())
	require.Equal(t, int64(0), monitor.Overruns())
}

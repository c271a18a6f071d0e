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

package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	require.True(t, Is(ErrUnderrun, ErrUnderrun))
	require.False(t, Is(ErrUnderrun, ErrOverrun))

	err := ErrInvalidTransition("STOPPED", "PAUSED", "PAUSE")
	require.Equal(t, "illegal state transition STOPPED -> PAUSED (input: PAUSE)", err.Error())

	err = ErrInvalidState("resume", "ROLLING")
	require.Equal(t, "resume called in ROLLING state", err.Error())

	err = ErrClockNotMonotonic(-250)
	require.Equal(t, "system clock moved backwards by 250 usecs", err.Error())
}

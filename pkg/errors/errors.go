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
	"errors"
	"fmt"
)

var (
	ErrNoConfig = errors.New("missing config")
	ErrUnderrun = errors.New("interpolated clock caught up to the write pointer")
	ErrOverrun  = errors.New("interpolated clock fell too far behind the write pointer")
)

func New(err string) error {
	return errors.New(err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func ErrCouldNotParseConfig(err error) error {
	return fmt.Errorf("could not parse config: %v", err)
}

func ErrInvalidTransition(from, to, input string) error {
	return fmt.Errorf("illegal state transition %s -> %s (input: %s)", from, to, input)
}

func ErrInvalidState(op, state string) error {
	return fmt.Errorf("%s called in %s state", op, state)
}

func ErrClockNotMonotonic(deltaUsecs int64) error {
	return fmt.Errorf("system clock moved backwards by %d usecs", -deltaUsecs)
}

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

// Package interpolator turns discrete FIFO writes into a smooth,
// monotonic media clock.
//
// If a sink (or source) drains a FIFO at constant average throughput,
// audio playback being the typical case, the writes into that FIFO can
// be used as a clock source. PostBuffer should be called at the
// beginning of each fill callback with the playable duration just
// written; GetStreamUsecs may then be queried at any rate for the media
// position currently audible at the output.
//
// Wall time between posts is scaled by a time factor close to 1.0. A
// first-order feedback loop adjusts the factor on every post, pulling
// the interpolated position toward the ideal position implied by the
// write pointer and the configured end-to-end latency. The mechanism
// follows the DLL-filtered clock described in "Using a DLL to Filter
// Time" (F. Adriaensen, 2005).
//
// Intended use:
//
//	i := interpolator.New(interpolator.WithLatency(2 * fifoUsecs))
//	i.Seek(position)
//
//	// in each fill callback:
//	i.PostBuffer(frameUsecs)
//
//	// from any reader:
//	pos := i.GetStreamUsecs()
//
// The loop stays stable when the configured latency covers the real
// FIFO depth, individual posts stay under half the latency, and the
// posted durations sum to roughly wall time over any latency-sized
// window.
//
// Two runtime faults are handled inline: an underrun (the interpolated
// clock catches up to the write pointer) freezes time and stops the
// clock, and an overrun (more than twice the latency posted in a short
// window) abruptly re-pins the clock just behind the write pointer.
package interpolator

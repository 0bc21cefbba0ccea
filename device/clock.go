// SPDX-License-Identifier: EPL-2.0

package device

import (
	"sync/atomic"
	"time"
)

// clock is a monotonic seconds counter anchored at creation.
type clock struct {
	origin time.Time
}

func newClock() clock { return clock{origin: time.Now()} }

func (c clock) now() float64 { return time.Since(c.origin).Seconds() }

// schedule derives audible times for a pull-based backend that does not
// report them: once started, frame k of the stream is heard at
// base + k/rate, where base is the start time plus the output latency.
// It is written only by the audio thread after Start publishes base.
type schedule struct {
	rate      float64
	base      atomic.Uint64 // float64 bits
	delivered int64
}

func (s *schedule) reset(base float64) {
	s.delivered = 0
	s.base.Store(floatBits(base))
}

// next returns the audible time of the next buffer and advances by frames.
func (s *schedule) next(frames int) float64 {
	t := bitsFloat(s.base.Load()) + float64(s.delivered)/s.rate
	s.delivered += int64(frames)

	return t
}

// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"runtime"
	"sync/atomic"
)

// Record describes the buffer most recently handed to the device: the
// inclusive frame range it holds and the device time its first frame is
// heard.
type Record struct {
	First      int
	Last       int
	OutputTime float64
}

// recordSlot publishes a Record from the audio thread to any number of
// readers with a sequence lock. The single writer never waits; readers retry
// while a write is in progress.
type recordSlot struct {
	seq   atomic.Uint64 // 0: never written, odd: write in progress
	first atomic.Int64
	last  atomic.Int64
	at    atomic.Uint64 // float64 bits
}

// store must only be called from the audio thread.
func (s *recordSlot) store(r Record) {
	s.seq.Add(1)
	s.first.Store(int64(r.First))
	s.last.Store(int64(r.Last))
	s.at.Store(floatBits(r.OutputTime))
	s.seq.Add(1)
}

func (s *recordSlot) load() (Record, bool) {
	for {
		before := s.seq.Load()
		if before == 0 {
			return Record{}, false
		}
		if before&1 == 1 {
			runtime.Gosched()
			continue
		}

		r := Record{
			First:      int(s.first.Load()),
			Last:       int(s.last.Load()),
			OutputTime: bitsFloat(s.at.Load()),
		}
		if s.seq.Load() == before {
			return r, true
		}
	}
}

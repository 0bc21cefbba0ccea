//go:build (linux && cgo) || windows || darwin

// SPDX-License-Identifier: EPL-2.0

package device

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

var (
	speakerMtx  sync.Mutex
	speakerRate beep.SampleRate
)

// Beep opens streams on the gopxl/beep speaker. The speaker is stereo: mono
// clips are duplicated to both sides and channels past the second are
// dropped.
type Beep struct {
	// Latency is the speaker buffer length. Zero selects 100ms.
	Latency time.Duration
}

func (b Beep) latency() time.Duration {
	if b.Latency <= 0 {
		return 100 * time.Millisecond
	}
	return b.Latency
}

func initSpeaker(rate beep.SampleRate, latency time.Duration) error {
	speakerMtx.Lock()
	defer speakerMtx.Unlock()

	if speakerRate != 0 {
		if speakerRate != rate {
			return fmt.Errorf("have %d Hz, want %d Hz: %w", speakerRate, rate, ErrFormatMismatch)
		}
		return nil
	}

	if err := speaker.Init(rate, rate.N(latency)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speakerRate = rate

	return nil
}

func (b Beep) Open(sampleRate float64, channels int, cb Callback) (Stream, error) {
	rate := beep.SampleRate(int(math.Round(sampleRate)))
	if err := initSpeaker(rate, b.latency()); err != nil {
		return nil, err
	}

	s := &beepStream{
		cb:       cb,
		channels: channels,
		clock:    newClock(),
		latency:  b.latency().Seconds(),
		scratch:  make([]float32, maxChunkFrames*channels),
		sched:    schedule{rate: sampleRate},
	}
	s.ctrl = &beep.Ctrl{Streamer: s, Paused: true}

	return s, nil
}

type beepStream struct {
	ctrl     *beep.Ctrl
	cb       Callback
	channels int
	clock    clock
	latency  float64

	// audio thread only
	scratch []float32
	sched   schedule

	err     atomic.Pointer[error]
	ended   atomic.Bool
	stopped atomic.Bool
	closed  atomic.Bool
}

// Stream implements beep.Streamer; the speaker calls it with its lock held.
func (s *beepStream) Stream(samples [][2]float64) (int, bool) {
	if s.ended.Load() {
		return 0, false
	}

	done := 0
	for done < len(samples) {
		frames := min(len(samples)-done, maxChunkFrames)
		out := s.scratch[:frames*s.channels]
		err := s.cb(out, frames, s.sched.next(frames))

		for i := range frames {
			l := float64(out[i*s.channels])
			r := l
			if s.channels > 1 {
				r = float64(out[i*s.channels+1])
			}
			samples[done+i] = [2]float64{l, r}
		}
		done += frames

		if err != nil {
			s.ended.Store(true)
			if !errors.Is(err, ErrStop) {
				s.err.Store(&err)
			}
			break
		}
	}
	clear(samples[done:])

	return len(samples), true
}

// Err implements beep.Streamer and Stream. It is safe to call from any
// goroutine.
func (s *beepStream) Err() error {
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *beepStream) Start() error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.sched.reset(s.clock.now() + s.latency)
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	speaker.Play(s.ctrl)

	return nil
}

func (s *beepStream) Stop() error {
	if s.closed.Load() {
		return ErrClosed
	}

	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	s.stopped.Store(true)

	return nil
}

func (s *beepStream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	// A Ctrl without a streamer reports itself drained and is dropped by the
	// speaker mixer.
	speaker.Lock()
	s.ctrl.Streamer = nil
	speaker.Unlock()

	return nil
}

func (s *beepStream) Active() bool {
	return !s.closed.Load() && !s.stopped.Load() && !s.ended.Load()
}

func (s *beepStream) Time() float64 { return s.clock.now() }

//go:build (linux && cgo) || windows || darwin

// SPDX-License-Identifier: EPL-2.0

package device

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Available reports whether this build can open real output streams.
const Available = true

// oto allows a single context per process.
var (
	otoMtx      sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

// maxChunkFrames bounds a single callback so the scratch buffer can be
// allocated up front.
const maxChunkFrames = 8192

// Oto opens streams on the ebitengine/oto output.
type Oto struct {
	// Latency is the driver buffer length; it is also the delay between a
	// buffer being produced and being heard. Zero selects 50ms.
	Latency time.Duration
}

func (o Oto) latency() time.Duration {
	if o.Latency <= 0 {
		return 50 * time.Millisecond
	}
	return o.Latency
}

func otoContext(rate, channels int, latency time.Duration) (*oto.Context, error) {
	otoMtx.Lock()
	defer otoMtx.Unlock()

	if otoCtx != nil {
		if rate != otoRate || channels != otoChannels {
			return nil, fmt.Errorf("have %d Hz x%d, want %d Hz x%d: %w",
				otoRate, otoChannels, rate, channels, ErrFormatMismatch)
		}
		return otoCtx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("creating oto context: %w", err)
	}
	<-ready

	otoCtx, otoRate, otoChannels = ctx, rate, channels

	return ctx, nil
}

func (o Oto) Open(sampleRate float64, channels int, cb Callback) (Stream, error) {
	rate := int(math.Round(sampleRate))
	ctx, err := otoContext(rate, channels, o.latency())
	if err != nil {
		return nil, err
	}

	s := &otoStream{
		cb:       cb,
		channels: channels,
		clock:    newClock(),
		latency:  o.latency().Seconds(),
		scratch:  make([]float32, maxChunkFrames*channels),
		sched:    schedule{rate: sampleRate},
	}
	s.player = ctx.NewPlayer(s)
	s.player.SetBufferSize(int(sampleRate*s.latency) * channels * 4)

	return s, nil
}

type otoStream struct {
	player   *oto.Player
	cb       Callback
	channels int
	clock    clock
	latency  float64

	// audio thread only
	scratch []float32
	sched   schedule

	err    atomic.Pointer[error]
	ended  atomic.Bool
	closed atomic.Bool
}

// Read is called by the oto player on its own goroutine.
func (s *otoStream) Read(p []byte) (int, error) {
	if s.ended.Load() {
		return 0, io.EOF
	}

	frames := min(len(p)/(4*s.channels), maxChunkFrames)
	if frames == 0 {
		return 0, nil
	}

	out := s.scratch[:frames*s.channels]
	err := s.cb(out, frames, s.sched.next(frames))
	n := putFloat32LE(p, out)

	switch {
	case errors.Is(err, ErrStop):
		s.ended.Store(true)
		return n, io.EOF
	case err != nil:
		s.ended.Store(true)
		s.err.Store(&err)
		return n, err
	}

	return n, nil
}

func (s *otoStream) Start() error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.sched.reset(s.clock.now() + s.latency)
	s.player.Play()

	return nil
}

func (s *otoStream) Stop() error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.player.Pause()

	return nil
}

func (s *otoStream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("closing oto player: %w", err)
	}

	return nil
}

func (s *otoStream) Active() bool {
	return !s.closed.Load() && s.player.IsPlaying()
}

func (s *otoStream) Time() float64 { return s.clock.now() }

// Err reports a callback failure, or else whatever stopped the oto player.
func (s *otoStream) Err() error {
	if p := s.err.Load(); p != nil {
		return *p
	}
	if s.player == nil {
		return nil
	}
	return s.player.Err()
}

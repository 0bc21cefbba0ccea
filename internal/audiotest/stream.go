// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"sync"

	"github.com/ik5/audloop/device"
)

// ErrNotRunning is returned by Pump when the stream is not started, was
// stopped, or already ended itself.
var ErrNotRunning = errors.New("manual stream is not running")

// ManualStream is a device.Stream driven by the test: Pump plays the role
// of the audio thread and SetTime moves the device clock.
type ManualStream struct {
	SampleRate float64
	Channels   int

	// Errors returned by the matching methods, for failure tests.
	StartErr error
	StopErr  error
	CloseErr error

	mtx     sync.Mutex
	cb      device.Callback
	now     float64
	started bool
	stopped bool
	closed  bool
	ended   bool
	stops   int
	failure error
}

// Pump invokes the callback once for frames frames, as the device would,
// and returns the filled buffer together with the callback's result.
func (s *ManualStream) Pump(frames int, outputTime float64) ([]float32, error) {
	s.mtx.Lock()
	if !s.started || s.stopped || s.closed || s.ended {
		s.mtx.Unlock()
		return nil, ErrNotRunning
	}
	cb := s.cb
	s.mtx.Unlock()

	out := make([]float32, frames*s.Channels)
	for i := range out {
		// garbage the callback must overwrite
		out[i] = 9
	}
	err := cb(out, frames, outputTime)

	if errors.Is(err, device.ErrStop) {
		s.mtx.Lock()
		s.ended = true
		s.stops++
		s.mtx.Unlock()
	}

	return out, err
}

// SetTime sets the value returned by Time.
func (s *ManualStream) SetTime(now float64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.now = now
}

// StopSignals counts callbacks that returned device.ErrStop.
func (s *ManualStream) StopSignals() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.stops
}

func (s *ManualStream) Closed() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.closed
}

func (s *ManualStream) Start() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.StartErr != nil {
		return s.StartErr
	}
	s.started = true
	return nil
}

func (s *ManualStream) Stop() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.StopErr != nil {
		return s.StopErr
	}
	s.stopped = true
	return nil
}

func (s *ManualStream) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.closed = true
	return s.CloseErr
}

func (s *ManualStream) Active() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.started && !s.stopped && !s.closed && !s.ended
}

// Fail ends the stream from the device side with err, as a driver error
// would. No callback is involved.
func (s *ManualStream) Fail(err error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.ended = true
	s.failure = err
}

func (s *ManualStream) Err() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.failure
}

func (s *ManualStream) Time() float64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.now
}

// ManualOpener hands out ManualStreams and remembers them.
type ManualOpener struct {
	// OpenErr fails every Open when set.
	OpenErr error
	// Prepare, when set, can configure each stream before it is returned.
	Prepare func(*ManualStream)

	mtx     sync.Mutex
	streams []*ManualStream
}

func (o *ManualOpener) Open(sampleRate float64, channels int, cb device.Callback) (device.Stream, error) {
	if o.OpenErr != nil {
		return nil, o.OpenErr
	}

	s := &ManualStream{SampleRate: sampleRate, Channels: channels, cb: cb}
	if o.Prepare != nil {
		o.Prepare(s)
	}

	o.mtx.Lock()
	o.streams = append(o.streams, s)
	o.mtx.Unlock()

	return s, nil
}

// Last returns the most recently opened stream, or nil.
func (o *ManualOpener) Last() *ManualStream {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	if len(o.streams) == 0 {
		return nil
	}
	return o.streams[len(o.streams)-1]
}

// Opened is the number of streams opened so far.
func (o *ManualOpener) Opened() int {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	return len(o.streams)
}

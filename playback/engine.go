// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ik5/audloop/audio"
	"github.com/ik5/audloop/device"
	"github.com/ik5/audloop/marker"
)

// State of an Engine. Engines only move forward: Idle, Running, Closed.
type State int32

const (
	Idle State = iota
	Running
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for state transitions. The audio callback never
// logs.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine plays one Buffer through one output stream.
//
// Control methods (Start, Stop, Abort, the loop and marker setters and the
// position queries) may be called from any goroutine except the audio
// callback. The callback itself shares only atomics with them.
type Engine struct {
	buf     *audio.Buffer
	markers *marker.Set
	opener  device.Opener
	logger  *slog.Logger

	mtx    sync.Mutex // serializes control operations
	state  atomic.Int32
	stream device.Stream

	loop       atomic.Bool
	startFrame int // set before the stream starts, read-only afterwards
	rec        recordSlot
	ended      atomic.Bool
	done       chan struct{}
}

// New creates an idle engine. A nil marker set means no markers.
func New(buf *audio.Buffer, markers *marker.Set, opener device.Opener, opts ...Option) (*Engine, error) {
	if markers == nil {
		markers = marker.NewSet(buf)
	}
	if markers.Buffer() != buf {
		return nil, ErrBufferMismatch
	}

	e := &Engine{
		buf:     buf,
		markers: markers,
		opener:  opener,
		logger:  slog.Default(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func (e *Engine) State() State { return State(e.state.Load()) }

// Buffer returns the clip being played.
func (e *Engine) Buffer() *audio.Buffer { return e.buf }

// Markers returns the marker set the engine reads on every callback.
func (e *Engine) Markers() *marker.Set { return e.markers }

// Start opens the output stream and begins playback at positionMs. The first
// callback copies from the frame at that position.
func (e *Engine) Start(positionMs int, loop bool) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.State() != Idle {
		return fmt.Errorf("start in state %s: %w", e.State(), ErrNotIdle)
	}

	frame, err := e.buf.FrameAt(positionMs)
	if err != nil {
		return fmt.Errorf("start position: %w", err)
	}

	e.startFrame = frame
	e.loop.Store(loop)

	stream, err := e.opener.Open(e.buf.SampleRate(), e.buf.Channels(), e.fill)
	if err != nil {
		e.state.Store(int32(Closed))
		e.logger.Error("opening output stream failed", "error", err)
		return fmt.Errorf("%w: opening stream: %w", ErrDevice, err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		e.state.Store(int32(Closed))
		e.logger.Error("starting output stream failed", "error", err)
		return fmt.Errorf("%w: starting stream: %w", ErrDevice, err)
	}

	e.stream = stream
	e.state.Store(int32(Running))
	e.logger.Info("playback started", "position_ms", positionMs, "frame", frame, "loop", loop)

	return nil
}

// Stop halts playback gracefully and closes the stream. It returns the
// position heard when it was called, or 0 when no estimate was available,
// so a new engine can resume from there. A stream that is no longer active,
// because it reached the end of the audio or the device stopped it, yields
// ErrStreamEnded and must be closed with Abort.
func (e *Engine) Stop() (int, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.State() != Running {
		return 0, fmt.Errorf("stop in state %s: %w", e.State(), ErrNotRunning)
	}
	if e.ended.Load() || !e.stream.Active() {
		if err := e.stream.Err(); err != nil {
			e.logger.Error("output stream failed", "error", err)
			return 0, fmt.Errorf("%w: %w", ErrStreamEnded, err)
		}
		return 0, ErrStreamEnded
	}

	pos, ok := e.positionLocked()
	if !ok {
		pos = 0
	}

	stopErr := e.stream.Stop()
	closeErr := e.stream.Close()
	e.stream = nil
	e.state.Store(int32(Closed))

	if err := errors.Join(stopErr, closeErr); err != nil {
		e.logger.Error("stopping output stream failed", "error", err)
		return pos, fmt.Errorf("%w: %w", ErrDevice, err)
	}

	e.logger.Info("playback stopped", "position_ms", pos, "estimated", ok)

	return pos, nil
}

// Abort closes the stream without asking it to stop first. It is the way
// out once the stream ended itself at the end of the audio.
func (e *Engine) Abort() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.State() != Running {
		return fmt.Errorf("abort in state %s: %w", e.State(), ErrNotRunning)
	}

	if serr := e.stream.Err(); serr != nil {
		e.logger.Error("output stream failed", "error", serr)
	}

	err := e.stream.Close()
	e.stream = nil
	e.state.Store(int32(Closed))

	if err != nil {
		e.logger.Error("closing output stream failed", "error", err)
		return fmt.Errorf("%w: closing stream: %w", ErrDevice, err)
	}

	e.logger.Info("playback aborted", "ended", e.ended.Load())

	return nil
}

// LoopOn makes the next callback loop inside the current section.
func (e *Engine) LoopOn() { e.loop.Store(true) }

// LoopOff lets playback run on past the section end from the next callback.
func (e *Engine) LoopOff() { e.loop.Store(false) }

func (e *Engine) Looping() bool { return e.loop.Load() }

// SetMarker adds a marker; the change applies from the next callback.
func (e *Engine) SetMarker(ms int) error { return e.markers.Set(ms) }

// UnsetMarker removes a marker; the change applies from the next callback.
func (e *Engine) UnsetMarker(ms int) error { return e.markers.Unset(ms) }

// Done is closed when non-looping playback reaches the end of the buffer.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Ended reports whether the stream stopped itself at the end of the buffer.
func (e *Engine) Ended() bool { return e.ended.Load() }

// Record returns the most recent buffer record, if a callback has run.
func (e *Engine) Record() (Record, bool) { return e.rec.load() }

// CurrentFrame estimates the frame being heard right now. ok is false when
// there is no reliable answer: before the first callback, after the stream
// closed, or while the latest record is stale.
func (e *Engine) CurrentFrame() (frame int, ok bool) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.frameLocked()
}

// CurrentPosition is CurrentFrame converted to milliseconds.
func (e *Engine) CurrentPosition() (ms int, ok bool) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.positionLocked()
}

// Playing reports whether a current position is known.
func (e *Engine) Playing() bool {
	_, ok := e.CurrentPosition()
	return ok
}

func (e *Engine) frameLocked() (int, bool) {
	if e.stream == nil {
		return 0, false
	}

	rec, ok := e.rec.load()
	if !ok {
		return 0, false
	}

	f, ok := Estimate(rec, e.stream.Time(), e.buf.SampleRate())
	if !ok {
		return 0, false
	}

	// device times are not exact in binary; snap estimates within
	// frameEpsilon of a whole frame to it before truncating
	frame := int(math.Floor(f + frameEpsilon))
	if frame < 0 {
		// the first buffer is not audible yet
		return 0, false
	}

	return min(frame, e.buf.Frames()-1), true
}

func (e *Engine) positionLocked() (int, bool) {
	frame, ok := e.frameLocked()
	if !ok {
		return 0, false
	}

	pos, err := e.buf.PositionAt(frame)
	if err != nil {
		return 0, false
	}

	return pos, true
}

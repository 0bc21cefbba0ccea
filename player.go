// SPDX-License-Identifier: EPL-2.0

package audloop

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ik5/audloop/audio"
	"github.com/ik5/audloop/device"
	"github.com/ik5/audloop/marker"
	"github.com/ik5/audloop/playback"
)

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithLogger sets the logger handed to every engine the player creates.
func WithLogger(l *slog.Logger) PlayerOption {
	return func(p *Player) { p.logger = l }
}

// WithMarkers shares an existing marker set instead of starting empty. It
// must belong to the player's buffer.
func WithMarkers(m *marker.Set) PlayerOption {
	return func(p *Player) { p.markers = m }
}

// Player is a playback session over one clip. Markers and the loop flag
// outlive individual engines; stopping and starting again resumes from the
// position that was heard when playback stopped.
type Player struct {
	buf     *audio.Buffer
	markers *marker.Set
	opener  device.Opener
	logger  *slog.Logger

	mtx    sync.Mutex
	engine *playback.Engine
	resume int
	loop   bool
}

// NewPlayer creates a stopped player positioned at the start of buf.
func NewPlayer(buf *audio.Buffer, opener device.Opener, opts ...PlayerOption) *Player {
	p := &Player{
		buf:    buf,
		opener: opener,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.markers == nil {
		p.markers = marker.NewSet(buf)
	}

	return p
}

func (p *Player) Buffer() *audio.Buffer      { return p.buf }
func (p *Player) Markers() *marker.Set       { return p.markers }
func (p *Player) Sections() []marker.Section { return p.markers.Sections() }

// Start begins playback at positionMs. A previous engine that ran to the end
// of the clip is discarded first.
func (p *Player) Start(positionMs int, loop bool) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.startLocked(positionMs, loop)
}

// Resume starts again from where the last Stop left off, keeping the loop
// setting.
func (p *Player) Resume() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.startLocked(p.resume, p.loop)
}

func (p *Player) startLocked(positionMs int, loop bool) error {
	if err := p.reapLocked(); err != nil {
		return err
	}
	if p.engine != nil {
		return fmt.Errorf("player: %w", playback.ErrNotIdle)
	}

	eng, err := playback.New(p.buf, p.markers, p.opener,
		playback.WithLogger(p.logger.With("session", "engine")))
	if err != nil {
		return err
	}
	if err := eng.Start(positionMs, loop); err != nil {
		return err
	}

	p.engine = eng
	p.loop = loop

	return nil
}

// reapLocked closes an engine whose stream ended on its own.
func (p *Player) reapLocked() error {
	if p.engine == nil || !p.engine.Ended() {
		return nil
	}

	return p.discardLocked()
}

// discardLocked aborts an engine that can no longer be stopped. Reaching the
// end of the clip rewinds the resume position; a device failure keeps it.
func (p *Player) discardLocked() error {
	ended := p.engine.Ended()
	if ended {
		p.logger.Info("playback reached the end of the clip")
	}

	err := p.engine.Abort()
	p.engine = nil
	if ended {
		p.resume = 0
	}

	return err
}

// Stop halts playback and returns the position heard, which becomes the
// resume point. Stopping after playback ran to the end returns 0. When the
// device stopped the stream on its own, the engine is discarded and the
// error is returned with the previous resume point.
func (p *Player) Stop() (int, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.engine == nil {
		return 0, fmt.Errorf("player: %w", playback.ErrNotRunning)
	}
	pos, err := p.engine.Stop()
	if errors.Is(err, playback.ErrStreamEnded) {
		ended := p.engine.Ended()
		if aerr := p.discardLocked(); aerr != nil {
			return 0, aerr
		}
		if ended {
			return 0, nil
		}
		// the device gave up underneath us
		return p.resume, err
	}
	p.engine = nil
	p.resume = pos

	return pos, err
}

// Abort closes the stream without a position estimate. The resume point is
// left unchanged.
func (p *Player) Abort() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.engine == nil {
		return fmt.Errorf("player: %w", playback.ErrNotRunning)
	}

	err := p.engine.Abort()
	if p.engine.Ended() {
		p.resume = 0
	}
	p.engine = nil

	return err
}

func (p *Player) LoopOn()  { p.setLoop(true) }
func (p *Player) LoopOff() { p.setLoop(false) }

func (p *Player) setLoop(on bool) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.loop = on
	if p.engine == nil {
		return
	}
	if on {
		p.engine.LoopOn()
	} else {
		p.engine.LoopOff()
	}
}

func (p *Player) Looping() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.loop
}

// CurrentPosition reports the position being heard, in milliseconds.
func (p *Player) CurrentPosition() (int, bool) {
	p.mtx.Lock()
	eng := p.engine
	p.mtx.Unlock()

	if eng == nil {
		return 0, false
	}

	return eng.CurrentPosition()
}

func (p *Player) Playing() bool {
	_, ok := p.CurrentPosition()
	return ok
}

// ResumePosition is where Resume would start.
func (p *Player) ResumePosition() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.resume
}

// Done is closed when the running engine reaches the end of the clip. It is
// nil while stopped.
func (p *Player) Done() <-chan struct{} {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.engine == nil {
		return nil
	}
	return p.engine.Done()
}

// SetMarker adds a marker at ms; a running engine sees it from its next
// callback.
func (p *Player) SetMarker(ms int) error {
	if err := p.markers.Set(ms); err != nil {
		return err
	}
	p.logger.Debug("marker set", "position_ms", ms)

	return nil
}

func (p *Player) UnsetMarker(ms int) error {
	if err := p.markers.Unset(ms); err != nil {
		return err
	}
	p.logger.Debug("marker removed", "position_ms", ms)

	return nil
}

// ExportSections writes the current sections to dir as WAV files.
func (p *Player) ExportSections(dir string) ([]string, error) {
	paths, err := ExportSections(p.buf, p.markers, dir)
	if err != nil {
		return paths, err
	}
	p.logger.Info("sections exported", "dir", dir, "files", len(paths))

	return paths, nil
}

// Close aborts any running engine. It is safe to call on a stopped player.
func (p *Player) Close() error {
	err := p.Abort()
	if errors.Is(err, playback.ErrNotRunning) {
		return nil
	}

	return err
}

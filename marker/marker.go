// SPDX-License-Identifier: EPL-2.0

package marker

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ik5/audloop/audio"
)

// snapshot is one immutable version of the marker list. positions are in
// milliseconds, frames are the same markers converted with Buffer.FrameAt.
type snapshot struct {
	positions []int
	frames    []int
}

// Set is an ordered collection of markers over one Buffer.
//
// Set and Unset are meant for the control goroutine and are serialized
// internally. Every edit publishes a fresh snapshot, so SectionAt can run on
// the audio thread concurrently without locks and never sees a half-applied
// insert.
type Set struct {
	buf *audio.Buffer

	mtx  sync.Mutex
	snap atomic.Pointer[snapshot]
}

func NewSet(buf *audio.Buffer) *Set {
	s := &Set{buf: buf}
	s.snap.Store(&snapshot{})

	return s
}

// Buffer returns the clip the markers refer to.
func (s *Set) Buffer() *audio.Buffer { return s.buf }

// Set inserts a marker at ms, keeping the list strictly increasing. Setting
// an existing marker is a no-op.
func (s *Set) Set(ms int) error {
	if ms <= 0 || ms >= s.buf.Length() {
		return fmt.Errorf("%d ms (length %d ms): %w", ms, s.buf.Length(), ErrMarkerOutOfRange)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	cur := s.snap.Load()
	ix, found := slices.BinarySearch(cur.positions, ms)
	if found {
		return nil
	}

	frame, err := s.buf.FrameAt(ms)
	if err != nil {
		return fmt.Errorf("marker %d ms: %w", ms, err)
	}

	s.snap.Store(&snapshot{
		positions: slices.Insert(slices.Clone(cur.positions), ix, ms),
		frames:    slices.Insert(slices.Clone(cur.frames), ix, frame),
	})

	return nil
}

// Unset removes the marker at exactly ms.
func (s *Set) Unset(ms int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	cur := s.snap.Load()
	ix, found := slices.BinarySearch(cur.positions, ms)
	if !found {
		return fmt.Errorf("%d ms: %w", ms, ErrMarkerNotFound)
	}

	s.snap.Store(&snapshot{
		positions: slices.Delete(slices.Clone(cur.positions), ix, ix+1),
		frames:    slices.Delete(slices.Clone(cur.frames), ix, ix+1),
	})

	return nil
}

// Positions returns a copy of the markers in milliseconds.
func (s *Set) Positions() []int {
	return slices.Clone(s.snap.Load().positions)
}

func (s *Set) Len() int { return len(s.snap.Load().positions) }

// SectionAt returns the section that contains frame. It does not allocate and
// is safe to call from the audio callback.
func (s *Set) SectionAt(frame int) Section {
	frames := s.snap.Load().frames
	last := s.buf.Frames() - 1

	if len(frames) == 0 {
		return Section{Left: 0, Right: last}
	}

	// first marker frame strictly greater than frame
	ix := sort.SearchInts(frames, frame+1)

	switch {
	case ix == len(frames):
		return Section{Left: frames[ix-1], Right: last, RightOpen: true}
	case ix == 0:
		return Section{Left: 0, Right: frames[0] - 1, LeftOpen: true}
	default:
		return Section{Left: frames[ix-1], Right: frames[ix] - 1}
	}
}

// Sections partitions the buffer at the current markers. Markers that round
// to the same frame would produce empty sections; those are skipped.
func (s *Set) Sections() []Section {
	frames := s.snap.Load().frames
	last := s.buf.Frames() - 1

	if len(frames) == 0 {
		return []Section{{Left: 0, Right: last}}
	}

	out := make([]Section, 0, len(frames)+1)
	left, leftOpen := 0, true
	for _, f := range frames {
		if f > left {
			out = append(out, Section{Left: left, Right: f - 1, LeftOpen: leftOpen})
		}
		left, leftOpen = f, false
	}

	return append(out, Section{Left: left, Right: last, LeftOpen: leftOpen, RightOpen: true})
}

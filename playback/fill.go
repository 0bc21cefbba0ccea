// SPDX-License-Identifier: EPL-2.0

package playback

import "github.com/ik5/audloop/device"

// fill is the device callback. It writes exactly frames frames into out,
// publishes the new buffer record and returns device.ErrStop once
// non-looping playback runs out of audio. It takes no locks and allocates
// nothing.
func (e *Engine) fill(out []float32, frames int, outputTime float64) error {
	out = out[:frames*e.buf.Channels()]

	if e.ended.Load() {
		clear(out)
		return device.ErrStop
	}

	prev, primed := e.rec.load()
	first := e.startFrame
	if primed {
		first = prev.Last + 1
	}

	var (
		last    int
		reached bool
	)
	if e.loop.Load() {
		anchor := first
		if primed {
			anchor = prev.Last
		}
		first, last = e.fillLoop(out, first, anchor, frames)
	} else {
		last, reached = e.fillOnce(out, first, frames)
	}

	e.rec.store(Record{First: first, Last: last, OutputTime: outputTime})

	if reached {
		if e.ended.CompareAndSwap(false, true) {
			close(e.done)
		}
		return device.ErrStop
	}

	return nil
}

// fillLoop copies from first and wraps back to the section start as often as
// needed to fill the buffer. The section is the one holding anchor, the frame
// played last, so a buffer that ended exactly on the section edge wraps
// instead of escaping into the next section. It returns the first and last
// frames actually copied.
func (e *Engine) fillLoop(out []float32, first, anchor, frames int) (int, int) {
	sec := e.markers.SectionAt(anchor)
	if !sec.Contains(first) {
		first = sec.Left
	}

	ch := e.buf.Channels()
	pos, last := first, first
	for done := 0; done < frames; {
		n := min(frames-done, sec.Right-pos+1)
		copy(out[done*ch:(done+n)*ch], e.buf.Slice(pos, pos+n-1))
		done += n
		last = pos + n - 1
		pos = sec.Left
	}

	return first, last
}

// fillOnce copies what is left of the buffer from first and zero-fills the
// rest. reached reports that the audio ran out.
func (e *Engine) fillOnce(out []float32, first, frames int) (last int, reached bool) {
	ch := e.buf.Channels()
	size := max(min(frames, e.buf.Frames()-first), 0)

	if size > 0 {
		copy(out[:size*ch], e.buf.Slice(first, first+size-1))
	}
	clear(out[size*ch:])

	return first + size - 1, size < frames
}

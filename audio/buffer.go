// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
)

// Buffer is a decoded, in-memory clip: interleaved float32 samples plus the
// rate they were recorded at. It is never mutated once built, so the audio
// thread may read it without synchronization.
type Buffer struct {
	samples    []float32
	channels   int
	frames     int
	sampleRate float64
}

// NewBuffer wraps interleaved samples. The slice is not copied; the caller
// hands over ownership and must not write to it afterwards.
func NewBuffer(samples []float32, channels int, sampleRate float64) (*Buffer, error) {
	if channels < 1 || !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("channels=%d rate=%v: %w", channels, sampleRate, ErrInvalidFormat)
	}
	if len(samples)%channels != 0 {
		return nil, ErrInvalidDstSize
	}
	frames := len(samples) / channels
	if frames < 1 {
		return nil, ErrEmptyAudio
	}

	return &Buffer{
		samples:    samples,
		channels:   channels,
		frames:     frames,
		sampleRate: sampleRate,
	}, nil
}

func (b *Buffer) Channels() int       { return b.channels }
func (b *Buffer) Frames() int         { return b.frames }
func (b *Buffer) SampleRate() float64 { return b.sampleRate }
func (b *Buffer) Samples() []float32  { return b.samples }

// Length is the duration in whole milliseconds, rounded down.
func (b *Buffer) Length() int {
	return int(math.Floor(float64(b.frames) / b.sampleRate * 1000))
}

// FrameAt converts a position in milliseconds to the nearest frame index.
// Valid positions are 0 through Length() inclusive; the result is clamped to
// the last frame.
func (b *Buffer) FrameAt(ms int) (int, error) {
	if ms < 0 || ms > b.Length() {
		return 0, fmt.Errorf("%d ms (length %d ms): %w", ms, b.Length(), ErrPositionOutOfRange)
	}

	return b.frameAt(ms), nil
}

// PositionAt converts a frame index to milliseconds, rounded down.
func (b *Buffer) PositionAt(frame int) (int, error) {
	if frame < 0 || frame >= b.frames {
		return 0, fmt.Errorf("frame %d (frames %d): %w", frame, b.frames, ErrFrameOutOfRange)
	}

	return int(math.Floor(float64(frame) / b.sampleRate * 1000)), nil
}

func (b *Buffer) frameAt(ms int) int {
	f := int(math.Round(b.sampleRate * float64(ms) / 1000))
	return min(max(f, 0), b.frames-1)
}

// Slice returns the interleaved samples of the inclusive frame range
// [first, last]. It shares memory with the buffer.
func (b *Buffer) Slice(first, last int) []float32 {
	return b.samples[first*b.channels : (last+1)*b.channels]
}

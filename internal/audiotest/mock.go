// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"

	"github.com/ik5/audloop/audio"
)

// MockSource is an audio.Source that synthesizes its samples.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int // total frames to produce
	produced   int
	waveform   func(frame int, channel int) float32
	closed     bool
}

// NewMockSource creates a source of frames frames whose sample values come
// from waveform.
func NewMockSource(sampleRate, channels, frames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
	}
}

// NewSilentSource creates a source that produces silence.
func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return 0 })
}

// NewConstantSource creates a source holding value on every sample.
func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// NewSineSource creates a source that produces a sine wave on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewRampSource creates a source whose samples encode their own position,
// see RampValue.
func NewRampSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, RampValue)
}

// RampValue is the sample a ramp holds at frame and channel: the frame index
// plus a quarter per channel. The values are exact in float32 for any clip a
// test would build.
func RampValue(frame, channel int) float32 {
	return float32(frame) + float32(channel)*0.25
}

// Ramp builds a Buffer of RampValue samples.
func Ramp(frames, channels int, sampleRate float64) *audio.Buffer {
	samples := make([]float32, frames*channels)
	for f := range frames {
		for c := range channels {
			samples[f*channels+c] = RampValue(f, c)
		}
	}

	b, err := audio.NewBuffer(samples, channels, sampleRate)
	if err != nil {
		panic(err)
	}

	return b
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.produced >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, m.frames-m.produced)
	for f := range n {
		for c := range m.channels {
			dst[f*m.channels+c] = m.waveform(m.produced+f, c)
		}
	}
	m.produced += n

	if m.produced >= m.frames {
		return n * m.channels, io.EOF
	}

	return n * m.channels, nil
}

// SPDX-License-Identifier: EPL-2.0

package audio

import "io"

// mockSource synthesizes frames for tests inside this package, which cannot
// import internal/audiotest without a cycle.
type mockSource struct {
	sampleRate int
	channels   int
	frames     int
	produced   int
	waveform   func(frame int, channel int) float32
	readErr    error
	closed     bool
}

func newMockSource(sampleRate, channels, frames int, waveform func(frame int, channel int) float32) *mockSource {
	return &mockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
	}
}

func newConstantSource(sampleRate, channels, frames int, value float32) *mockSource {
	return newMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func (m *mockSource) SampleRate() int { return m.sampleRate }
func (m *mockSource) Channels() int   { return m.channels }
func (m *mockSource) BufSize() int    { return 4096 }

func (m *mockSource) Close() error {
	m.closed = true
	return nil
}

func (m *mockSource) ReadSamples(dst []float32) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
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

	return n * m.channels, nil
}

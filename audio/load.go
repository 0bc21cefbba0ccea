// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// LoadOptions tunes how Load turns a Source into a Buffer.
type LoadOptions struct {
	// Mono downmixes every channel into one with a MonoMixer.
	Mono bool
	// ChunkSize is the read size in samples; zero uses the source's BufSize.
	ChunkSize int
}

// Load drains src into memory and closes it. The resulting Buffer keeps the
// source's sample rate; no conversion is done.
func Load(src Source, opts LoadOptions) (*Buffer, error) {
	defer src.Close()

	if src.Channels() < 1 || src.SampleRate() <= 0 {
		return nil, fmt.Errorf("channels=%d rate=%d: %w", src.Channels(), src.SampleRate(), ErrInvalidFormat)
	}

	var s Source = src
	if opts.Mono {
		s = NewMonoMixer(src)
	}

	channels := s.Channels()
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = s.BufSize()
	}
	if chunk < channels {
		chunk = 4096
	}
	chunk -= chunk % channels
	if opts.Mono {
		// MonoMixer reads channels times the dst length from its source.
		chunk = max(chunk/src.Channels(), 1)
	}

	buf := make([]float32, chunk)
	samples := make([]float32, 0, chunk*4)

	for {
		n, err := s.ReadSamples(buf)
		if n > 0 {
			samples = append(samples, buf[:n]...)
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
		if n == 0 {
			// A source that returns nothing without an error has nothing left.
			break
		}
	}

	// Drop a trailing partial frame from truncated input.
	samples = samples[:len(samples)-len(samples)%channels]

	return NewBuffer(samples, channels, float64(s.SampleRate()))
}

// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audloop/audio"
)

const maxRetries = 8

// oggReader is the part of oggvorbis.Reader the source needs.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

// BufSize is one second of audio, the granularity oggvorbis decodes at
// comfortably.
func (s *source) BufSize() int { return s.sampleRate * s.channels }

// ReadSamples decodes straight into dst. oggvorbis counts interleaved
// values, so dst is trimmed to whole frames first.
func (s *source) ReadSamples(dst []float32) (int, error) {
	dst = dst[:len(dst)/s.channels*s.channels]
	if len(dst) == 0 {
		return 0, nil
	}

	for range maxRetries {
		n, err := s.dec.Read(dst)
		switch {
		case err == io.EOF && n == 0:
			return 0, io.EOF
		case err != nil && err != io.EOF:
			return n, fmt.Errorf("decoding vorbis: %w", err)
		case n > 0:
			return n, nil
		}
	}

	return 0, io.ErrNoProgress
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening ogg stream: %w", err)
	}

	return newSource(dec)
}

func newSource(dec oggReader) (*source, error) {
	if dec.Channels() < 1 || dec.SampleRate() < 1 {
		return nil, fmt.Errorf("%d channels at %d Hz: %w", dec.Channels(), dec.SampleRate(), audio.ErrInvalidFormat)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}

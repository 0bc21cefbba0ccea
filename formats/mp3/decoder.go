// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audloop/audio"
	"github.com/ik5/audloop/utils"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels    = 2
	frameBytes  = 2 * channels
	maxRetries  = 8
	initBufSize = 8192
)

// mp3Reader is the part of gomp3.Decoder the source needs.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// bytes of a partial frame carried over from the previous read
	pending int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) / channels * frameBytes
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf) < want {
		grown := make([]byte, want)
		copy(grown, s.buf[:s.pending])
		s.buf = grown
	}
	b := s.buf[:want]

	var err error
	for tries := 0; s.pending < frameBytes && err == nil; tries++ {
		if tries == maxRetries {
			return 0, io.ErrNoProgress
		}
		var n int
		n, err = s.dec.Read(b[s.pending:])
		s.pending += n
	}

	whole := s.pending / frameBytes * frameBytes
	samples := utils.Int16LEToFloat32(dst, b[:whole])
	s.pending = copy(b, b[whole:s.pending])

	if err != nil && err != io.EOF {
		return samples, fmt.Errorf("decoding mp3: %w", err)
	}
	if samples == 0 {
		return 0, io.EOF
	}

	return samples, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3 stream: %w", err)
	}

	return newSource(dec), nil
}

func newSource(dec mp3Reader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, initBufSize),
	}
}

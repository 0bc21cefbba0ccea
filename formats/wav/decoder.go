// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audloop/audio"
	"github.com/ik5/audloop/utils"
)

// source streams the samples of a PCM 16-bit data chunk.
type source struct {
	r          io.Reader
	sampleRate int
	channels   int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	b := s.buf[:need]

	n, err := io.ReadFull(s.r, b)
	samples := utils.Int16LEToFloat32(dst, b[:n])

	switch {
	case err == nil:
		return samples, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		if samples == 0 {
			return 0, io.EOF
		}
		return samples, nil
	default:
		return samples, fmt.Errorf("reading wav data: %w", err)
	}
}

type Decoder struct{}

// Decode reads the RIFF header and walks the chunk list up to the data
// chunk, skipping chunks it does not need (LIST, fact, ...). Only PCM 16-bit
// is accepted.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("reading RIFF header: %w", err)
	}
	if !bytes.Equal(riff[:4], []byte("RIFF")) || !bytes.Equal(riff[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	var (
		haveFmt    bool
		channels   int
		sampleRate int
	)

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrUnsupportedWavChunks
			}
			return nil, fmt.Errorf("reading chunk header: %w", err)
		}
		size := binary.LittleEndian.Uint32(hdr[4:])
		padded := int64(size) + int64(size%2)

		switch string(hdr[:4]) {
		case "fmt ":
			if size < 16 {
				return nil, ErrUnsupportedWavLayout
			}
			body := make([]byte, padded)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("reading fmt chunk: %w", err)
			}

			format := binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bits := binary.LittleEndian.Uint16(body[14:16])

			if format != 1 || bits != 16 {
				return nil, ErrOnlyPCM16bitSupported
			}
			if channels == 0 || sampleRate == 0 {
				return nil, ErrUnsupportedWavLayout
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, ErrUnsupportedWavLayout
			}

			data := r
			// streaming writers leave the size at 0 or all ones
			if size != 0 && size != 0xFFFFFFFF {
				data = io.LimitReader(r, int64(size))
			}

			return &source{
				r:          data,
				sampleRate: sampleRate,
				channels:   channels,
				buf:        make([]byte, 8192),
			}, nil

		default:
			if _, err := io.CopyN(io.Discard, r, padded); err != nil {
				return nil, ErrUnsupportedWavChunks
			}
		}
	}
}

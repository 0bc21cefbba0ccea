// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audloop/utils"
)

// encodeChunkFrames is how many frames are converted per encoder write.
const encodeChunkFrames = 8192

// Encode writes interleaved float32 samples as a PCM 16-bit WAV file.
// Samples outside [-1, 1] are clipped.
func Encode(w io.WriteSeeker, sampleRate, channels int, samples []float32) error {
	if channels < 1 {
		return ErrInvalidChannels
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, 1)
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, 0, encodeChunkFrames*channels),
	}

	step := encodeChunkFrames * channels
	for i := 0; i < len(samples); i += step {
		chunk := samples[i:min(i+step, len(samples))]

		ib.Data = ib.Data[:len(chunk)]
		for j, v := range chunk {
			ib.Data[j] = int(utils.Float32ToInt16(v))
		}

		if err := enc.Write(ib); err != nil {
			return fmt.Errorf("writing wav samples: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav file: %w", err)
	}

	return nil
}

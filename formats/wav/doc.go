// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes PCM 16-bit WAV files.
//
// Decoder walks the RIFF chunk list until it reaches the data chunk, skipping
// anything it does not understand (LIST, fact, cue and similar), and returns
// an audio.Source that yields float32 samples in [-1, 1).
//
//	f, _ := os.Open("clip.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// Encode writes interleaved float32 samples through github.com/go-audio/wav.
// It needs an io.WriteSeeker because the RIFF sizes are patched in once all
// samples are written:
//
//	f, _ := os.Create("section-01.wav")
//	err := wav.Encode(f, 48000, 2, samples)
//
// Only integer PCM at 16 bits is supported in either direction. Other layouts
// fail with ErrOnlyPCM16bitSupported.
package wav

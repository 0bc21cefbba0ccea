// SPDX-License-Identifier: EPL-2.0

// Package audio holds decoded audio and the decoder plumbing that produces
// it.
//
// # Sources and decoders
//
// Format decoders (see the formats subpackages) turn a byte stream into a
// Source, a pull-based producer of interleaved float32 samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// A Registry maps file extensions to decoders.
//
// # Buffers
//
// Playback works on a Buffer: the whole clip held in memory. Load drains a
// Source into one, optionally downmixing to mono through a MonoMixer:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	buf, err := audio.Load(src, audio.LoadOptions{})
//
// A Buffer is immutable, which is what lets the audio thread read it without
// locks.
//
// # Time and frames
//
// Positions exposed to users are whole milliseconds; the engine addresses
// frames. Buffer.FrameAt and Buffer.PositionAt are the only conversions
// between the two:
//
//	frame = round(rate * ms / 1000), clamped to the last frame
//	ms    = floor(frame / rate * 1000)
package audio

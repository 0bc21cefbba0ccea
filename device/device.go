// SPDX-License-Identifier: EPL-2.0

package device

// Callback fills out with exactly frames interleaved frames. outputTime is
// the device clock reading, in seconds, at which the first frame of out
// becomes audible. Returning ErrStop plays out the buffer just filled and
// then ends the stream; no further callbacks follow.
//
// Callbacks run on the audio thread: they must not block or allocate.
type Callback func(out []float32, frames int, outputTime float64) error

// Stream is an open output stream bound to one Callback.
type Stream interface {
	// Start begins invoking the callback.
	Start() error
	// Stop halts the callback after any buffer in flight.
	Stop() error
	// Close releases the stream. It is valid on a stream that stopped
	// itself through ErrStop.
	Close() error
	// Active reports whether the callback is still being driven.
	Active() bool
	// Time is the monotonic device clock in seconds.
	Time() float64
	// Err is the failure that ended the stream, if any. Ending through
	// ErrStop is not a failure.
	Err() error
}

// Opener creates output streams. It is the seam between the engine and a
// concrete audio backend.
type Opener interface {
	Open(sampleRate float64, channels int, cb Callback) (Stream, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(sampleRate float64, channels int, cb Callback) (Stream, error)

func (f OpenerFunc) Open(sampleRate float64, channels int, cb Callback) (Stream, error) {
	return f(sampleRate, channels, cb)
}

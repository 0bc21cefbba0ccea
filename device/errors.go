// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	// ErrStop is returned by a Callback to end the stream. It is a signal,
	// not a failure.
	ErrStop = errors.New("end of stream")
	// ErrUnavailable means the binary was built without audio output support.
	ErrUnavailable = errors.New("audio output not available in this build")
	// ErrFormatMismatch means the process-wide output was already opened
	// with a different sample rate or channel count.
	ErrFormatMismatch = errors.New("output already opened with a different format")
	// ErrClosed is returned for operations on a closed stream.
	ErrClosed = errors.New("stream closed")
)

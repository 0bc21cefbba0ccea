//go:build !((linux && cgo) || windows || darwin)

// SPDX-License-Identifier: EPL-2.0

package device

import "time"

// Available reports whether this build can open real output streams.
const Available = false

// Oto is unavailable without cgo on this platform.
type Oto struct {
	Latency time.Duration
}

func (Oto) Open(float64, int, Callback) (Stream, error) { return nil, ErrUnavailable }

// Beep is unavailable without cgo on this platform.
type Beep struct {
	Latency time.Duration
}

func (Beep) Open(float64, int, Callback) (Stream, error) { return nil, ErrUnavailable }

// SPDX-License-Identifier: EPL-2.0

package playback

import "errors"

var (
	ErrNotIdle        = errors.New("engine already started")
	ErrNotRunning     = errors.New("engine not running")
	ErrStreamEnded    = errors.New("stream reached the end of the audio; use Abort")
	ErrDevice         = errors.New("audio device failure")
	ErrBufferMismatch = errors.New("marker set belongs to a different buffer")
)

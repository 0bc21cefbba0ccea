// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize     = errors.New("dst size must be multiple of channels")
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrFrameOutOfRange    = errors.New("frame out of range")
	ErrEmptyAudio         = errors.New("audio contains no frames")
	ErrInvalidFormat      = errors.New("invalid sample rate or channel count")
)

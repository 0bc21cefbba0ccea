// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams using
// github.com/jfreymuth/oggvorbis.
//
// Samples come out of the decoder as float32 already, so the source is a thin
// adapter that keeps reads aligned to whole frames.
package vorbis

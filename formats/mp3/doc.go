// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio using
// github.com/hajimehoshi/go-mp3.
//
// The decoder always yields interleaved stereo; mono files are duplicated
// into both channels by go-mp3. Load with audio.LoadOptions{Mono: true} to
// fold them back.
package mp3

// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files using github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is scaled into [-1, 1). go-audio/aiff
// needs an io.ReadSeeker; plain readers are buffered in memory.
//
//	f, _ := os.Open("clip.aiff")
//	src, err := aiff.Decoder{}.Decode(f)
package aiff

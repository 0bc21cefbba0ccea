// SPDX-License-Identifier: EPL-2.0

package device

import (
	"encoding/binary"
	"math"
)

func floatBits(f float64) uint64 { return math.Float64bits(f) }
func bitsFloat(b uint64) float64 { return math.Float64frombits(b) }

// putFloat32LE encodes src into dst as little-endian float32 and returns the
// number of bytes written.
func putFloat32LE(dst []byte, src []float32) int {
	n := min(len(dst)/4, len(src))
	for i := range n {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(src[i]))
	}

	return n * 4
}

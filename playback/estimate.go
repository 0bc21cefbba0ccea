// SPDX-License-Identifier: EPL-2.0

package playback

import "math"

// frameEpsilon absorbs rounding noise in an estimate, in frames.
const frameEpsilon = 1e-6

func floatBits(f float64) uint64 { return math.Float64bits(f) }
func bitsFloat(b uint64) float64 { return math.Float64frombits(b) }

// Estimate returns the frame audible at device time now, given the last
// buffer record.
//
// The callback runs ahead of the speaker, so the recorded buffer is normally
// still queued: it starts OutputTime-now seconds from now and the frame being
// heard lies that far before rec.First. Once OutputTime has passed the record
// is stale and there is no reliable answer until the next callback.
func Estimate(rec Record, now, sampleRate float64) (float64, bool) {
	delta := rec.OutputTime - now
	if delta <= 0 {
		return 0, false
	}

	return float64(rec.First) - delta*sampleRate, true
}

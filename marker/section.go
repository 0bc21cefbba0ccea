// SPDX-License-Identifier: EPL-2.0

package marker

// Section is an inclusive frame range delimited by markers. A side flagged
// open has no marker and runs to the buffer edge; Left and Right already hold
// that edge (0 or frames-1).
type Section struct {
	Left      int
	Right     int
	LeftOpen  bool
	RightOpen bool
}

// Len is the number of frames in the section.
func (s Section) Len() int { return s.Right - s.Left + 1 }

// Contains reports whether frame lies inside the section.
func (s Section) Contains(frame int) bool {
	return frame >= s.Left && frame <= s.Right
}

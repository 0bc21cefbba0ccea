// SPDX-License-Identifier: EPL-2.0

package marker

import "errors"

var (
	// ErrMarkerOutOfRange is returned for positions outside the open
	// interval (0, length).
	ErrMarkerOutOfRange = errors.New("marker out of range")
	// ErrMarkerNotFound is returned when removing a marker that is not set.
	ErrMarkerNotFound = errors.New("marker not found")
)

package device

import "errors"

// Domain-specific errors for sensor access.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrSensorRead is returned when a sensor poll fails. The previous
	// reading is retained and the caller decides how to proceed.
	ErrSensorRead = errors.New("device: sensor read failed")

	// ErrNoSensor is returned when a read is attempted on a sensor that
	// was not wired at construction time.
	ErrNoSensor = errors.New("device: sensor not available")
)

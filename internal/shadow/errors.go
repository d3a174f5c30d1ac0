package shadow

import "errors"

// Domain-specific errors for shadow operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when publishing while the service is not
	// connected to the broker.
	ErrNotConnected = errors.New("shadow: not connected")

	// ErrConnectFailed is returned when a connection handshake attempt
	// fails. The service stays disconnected; the reconnect task retries.
	ErrConnectFailed = errors.New("shadow: connect failed")

	// ErrNoThingName is returned when constructing a service without a
	// thing name; topics cannot be namespaced without one.
	ErrNoThingName = errors.New("shadow: thing name is required")
)

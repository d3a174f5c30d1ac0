// Package shadow implements the cloud synchronisation service: the pub/sub
// connection lifecycle and the device-shadow reconciliation protocol between
// local device state and the cloud's desired/reported documents.
//
// # Shadow protocol
//
// The cloud holds a shadow document with two halves. The device is the sole
// writer of the *reported* half (actuator states, thresholds, last sensor
// readings, a monotonically increasing sequence); the cloud is the sole
// writer of the *desired* half. Reconciliation is one-directional per field:
// a desired-state delta arrives on the delta topic, recognised fields are
// applied to device state, and the reported half is re-published so the
// cloud observes convergence. Unrecognised fields are ignored for forward
// compatibility; malformed payloads are dropped without mutating state.
//
// # Connection model
//
//	disconnected → connecting → connected
//
// Connect performs a single handshake attempt with no internal retry — the
// retry cadence belongs to the scheduler's reconnect task. Loop must be
// called frequently while connected; it detects transport loss and drains
// inbound deltas onto the control loop goroutine, preserving the core's
// single-threaded execution model (the transport delivers messages on its
// own goroutines, so they are queued rather than handled inline).
//
// Telemetry is a separate concern sharing the transport: sensor measurement
// batches go to their own topic (and optionally to a local InfluxDB mirror),
// not into the shadow document.
package shadow

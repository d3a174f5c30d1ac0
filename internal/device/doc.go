// Package device owns the hardware-facing state of the Happy Herbs planter:
// the last commanded lamp and pump states, the last successful sensor
// readings, and the automation thresholds the cloud can adjust.
//
// Sensor and actuator access goes through the LightSensor, MoistureSensor,
// ClimateSensor, and Switch interfaces. The real drivers (I²C light meter,
// DHT probe, analogue moisture probe, GPIO relays) live behind those
// interfaces; this package ships a simulated set for development and tests.
//
// # Reading semantics
//
// Read methods are on-demand hardware polls. A successful read updates the
// corresponding last-reading; a failed read returns an error and leaves the
// prior value untouched ("no new value"). Readings are tracked together with
// a has-value flag so a missing reading can never masquerade as a numeric
// value below a threshold.
//
// # Concurrency
//
// State has no internal locking. It is only ever touched from scheduler task
// bodies and the MQTT delta handler, all of which run on the single control
// loop goroutine.
package device

// Package influxdb provides a local telemetry mirror for the Happy Herbs daemon.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, measurement writing, and health monitoring.
//
// # Purpose
//
// The cloud is the primary destination for sensor measurements, but it is
// only reachable while the device is connected. This package mirrors every
// published measurement (and actuator transition) to a local InfluxDB so
// greenhouse dashboards keep working through connectivity outages.
//
// The mirror is optional: when influxdb.enabled is false in config.yaml the
// daemon simply runs without a sink.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without a mirror
//	}
//	defer client.Close()
//
//	client.WriteMeasurement("happy-herbs-01", "light_lux", 654.0)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb

package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteMeasurement writes a single sensor measurement to InfluxDB.
//
// This satisfies the shadow package's MeasurementSink interface: every
// batch published to the cloud is mirrored here so local dashboards keep
// working during connectivity outages. The write is non-blocking; data is
// batched and sent asynchronously.
//
// Parameters:
//   - thing: The device's thing name (e.g., "happy-herbs-01")
//   - field: The measurement field (e.g., "light_lux", "moisture_level")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteMeasurement("happy-herbs-01", "temperature_c", 21.5)
func (c *Client) WriteMeasurement(thing string, field string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"plant_measurements",
		map[string]string{
			"thing": thing,
			"field": field,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteActuatorState records an actuator transition as a time series.
//
// Booleans are stored as 0/1 so dashboards can plot duty cycles directly.
//
// Parameters:
//   - thing: The device's thing name
//   - actuator: The actuator name ("lamp", "pump")
//   - on: The new state
func (c *Client) WriteActuatorState(thing string, actuator string, on bool) {
	if !c.IsConnected() {
		return
	}

	state := 0.0
	if on {
		state = 1.0
	}

	point := write.NewPoint(
		"actuator_state",
		map[string]string{
			"thing":    thing,
			"actuator": actuator,
		},
		map[string]interface{}{
			"state": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

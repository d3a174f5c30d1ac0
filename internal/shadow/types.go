package shadow

// ReportedState is the device-written half of the shadow document. Reading
// fields are pointers so a sensor that has never produced a value is omitted
// rather than reported as zero.
type ReportedState struct {
	LampOn            bool     `json:"lampOn"`
	PumpOn            bool     `json:"pumpOn"`
	LightThreshold    float64  `json:"lightThreshold"`
	MoistureThreshold float64  `json:"moistureThreshold"`
	LightMeter        *float64 `json:"lightMeter,omitempty"`
	MoistureMeter     *float64 `json:"moistureMeter,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	Humidity          *float64 `json:"humidity,omitempty"`

	// Sequence increases monotonically per publish; the device is the sole
	// writer of reported state so no further conflict resolution is needed.
	Sequence  uint64 `json:"sequence"`
	Timestamp string `json:"timestamp"`
}

// UpdateDocument is the envelope published to the shadow update topic.
type UpdateDocument struct {
	State struct {
		Reported ReportedState `json:"reported"`
	} `json:"state"`
}

// DesiredDelta carries the cloud-written fields the device accepts from a
// shadow delta. All fields are optional; unknown fields in the payload are
// ignored, not rejected.
type DesiredDelta struct {
	LightThreshold    *float64 `json:"lightThreshold"`
	MoistureThreshold *float64 `json:"moistureThreshold"`
	LampOn            *bool    `json:"lampOn"`
	PumpOn            *bool    `json:"pumpOn"`
}

// DeltaDocument is the envelope received on the shadow delta topic.
type DeltaDocument struct {
	Version   int64        `json:"version"`
	Timestamp int64        `json:"timestamp"`
	State     DesiredDelta `json:"state"`
}

// Measurement is a telemetry payload: one batch of on-demand sensor polls.
// Distinct from the shadow document — a measurement stream and a state
// document are two separate concerns sharing the same transport.
type Measurement struct {
	ID            string   `json:"id"`
	ThingName     string   `json:"thingName"`
	Timestamp     string   `json:"timestamp"`
	LightMeter    *float64 `json:"lightMeter,omitempty"`
	MoistureMeter *float64 `json:"moistureMeter,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Humidity      *float64 `json:"humidity,omitempty"`
}

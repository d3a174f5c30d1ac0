package device

// LightSensor reads ambient light in lux.
type LightSensor interface {
	ReadLux() (float64, error)
}

// MoistureSensor reads soil moisture as a raw analogue level.
type MoistureSensor interface {
	ReadMoisture() (float64, error)
}

// ClimateSensor reads air temperature (°C) and relative humidity (%RH)
// in a single poll, matching how combined probes expose the two values.
type ClimateSensor interface {
	ReadClimate() (temperature, humidity float64, err error)
}

// Switch is a binary actuator pin (lamp relay, pump relay). Writes are
// assumed authoritative: GPIO-level failures are not detectable at this
// layer, so Set does not return an error.
type Switch interface {
	Set(on bool)
}

package device

import "math/rand"

// Simulated drivers for development without planter hardware. Each sensor
// wanders around a base value so published measurements look plausible.

// SimLightSensor is a simulated ambient light meter.
type SimLightSensor struct {
	Base   float64
	Jitter float64
}

// ReadLux implements LightSensor.
func (s *SimLightSensor) ReadLux() (float64, error) {
	return jittered(s.Base, s.Jitter), nil
}

// SimMoistureSensor is a simulated soil moisture probe.
type SimMoistureSensor struct {
	Base   float64
	Jitter float64
}

// ReadMoisture implements MoistureSensor.
func (s *SimMoistureSensor) ReadMoisture() (float64, error) {
	return jittered(s.Base, s.Jitter), nil
}

// SimClimateSensor is a simulated temperature/humidity probe.
type SimClimateSensor struct {
	Temperature float64
	Humidity    float64
	Jitter      float64
}

// ReadClimate implements ClimateSensor.
func (s *SimClimateSensor) ReadClimate() (float64, float64, error) {
	return jittered(s.Temperature, s.Jitter), jittered(s.Humidity, s.Jitter), nil
}

// SimSwitch is a simulated relay that remembers its last commanded value.
type SimSwitch struct {
	On bool
}

// Set implements Switch.
func (s *SimSwitch) Set(on bool) { s.On = on }

func jittered(base, jitter float64) float64 {
	if jitter <= 0 {
		return base
	}
	return base + (rand.Float64()*2-1)*jitter //nolint:gosec // non-cryptographic simulation noise
}

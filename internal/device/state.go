package device

import "fmt"

// Snapshot is a point-in-time copy of the device state, used by the cloud
// sync service to build reported-state documents. Reading fields are only
// meaningful when the matching Has flag is set.
type Snapshot struct {
	LampOn            bool
	PumpOn            bool
	LightThreshold    float64
	MoistureThreshold float64

	Light       float64
	HasLight    bool
	Moisture    float64
	HasMoisture bool
	Temperature float64
	Humidity    float64
	HasClimate  bool
}

// State mediates all hardware I/O and owns the mutable device state:
// actuator booleans, last sensor readings, and automation thresholds.
//
// Not safe for concurrent use; see the package documentation.
type State struct {
	light    LightSensor
	moisture MoistureSensor
	climate  ClimateSensor
	lamp     Switch
	pump     Switch

	lampOn bool
	pumpOn bool

	lastLight   float64
	hasLight    bool
	lastMoist   float64
	hasMoist    bool
	lastTemp    float64
	lastHumid   float64
	hasClimate  bool

	lightThreshold    float64
	moistureThreshold float64

	// onActuation fires after a commanded actuator transition (value
	// actually changed). Used by the journal to record switch history.
	onActuation func(actuator string, on bool)

	// onThreshold fires after a threshold changes value. Used by the
	// journal to persist thresholds across power cycles.
	onThreshold func(name string, value float64)
}

// Actuator and threshold names used in observer callbacks and journal rows.
const (
	ActuatorLamp = "lamp"
	ActuatorPump = "pump"

	ThresholdLight    = "light"
	ThresholdMoisture = "moisture"
)

// NewState creates a State wired to the given drivers. Any sensor may be
// nil; reads on a missing sensor return ErrNoSensor. The lamp and pump
// switches are required.
func NewState(light LightSensor, moisture MoistureSensor, climate ClimateSensor, lamp, pump Switch) *State {
	return &State{
		light:    light,
		moisture: moisture,
		climate:  climate,
		lamp:     lamp,
		pump:     pump,
	}
}

// SetOnActuation registers a callback fired on every actuator transition.
func (s *State) SetOnActuation(fn func(actuator string, on bool)) {
	s.onActuation = fn
}

// SetOnThreshold registers a callback fired on every threshold change.
func (s *State) SetOnThreshold(fn func(name string, value float64)) {
	s.onThreshold = fn
}

// ReadLight polls the light sensor. On success the last light reading is
// updated; on failure the prior reading is retained and an error returned.
func (s *State) ReadLight() (float64, error) {
	if s.light == nil {
		return 0, fmt.Errorf("%w: light", ErrNoSensor)
	}
	v, err := s.light.ReadLux()
	if err != nil {
		return 0, fmt.Errorf("%w: light: %w", ErrSensorRead, err)
	}
	s.lastLight = v
	s.hasLight = true
	return v, nil
}

// ReadMoisture polls the soil moisture sensor. Same retention semantics as
// ReadLight.
func (s *State) ReadMoisture() (float64, error) {
	if s.moisture == nil {
		return 0, fmt.Errorf("%w: moisture", ErrNoSensor)
	}
	v, err := s.moisture.ReadMoisture()
	if err != nil {
		return 0, fmt.Errorf("%w: moisture: %w", ErrSensorRead, err)
	}
	s.lastMoist = v
	s.hasMoist = true
	return v, nil
}

// ReadClimate polls the temperature/humidity probe. Same retention
// semantics as ReadLight.
func (s *State) ReadClimate() (temperature, humidity float64, err error) {
	if s.climate == nil {
		return 0, 0, fmt.Errorf("%w: climate", ErrNoSensor)
	}
	t, h, err := s.climate.ReadClimate()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: climate: %w", ErrSensorRead, err)
	}
	s.lastTemp = t
	s.lastHumid = h
	s.hasClimate = true
	return t, h, nil
}

// WriteLamp commands the lamp relay and updates the in-memory state. The
// hardware write happens on every call (drift resistance); the actuation
// observer only fires when the commanded value actually changes.
func (s *State) WriteLamp(on bool) {
	s.lamp.Set(on)
	if s.lampOn != on {
		s.lampOn = on
		if s.onActuation != nil {
			s.onActuation(ActuatorLamp, on)
		}
	}
}

// WritePump commands the pump relay and updates the in-memory state.
func (s *State) WritePump(on bool) {
	s.pump.Set(on)
	if s.pumpOn != on {
		s.pumpOn = on
		if s.onActuation != nil {
			s.onActuation(ActuatorPump, on)
		}
	}
}

// LampOn reports the last commanded lamp state.
func (s *State) LampOn() bool { return s.lampOn }

// PumpOn reports the last commanded pump state.
func (s *State) PumpOn() bool { return s.pumpOn }

// SetLightThreshold updates the lamp automation threshold (lux).
func (s *State) SetLightThreshold(v float64) {
	if s.lightThreshold == v {
		return
	}
	s.lightThreshold = v
	if s.onThreshold != nil {
		s.onThreshold(ThresholdLight, v)
	}
}

// SetMoistureThreshold updates the watering automation threshold.
func (s *State) SetMoistureThreshold(v float64) {
	if s.moistureThreshold == v {
		return
	}
	s.moistureThreshold = v
	if s.onThreshold != nil {
		s.onThreshold(ThresholdMoisture, v)
	}
}

// LightThreshold returns the current lamp automation threshold.
func (s *State) LightThreshold() float64 { return s.lightThreshold }

// MoistureThreshold returns the current watering automation threshold.
func (s *State) MoistureThreshold() float64 { return s.moistureThreshold }

// Snapshot returns a copy of the current device state for reporting.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		LampOn:            s.lampOn,
		PumpOn:            s.pumpOn,
		LightThreshold:    s.lightThreshold,
		MoistureThreshold: s.moistureThreshold,
		Light:             s.lastLight,
		HasLight:          s.hasLight,
		Moisture:          s.lastMoist,
		HasMoisture:       s.hasMoist,
		Temperature:       s.lastTemp,
		Humidity:          s.lastHumid,
		HasClimate:        s.hasClimate,
	}
}

package shadow

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/letung3105/serverless-iot-esp32/internal/device"
)

// ConnState is the connection state of the sync service.
type ConnState string

// Connection states. Transitions only move along the
// disconnected/connecting/connected line; there is no separate
// "reconnecting" state — the reconnect task's gate decides when another
// attempt is warranted.
const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// inboundQueueSize bounds the delta backlog between Loop calls. Deltas
// beyond this are dropped; the cloud re-sends deltas while reported and
// desired state differ, so a drop only delays convergence.
const inboundQueueSize = 16

// Transport is the wire-level pub/sub client the service drives. The MQTT
// implementation lives in internal/infrastructure/mqtt; tests supply fakes.
type Transport interface {
	// Connect performs a single connection handshake attempt.
	Connect() error

	// IsConnected reports transport-level liveness.
	IsConnected() bool

	// Publish sends a payload to a topic, fire-and-forget from the
	// device's perspective.
	Publish(topic string, payload []byte) error

	// Subscribe registers a handler for a topic. The handler may be
	// invoked on the transport's own goroutines.
	Subscribe(topic string, handler func(topic string, payload []byte)) error
}

// MeasurementSink receives a local copy of every published sensor
// measurement. Satisfied by the InfluxDB client; may be nil.
type MeasurementSink interface {
	WriteMeasurement(thing, field string, value float64)
}

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// inboundMessage is a queued transport delivery awaiting the control loop.
type inboundMessage struct {
	topic   string
	payload []byte
}

// Service owns the pub/sub connection lifecycle and the shadow-document
// protocol. All methods except the transport's subscription handler run on
// the control loop goroutine; inbound messages are queued and drained by
// Loop to keep delta handling single-threaded.
type Service struct {
	thing     string
	transport Transport
	state     *device.State
	topics    Topics
	logger    Logger

	conn    ConnState
	seq     uint64
	inbound chan inboundMessage

	sink           MeasurementSink
	onDeltaApplied func()
}

// NewService creates a sync service for the named thing.
func NewService(thing string, transport Transport, state *device.State) (*Service, error) {
	if thing == "" {
		return nil, ErrNoThingName
	}
	return &Service{
		thing:     thing,
		transport: transport,
		state:     state,
		logger:    noopLogger{},
		conn:      StateDisconnected,
		inbound:   make(chan inboundMessage, inboundQueueSize),
	}, nil
}

// SetLogger sets a logger. Optional.
func (s *Service) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetMeasurementSink sets a local mirror for sensor measurements. Optional.
func (s *Service) SetMeasurementSink(sink MeasurementSink) {
	s.sink = sink
}

// SetOnDeltaApplied registers a callback fired after a desired-state delta
// mutated device state. The task wiring uses it to re-arm the shadow
// publish task so the cloud observes convergence.
func (s *Service) SetOnDeltaApplied(fn func()) {
	s.onDeltaApplied = fn
}

// Connected reports whether the service considers itself connected and the
// transport confirms liveness.
func (s *Service) Connected() bool {
	return s.conn == StateConnected && s.transport.IsConnected()
}

// ConnectionState returns the current connection state.
func (s *Service) ConnectionState() ConnState { return s.conn }

// Connect attempts a single connection handshake and, on success,
// (re-)subscribes to the shadow delta topic. There is no internal retry
// loop: on failure the service stays disconnected and the scheduler's
// reconnect task tries again on its next pass.
func (s *Service) Connect() error {
	if s.Connected() {
		return nil
	}

	s.conn = StateConnecting
	if err := s.transport.Connect(); err != nil {
		s.conn = StateDisconnected
		return fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}

	deltaTopic := s.topics.ShadowDelta(s.thing)
	if err := s.transport.Subscribe(deltaTopic, s.enqueue); err != nil {
		s.conn = StateDisconnected
		return fmt.Errorf("%w: subscribing %q: %w", ErrConnectFailed, deltaTopic, err)
	}

	s.conn = StateConnected
	s.logger.Info("cloud sync connected", "thing", s.thing, "delta_topic", deltaTopic)
	return nil
}

// enqueue is the transport's inbound handler. It runs on the transport's
// goroutine and only queues; HandleCallback runs later on the control loop.
func (s *Service) enqueue(topic string, payload []byte) {
	select {
	case s.inbound <- inboundMessage{topic: topic, payload: payload}:
	default:
		s.logger.Warn("inbound queue full, dropping message", "topic", topic)
	}
}

// Loop services the connection: it detects transport loss and drains queued
// inbound messages. Must be invoked frequently while connected; the task
// wiring gates it on Connected().
func (s *Service) Loop() {
	if !s.transport.IsConnected() {
		if s.conn == StateConnected {
			s.logger.Warn("transport connection lost")
		}
		s.conn = StateDisconnected
		return
	}

	for {
		select {
		case msg := <-s.inbound:
			s.HandleCallback(msg.topic, msg.payload)
		default:
			return
		}
	}
}

// PublishShadowUpdate serialises current device state into the reported
// shadow fields and publishes it. Fire-and-forget: there is no publish
// acknowledgement tracking, at-most-once from the device's perspective.
func (s *Service) PublishShadowUpdate() error {
	if !s.Connected() {
		return ErrNotConnected
	}

	snap := s.state.Snapshot()
	s.seq++

	var doc UpdateDocument
	doc.State.Reported = ReportedState{
		LampOn:            snap.LampOn,
		PumpOn:            snap.PumpOn,
		LightThreshold:    snap.LightThreshold,
		MoistureThreshold: snap.MoistureThreshold,
		Sequence:          s.seq,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}
	if snap.HasLight {
		doc.State.Reported.LightMeter = &snap.Light
	}
	if snap.HasMoisture {
		doc.State.Reported.MoistureMeter = &snap.Moisture
	}
	if snap.HasClimate {
		doc.State.Reported.Temperature = &snap.Temperature
		doc.State.Reported.Humidity = &snap.Humidity
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling shadow update: %w", err)
	}

	topic := s.topics.ShadowUpdate(s.thing)
	if err := s.transport.Publish(topic, payload); err != nil {
		return fmt.Errorf("publishing shadow update: %w", err)
	}

	s.logger.Debug("shadow update published",
		"sequence", s.seq,
		"lamp_on", snap.LampOn,
		"pump_on", snap.PumpOn,
	)
	return nil
}

// PublishSensorMeasurements polls every sensor and publishes a telemetry
// batch. Failed reads are skipped rather than reported as zeroes; the batch
// is also mirrored to the local measurement sink when one is configured.
func (s *Service) PublishSensorMeasurements() error {
	if !s.Connected() {
		return ErrNotConnected
	}

	m := Measurement{
		ID:        uuid.New().String(),
		ThingName: s.thing,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if v, err := s.state.ReadLight(); err == nil {
		m.LightMeter = &v
		s.mirror("light_lux", v)
	} else {
		s.logger.Warn("light read failed, skipping field", "error", err)
	}
	if v, err := s.state.ReadMoisture(); err == nil {
		m.MoistureMeter = &v
		s.mirror("moisture_level", v)
	} else {
		s.logger.Warn("moisture read failed, skipping field", "error", err)
	}
	if t, h, err := s.state.ReadClimate(); err == nil {
		m.Temperature = &t
		m.Humidity = &h
		s.mirror("temperature_c", t)
		s.mirror("humidity_pct", h)
	} else {
		s.logger.Warn("climate read failed, skipping fields", "error", err)
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshalling measurements: %w", err)
	}

	topic := s.topics.Measurements(s.thing)
	if err := s.transport.Publish(topic, payload); err != nil {
		return fmt.Errorf("publishing measurements: %w", err)
	}

	s.logger.Debug("sensor measurements published", "id", m.ID)
	return nil
}

// mirror writes one measurement field to the local sink, if configured.
func (s *Service) mirror(field string, value float64) {
	if s.sink != nil {
		s.sink.WriteMeasurement(s.thing, field, value)
	}
}

// HandleCallback processes one inbound message. For shadow deltas it parses
// the desired-state document, applies recognised fields to device state,
// and triggers a re-publish of reported state. Unrecognised fields are
// ignored; malformed payloads are dropped without mutating state.
func (s *Service) HandleCallback(topic string, payload []byte) {
	if topic != s.topics.ShadowDelta(s.thing) {
		s.logger.Debug("ignoring message on unexpected topic", "topic", topic)
		return
	}

	var doc DeltaDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		s.logger.Warn("malformed shadow delta, ignoring", "error", err)
		return
	}

	applied := 0
	if doc.State.LightThreshold != nil {
		s.state.SetLightThreshold(*doc.State.LightThreshold)
		applied++
	}
	if doc.State.MoistureThreshold != nil {
		s.state.SetMoistureThreshold(*doc.State.MoistureThreshold)
		applied++
	}
	if doc.State.LampOn != nil {
		s.state.WriteLamp(*doc.State.LampOn)
		applied++
	}
	if doc.State.PumpOn != nil {
		s.state.WritePump(*doc.State.PumpOn)
		applied++
	}

	if applied == 0 {
		return
	}

	s.logger.Info("shadow delta applied", "fields", applied, "version", doc.Version)
	if s.onDeltaApplied != nil {
		s.onDeltaApplied()
	}
}

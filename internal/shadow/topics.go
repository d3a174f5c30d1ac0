package shadow

import "fmt"

// Topic prefixes. Shadow topics follow the AWS IoT device shadow scheme;
// telemetry uses an application-owned namespace since measurements are a
// stream, not a state document.
const (
	// topicPrefixShadow is the base for device shadow topics.
	topicPrefixShadow = "$aws/things"

	// topicPrefixTelemetry is the base for sensor measurement topics.
	topicPrefixTelemetry = "happyherbs"
)

// Topics provides builders for the device's MQTT topics, namespaced by
// thing name. Using these helpers keeps topic naming consistent across
// the service and its tests.
type Topics struct{}

// ShadowUpdate returns the topic the device publishes reported state to.
//
// Example: $aws/things/happy-herbs-01/shadow/update
func (Topics) ShadowUpdate(thing string) string {
	return fmt.Sprintf("%s/%s/shadow/update", topicPrefixShadow, thing)
}

// ShadowDelta returns the topic desired-state deltas arrive on.
//
// Example: $aws/things/happy-herbs-01/shadow/update/delta
func (Topics) ShadowDelta(thing string) string {
	return fmt.Sprintf("%s/%s/shadow/update/delta", topicPrefixShadow, thing)
}

// Measurements returns the telemetry topic for sensor measurement batches.
//
// Example: happyherbs/happy-herbs-01/measurements
func (Topics) Measurements(thing string) string {
	return fmt.Sprintf("%s/%s/measurements", topicPrefixTelemetry, thing)
}

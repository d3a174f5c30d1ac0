package mqtt

import (
	"fmt"
	"time"
)

// StatusTopic returns the retained device status topic.
//
// Example: happyherbs/happy-herbs-01/status
func StatusTopic(thing string) string {
	return fmt.Sprintf("happyherbs/%s/status", thing)
}

// buildOnlinePayload creates the JSON payload for online status messages.
func buildOnlinePayload(thing string) string {
	return fmt.Sprintf(
		`{"status":"online","thing":"%s","timestamp":"%s"}`,
		thing,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// buildOfflinePayload creates the JSON payload for graceful offline status.
func buildOfflinePayload(thing string) string {
	return fmt.Sprintf(
		`{"status":"offline","thing":"%s","reason":"graceful_shutdown","timestamp":"%s"}`,
		thing,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// buildCrashedPayload creates the LWT payload the broker publishes if the
// device disconnects unexpectedly. The timestamp is the connect time, not
// the crash time — the will is registered at connect.
func buildCrashedPayload(thing string) string {
	return fmt.Sprintf(
		`{"status":"offline","thing":"%s","reason":"unexpected_disconnect","timestamp":"%s"}`,
		thing,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// Package mqtt provides AWS IoT Core connectivity for the Happy Herbs daemon.
//
// This package manages:
//   - Mutual-TLS connection to the account's AWS IoT endpoint
//   - Message publishing for shadow updates and telemetry
//   - Topic subscriptions for shadow deltas
//   - Last Will and Testament (LWT) for offline detection
//
// # Architecture
//
// The client implements the shadow.Transport interface and is deliberately
// passive: Connect is a single handshake attempt with no retry and no
// library-level auto-reconnect. The control loop's reconnect task decides
// when to try again, so connection cadence lives in exactly one place.
//
//	control loop → shadow.Service → mqtt.Client ↔ AWS IoT Core
//
// # Security Considerations
//
//   - AWS IoT requires mutual TLS; the device authenticates with its X.509
//     certificate rather than credentials
//   - The private key file must be readable only by the daemon user
//   - The IoT policy attached to the certificate should restrict the device
//     to its own thing's topics
//
// # Usage
//
//	client, err := mqtt.New(cfg.AWS, cfg.Device.ThingName)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Connect(); err != nil {
//	    // leave retry to the reconnect task
//	}
package mqtt

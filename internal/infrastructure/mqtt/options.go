package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/letung3105/serverless-iot-esp32/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// tlsMinVersion is the minimum TLS version accepted by AWS IoT.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options for an AWS IoT connection.
//
// This configures:
//   - The account-specific broker URL (always ssl://, port 8883)
//   - Mutual-TLS credentials (root CA, device certificate, private key)
//   - Client ID for identification
//   - Last Will and Testament on the device status topic
//
// Auto-reconnect and connect-retry are deliberately OFF: Connect performs a
// single handshake attempt and the control loop owns the retry cadence. A
// library-level reconnect would race the loop's connection bookkeeping.
func buildClientOptions(cfg config.AWSConfig, thing string) (*pahomqtt.ClientOptions, error) {
	tlsConfig, err := newTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("ssl://%s:%d", cfg.Endpoint, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetTLSConfig(tlsConfig)

	// Single-attempt connect; the scheduler's reconnect task retries.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(time.Duration(cfg.ConnectTimeout) * time.Second)

	// Clean session - AWS IoT's shadow re-sends deltas while reported and
	// desired diverge, so nothing is lost by starting fresh.
	opts.SetCleanSession(true)

	opts.SetKeepAlive(defaultKeepAlive)

	// LWT: the broker announces an unexpected disconnect on the status topic.
	opts.SetWill(StatusTopic(thing), buildCrashedPayload(thing), 1, true)

	return opts, nil
}

// newTLSConfig loads the AWS IoT mutual-TLS credentials.
//
// AWS IoT authenticates the device by its X.509 certificate; there is no
// username/password. The root CA verifies the broker's identity in return.
func newTLSConfig(cfg config.TLSConfig) (*tls.Config, error) {
	rootCA, err := os.ReadFile(cfg.RootCAFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading root CA: %w", ErrTLSConfig, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(rootCA) {
		return nil, fmt.Errorf("%w: root CA file %q contains no certificates", ErrTLSConfig, cfg.RootCAFile)
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: loading device certificate: %w", ErrTLSConfig, err)
	}

	return &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tlsMinVersion,
	}, nil
}

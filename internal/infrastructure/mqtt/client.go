package mqtt

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/letung3105/serverless-iot-esp32/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for AWS IoT Core connectivity.
//
// It satisfies the shadow.Transport interface: a single-attempt Connect,
// fire-and-forget Publish, and Subscribe with handlers invoked on paho's
// goroutines. The client never reconnects on its own — when the connection
// drops it stays down until the control loop calls Connect again.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines,
//     though in practice only the control loop calls them.
type Client struct {
	client pahomqtt.Client
	cfg    config.AWSConfig
	thing  string

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// logger for error/panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// New creates a client for the named thing. The AWS IoT certificates are
// loaded eagerly so a bad configuration fails at startup, not on the first
// connect attempt.
//
// The returned client is disconnected; call Connect to establish a session.
func New(cfg config.AWSConfig, thing string) (*Client, error) {
	opts, err := buildClientOptions(cfg, thing)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:   cfg,
		thing: thing,
	}

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, lostErr error) {
		c.handleConnectionLost(lostErr)
	})

	c.client = pahomqtt.NewClient(opts)
	return c, nil
}

// Connect performs a single connection handshake attempt.
//
// It blocks for at most the configured connect timeout. On success the
// device's retained status is set to online. On failure it returns an
// error and makes no further attempts — retry cadence belongs to the
// caller.
func (c *Client) Connect() error {
	timeout := time.Duration(c.cfg.ConnectTimeout) * time.Second
	token := c.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	// Retained online status; the LWT flips it back if the session dies.
	c.publishStatus(buildOnlinePayload(c.thing))

	return nil
}

// handleConnectionLost records the drop. No reconnect is started here.
func (c *Client) handleConnectionLost(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	if logger := c.getLogger(); logger != nil {
		logger.Warn("connection lost", "error", err)
	}
}

// publishStatus publishes a retained device status payload. Failures are
// logged and swallowed: status is advisory.
func (c *Client) publishStatus(payload string) {
	token := c.client.Publish(StatusTopic(c.thing), byte(c.cfg.QoS), true, payload)
	if !token.WaitTimeout(defaultPublishTimeout) || token.Error() != nil {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("status publish failed", "error", token.Error())
		}
	}
}

// IsConnected reports the transport's last known connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnectionOpen()
}

// Publish sends a payload to the specified topic at the configured QoS.
//
// Messages are not retained: shadow updates and telemetry are streams, and
// AWS IoT rejects retained publishes on $aws reserved topics anyway.
func (c *Client) Publish(topic string, payload []byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, byte(c.cfg.QoS), false, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// Subscribe registers a handler for messages on the specified topic.
//
// The handler is called on paho's own goroutines; it must hand work to the
// control loop rather than touching device state directly. Sessions are
// clean, so the caller re-subscribes after every successful Connect.
func (c *Client) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Subscribe(topic, byte(c.cfg.QoS), c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// Close gracefully disconnects from AWS IoT.
//
// It publishes a graceful offline status first (distinct from the LWT crash
// status) and then disconnects with a quiesce period for pending operations.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		c.publishStatus(buildOfflinePayload(c.thing))
	}

	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// SetLogger sets a logger for connection loss and handler panic logging.
// If not set, these events are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a subscription handler with panic recovery. A panicking
// handler must not take down paho's message router.
func (c *Client) wrapHandler(handler func(topic string, payload []byte)) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		handler(msg.Topic(), msg.Payload())
	}
}

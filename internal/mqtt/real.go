package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/light-controller/internal/logger"
)

// DefaultBufferSize is how many messages are kept while the broker is unreachable.
const DefaultBufferSize = 100

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Options configures the broker connection.
type Options struct {
	Broker     string
	ClientID   string
	Topics     Topics
	BufferSize int

	// OnConnectionChange, if set, is called whenever the connection goes up or down.
	OnConnectionChange func(connected bool)
}

// conn is the part of paho.Client the client uses.
type conn interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Disconnect(quiesce uint)
}

// RealClient publishes to and subscribes on an actual MQTT broker. Messages
// published while disconnected are buffered and replayed on reconnect.
type RealClient struct {
	conn     conn
	topics   Topics
	log      *logger.Log
	onChange func(bool)

	mu        sync.Mutex
	buf       *ringBuffer
	subs      map[string]MessageHandler
	connected bool
	reconnect bool
}

// NewRealClient creates a client for the given broker. If the broker is not
// reachable yet the client keeps retrying in the background.
func NewRealClient(o Options, log *logger.Log) (*RealClient, error) {
	c := newClient(o, log)

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(o.Topics.System(), will, 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	client := paho.NewClient(opts)
	c.conn = client

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		c.log.WithField("broker", o.Broker).Warn("Broker not reachable yet, buffering until connected")
		return c, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return c, nil
}

func newClient(o Options, log *logger.Log) *RealClient {
	size := o.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &RealClient{
		topics:   o.Topics,
		log:      log.Module("mqtt"),
		onChange: o.OnConnectionChange,
		buf:      newRingBuffer(size),
		subs:     make(map[string]MessageHandler),
	}
}

func (c *RealClient) onConnect(_ paho.Client) {
	c.mu.Lock()
	c.connected = true
	reconnect := c.reconnect
	c.reconnect = true
	subs := make(map[string]MessageHandler, len(c.subs))
	for f, h := range c.subs {
		subs[f] = h
	}
	pending := c.buf.drainAll()
	c.mu.Unlock()

	c.log.WithField("reconnect", reconnect).Info("Connected to broker")
	if c.onChange != nil {
		c.onChange(true)
	}

	for filter, h := range subs {
		if err := c.subscribe(filter, h); err != nil {
			c.log.WithError(err).WithField("filter", filter).Error("Resubscribe failed")
		}
	}

	if reconnect {
		ev := SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"}
		if err := c.PublishSystem(ev); err != nil {
			c.log.WithError(err).Warn("Failed to publish reconnect event")
		}
	}

	for i, m := range pending {
		if err := c.send(m); err != nil {
			c.log.WithError(err).WithField("remaining", len(pending)-i).Warn("Replay interrupted")
			c.mu.Lock()
			for _, rest := range pending[i:] {
				c.buf.push(rest)
			}
			c.mu.Unlock()
			return
		}
	}
	if len(pending) > 0 {
		c.log.WithField("messages", len(pending)).Info("Replayed buffered messages")
	}
}

func (c *RealClient) onConnectionLost(_ paho.Client, err error) {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.log.WithError(err).Warn("Connection to broker lost")
	if c.onChange != nil {
		c.onChange(false)
	}
}

// IsConnected reports whether the broker connection is up.
func (c *RealClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Subscribe registers handler for filter. The subscription is renewed on
// every reconnect.
func (c *RealClient) Subscribe(filter string, handler MessageHandler) error {
	c.mu.Lock()
	c.subs[filter] = handler
	connected := c.connected
	c.mu.Unlock()

	if !connected {
		return nil
	}
	return c.subscribe(filter, handler)
}

func (c *RealClient) subscribe(filter string, handler MessageHandler) error {
	token := c.conn.Subscribe(filter, 1, func(_ paho.Client, m paho.Message) {
		handler(m.Topic(), m.Payload())
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", filter)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", filter, err)
	}
	return nil
}

// PublishButton sends a settled press to the broker.
func (c *RealClient) PublishButton(event ButtonEvent) error {
	payload, err := FormatButtonPayload(event)
	if err != nil {
		return fmt.Errorf("format button payload: %w", err)
	}
	// QoS 1: presses are commands for the other side
	return c.publish(bufferedMsg{topic: c.topics.Button(), payload: payload, qos: 1})
}

// PublishLight sends the light state, retained.
func (c *RealClient) PublishLight(event LightEvent) error {
	payload, err := FormatLightPayload(event)
	if err != nil {
		return fmt.Errorf("format light payload: %w", err)
	}
	return c.publish(bufferedMsg{topic: c.topics.Light(), payload: payload, qos: 1, retained: true})
}

// PublishLED sends a status LED change, retained.
func (c *RealClient) PublishLED(event LEDEvent) error {
	payload, err := FormatLEDPayload(event)
	if err != nil {
		return fmt.Errorf("format led payload: %w", err)
	}
	return c.publish(bufferedMsg{topic: c.topics.LED(), payload: payload, retained: true})
}

// PublishSystem sends a system lifecycle event to the broker.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) - we want lifecycle events delivered
	return c.publish(bufferedMsg{topic: c.topics.System(), payload: payload, qos: 1, retained: event.Retained})
}

// errNotConnected is returned by send when the connection is down.
var errNotConnected = errors.New("not connected")

func (c *RealClient) publish(m bufferedMsg) error {
	err := c.send(m)
	if !errors.Is(err, errNotConnected) {
		return err
	}

	c.mu.Lock()
	first := c.buf.push(m)
	c.mu.Unlock()
	if first {
		c.log.WithField("capacity", c.buf.capacity).Warn("Offline buffer full, dropping oldest")
	}
	return nil
}

func (c *RealClient) send(m bufferedMsg) error {
	if !c.IsConnected() || !c.conn.IsConnectionOpen() {
		return errNotConnected
	}
	token := c.conn.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.conn.Disconnect(1000) // 1 second timeout
	return nil
}

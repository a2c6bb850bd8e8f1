package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/sweeney/blink-logger/internal/logic"
)

// DefaultBufferSize is the number of messages held while offline.
const DefaultBufferSize = 256

const publishTimeout = 5 * time.Second

// Options configures a RealPublisher.
type Options struct {
	Broker string
	// Session tags every payload and the client id.
	Session        string
	BufferSize     int
	ConnectTimeout time.Duration
	Logger         *zap.Logger
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// disconnected are held in a ring buffer and replayed on reconnect.
type RealPublisher struct {
	client  paho.Client
	session string
	logger  *zap.Logger

	mu        sync.Mutex
	connected bool
	everUp    bool
	buffer    *ringBuffer
}

// NewRealPublisher connects to the broker. If the broker is unreachable within
// ConnectTimeout the publisher is still returned and keeps retrying in the
// background while buffering.
func NewRealPublisher(opts Options) (*RealPublisher, error) {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	p := &RealPublisher{
		session: opts.Session,
		logger:  opts.Logger,
		buffer:  newRingBuffer(opts.BufferSize),
	}

	will, err := FormatSystemPayload(SystemEvent{Event: EventOffline, Timestamp: time.Now()}, opts.Session)
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	clientOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(clientID(opts.Session)).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, false).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(clientOpts)
	token := p.client.Connect()
	if !token.WaitTimeout(opts.ConnectTimeout) {
		p.logger.Warn("mqtt broker not reachable yet, buffering",
			zap.String("broker", opts.Broker),
			zap.Duration("timeout", opts.ConnectTimeout))
		return p, nil
	}
	if err := token.Error(); err != nil {
		p.client.Disconnect(250)
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

func clientID(session string) string {
	if len(session) > 8 {
		session = session[:8]
	}
	return "blink-logger-" + session
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Buffered returns the number of messages waiting for replay.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.len()
}

func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	p.connected = true
	reconnect := p.everUp
	p.everUp = true
	pending := p.buffer.drainAll()
	p.mu.Unlock()

	p.logger.Info("mqtt connected", zap.Bool("reconnect", reconnect), zap.Int("replay", len(pending)))

	if reconnect {
		payload, err := FormatSystemPayload(SystemEvent{Event: EventReconnected, Timestamp: time.Now()}, p.session)
		if err == nil {
			p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1})
		}
	}
	for _, msg := range pending {
		if err := p.send(msg); err != nil {
			p.logger.Warn("mqtt replay failed", zap.String("topic", msg.topic), zap.Error(err))
		}
	}
}

func (p *RealPublisher) onConnectionLost(client paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	p.logger.Warn("mqtt connection lost", zap.Error(err))
}

// Publish sends a detector event. QoS 0, not retained.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event, p.session)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.publishOrBuffer(bufferedMsg{topic: TopicEvents, payload: payload})
}

// PublishSystem sends a lifecycle event. QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event, p.session)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publishOrBuffer(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) publishOrBuffer(msg bufferedMsg) error {
	p.mu.Lock()
	if !p.connected {
		if p.buffer.push(msg) {
			p.logger.Warn("mqtt buffer full, dropping oldest", zap.Int("capacity", p.buffer.capacity))
		}
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	return p.send(msg)
}

// send hands msg to the client and returns without waiting for the broker.
// Delivery is awaited on its own goroutine so a stalled broker cannot hold up
// the caller.
func (p *RealPublisher) send(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	go p.await(msg.topic, token)
	return nil
}

func (p *RealPublisher) await(topic string, token paho.Token) {
	if !token.WaitTimeout(publishTimeout) {
		p.logger.Warn("mqtt publish timed out", zap.String("topic", topic), zap.Duration("timeout", publishTimeout))
		return
	}
	if err := token.Error(); err != nil {
		p.logger.Warn("mqtt publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

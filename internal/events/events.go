package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicUserEvents    = "user_events"
	TopicOrderEvents   = "order_events"
	TopicProductEvents = "product_events"
)

const (
	publishTimeout = 5 * time.Second
	drainTimeout   = 5 * time.Second
	queueSize      = 1024
)

var (
	ErrQueueFull = errors.New("events: publish queue full")
	ErrClosed    = errors.New("events: publisher closed")
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

// New returns a Kafka publisher, or a no-op one when no brokers are configured.
func New(brokers []string, logger *slog.Logger) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewKafkaPublisher(brokers, logger)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues messages and writes them from a single background
// worker, so callers never wait on the broker.
type KafkaPublisher struct {
	writer       messageWriter
	logger       *slog.Logger
	writeTimeout time.Duration
	drainTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.Message

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewKafkaPublisher(brokers []string, logger *slog.Logger) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           publishTimeout,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
	}, logger, publisherOptions{queueSize: queueSize, writeTimeout: publishTimeout, drainTimeout: drainTimeout})
}

type publisherOptions struct {
	queueSize    int
	writeTimeout time.Duration
	drainTimeout time.Duration
}

func newKafkaPublisher(w messageWriter, logger *slog.Logger, opts publisherOptions) *KafkaPublisher {
	ctx, cancel := context.WithCancel(context.Background())
	p := &KafkaPublisher{
		writer:       w,
		logger:       logger.With("component", "events"),
		writeTimeout: opts.writeTimeout,
		drainTimeout: opts.drainTimeout,
		queue:        make(chan kafka.Message, opts.queueSize),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish encodes event and enqueues it. It fails only when the event cannot
// be encoded, the queue is full or the publisher is closed.
func (p *KafkaPublisher) Publish(_ context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- kafka.Message{Topic: topic, Key: []byte(key), Value: data, Time: time.Now().UTC()}:
		return nil
	default:
		return fmt.Errorf("kafka: %s: %w", topic, ErrQueueFull)
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(p.ctx, p.writeTimeout)
		err := p.writer.WriteMessages(ctx, msg)
		cancel()
		if err != nil {
			p.logger.Warn("publish_event_failed", "topic", msg.Topic, "key", string(msg.Key), "error", err)
		}
	}
}

// Close stops accepting events and drains the queue. Writes still pending
// after the drain timeout are abandoned.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	select {
	case <-p.done:
	case <-time.After(p.drainTimeout):
		p.logger.Warn("publish_drain_timeout", "pending", len(p.queue))
		p.cancel()
		<-p.done
	}
	p.cancel()
	return p.writer.Close()
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                       { return nil }

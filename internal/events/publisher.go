// Package events publishes answered chatbot turns to Kafka for analytics.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/bgdnvk/hrassist/internal/agent/model"
)

var ErrPublisherClosed = errors.New("publisher closed")

const DefaultTopic = "hrassist.turns"

type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes turn events keyed by user id. A Publisher without brokers
// drops every event.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{timeout: cfg.WriteTimeout, logger: logger}
	if p.timeout <= 0 {
		p.timeout = 2 * time.Second
	}
	if len(cfg.Brokers) == 0 {
		return p
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Compression:  kafka.Gzip,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("turn events not delivered", "count", len(messages), "error", err)
			}
		},
	}
	return p
}

func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

// PublishTurn assigns an id and timestamp when missing and writes the event.
func (p *Publisher) PublishTurn(ctx context.Context, ev model.TurnEvent) error {
	if p.writer == nil {
		return nil
	}
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPublisherClosed
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode turn event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	msg := kafka.Message{Key: []byte(ev.UserID), Value: value, Time: ev.Timestamp}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish turn event %s: %w", ev.ID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.writer == nil {
		p.closed = true
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

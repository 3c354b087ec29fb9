// AngelaMos | 2026
// publisher.go

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/carterperez-dev/templates/reservation-api/internal/config"
)

const (
	TypeReservationCreated = "reservation.created"
	TypeReservationDeleted = "reservation.deleted"
)

const (
	defaultDialTimeout   = 2 * time.Second
	defaultRetryInterval = 10 * time.Second
)

var (
	ErrPublisherClosed = errors.New("publisher closed")
	ErrBrokerBackoff   = errors.New("broker unavailable, waiting before redial")
)

// Event is the JSON envelope put on the queue.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// New returns an AMQP publisher when a broker URL is configured and a
// no-op publisher otherwise.
func New(cfg config.BrokerConfig, logger *slog.Logger) (Publisher, error) {
	if cfg.URL == "" {
		return NoopPublisher{}, nil
	}
	return NewAMQPPublisher(cfg, logger)
}

// AMQPPublisher keeps one connection and channel open and redials on the
// next publish after the broker drops them. A failed redial blocks further
// attempts for RetryInterval; publishes in that window fail immediately.
type AMQPPublisher struct {
	url           string
	queue         string
	dialTimeout   time.Duration
	retryInterval time.Duration
	logger        *slog.Logger
	now           func() time.Time

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	closed   bool
	nextDial time.Time
}

func NewAMQPPublisher(
	cfg config.BrokerConfig,
	logger *slog.Logger,
) (*AMQPPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	p := newAMQPPublisher(cfg, logger)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connectLocked(context.Background()); err != nil {
		return nil, err
	}

	return p, nil
}

func newAMQPPublisher(cfg config.BrokerConfig, logger *slog.Logger) *AMQPPublisher {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}

	return &AMQPPublisher{
		url:           cfg.URL,
		queue:         cfg.Queue,
		dialTimeout:   cfg.DialTimeout,
		retryInterval: cfg.RetryInterval,
		logger:        logger,
		now:           time.Now,
	}
}

// connectLocked dials within dialTimeout, shortened to ctx's deadline.
func (p *AMQPPublisher) connectLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		//nolint:errcheck // best-effort cleanup after failed channel open
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		p.queue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		//nolint:errcheck // best-effort cleanup after failed declare
		ch.Close()
		//nolint:errcheck // best-effort cleanup after failed declare
		conn.Close()
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *AMQPPublisher) Publish(
	ctx context.Context,
	eventType string,
	payload any,
) error {
	body, err := json.Marshal(Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}

	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		if p.now().Before(p.nextDial) {
			return ErrBrokerBackoff
		}

		p.logger.WarnContext(ctx, "broker connection lost, redialing")
		//nolint:errcheck // connection is already gone
		p.releaseLocked()
		if err := p.connectLocked(ctx); err != nil {
			p.nextDial = p.now().Add(p.retryInterval)
			return err
		}
	}

	err = p.ch.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         eventType,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	return nil
}

// Ping reports whether the broker connection is currently usable.
func (p *AMQPPublisher) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("broker connection closed")
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.releaseLocked()
}

func (p *AMQPPublisher) releaseLocked() error {
	var errs []error
	if p.ch != nil && !p.ch.IsClosed() {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}
	p.ch = nil
	p.conn = nil
	return errors.Join(errs...)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }

var (
	_ Publisher = (*AMQPPublisher)(nil)
	_ Publisher = NoopPublisher{}
)

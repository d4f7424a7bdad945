package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange telemetry events are published to.
const ExchangeName = "overland.telemetry"

const appID = "overland"

// ErrNotConfirmed is returned when the broker negatively acknowledges a
// publish.
var ErrNotConfirmed = errors.New("broker did not confirm message")

// RabbitMQPublisher publishes persistent JSON messages to a topic exchange
// and waits for the broker's publisher confirm.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewRabbitMQPublisher connects to url and declares exchange. An empty
// exchange uses ExchangeName.
func NewRabbitMQPublisher(url, exchange string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if exchange == "" {
		exchange = ExchangeName
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	logger.Info("RabbitMQ publisher connected", "exchange", exchange)

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// Publish sends msg and blocks until the broker confirms it or ctx ends.
func (p *RabbitMQPublisher) Publish(ctx context.Context, msg Message) error {
	p.mu.Lock()
	confirm, err := p.channel.PublishWithDeferredConfirmWithContext(ctx,
		p.exchange,
		msg.RoutingKey,
		false, // mandatory
		false, // immediate
		toPublishing(msg),
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", msg.RoutingKey, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("waiting for confirm of %s: %w", msg.RoutingKey, err)
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrNotConfirmed, msg.RoutingKey)
	}

	p.logger.DebugContext(ctx, "message published",
		"routing_key", msg.RoutingKey,
		"message_id", msg.ID,
		"size", len(msg.Body),
	)
	return nil
}

// Close closes the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		p.logger.Warn("error closing channel", "error", err)
	}
	if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	p.logger.Info("RabbitMQ publisher closed")
	return nil
}

func toPublishing(msg Message) amqp.Publishing {
	var headers amqp.Table
	if len(msg.Headers) > 0 {
		headers = make(amqp.Table, len(msg.Headers))
		for k, v := range msg.Headers {
			headers[k] = v
		}
	}
	return amqp.Publishing{
		AppId:        appID,
		MessageId:    msg.ID,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.OccurredAt,
		Headers:      headers,
		Body:         msg.Body,
	}
}

// NoopPublisher discards messages. It stands in when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that does nothing.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

// Publish logs the message and drops it.
func (p *NoopPublisher) Publish(ctx context.Context, msg Message) error {
	p.logger.DebugContext(ctx, "noop publish", "routing_key", msg.RoutingKey, "size", len(msg.Body))
	return nil
}

// Close is a no-op.
func (p *NoopPublisher) Close() error {
	return nil
}

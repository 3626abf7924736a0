package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rongwang/fintrack-server/internal/utils"
)

// Publisher delivers ledger events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}

// AMQPPublisher publishes events to a durable topic exchange, routed by
// "<routing key>.<event type>".
type AMQPPublisher struct {
	mu         sync.Mutex
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
	logger     *utils.Logger
}

func NewAMQPPublisher(url, exchange, routingKey string, logger *utils.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger.WithComponent("events"),
	}, nil
}

// RoutingKey returns the key an event is published under
func RoutingKey(prefix string, event LedgerEvent) string {
	if prefix == "" {
		return event.Type
	}
	return prefix + "." + event.Type
}

func (p *AMQPPublisher) Publish(ctx context.Context, event LedgerEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := RoutingKey(p.routingKey, event)

	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.OccurredAt,
			MessageId:    event.TransactionID + ":" + event.Type,
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.logger.DebugContext(ctx, "Published ledger event",
		"type", event.Type,
		"transaction_id", event.TransactionID,
		"routing_key", key)
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher drops every event; used when AMQP is not configured
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, LedgerEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// MemoryPublisher keeps published events in memory
type MemoryPublisher struct {
	mu     sync.Mutex
	events []LedgerEvent
	Err    error // returned from Publish when set
}

func (m *MemoryPublisher) Publish(_ context.Context, event LedgerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far
func (m *MemoryPublisher) Events() []LedgerEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LedgerEvent(nil), m.events...)
}

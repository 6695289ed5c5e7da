// README: RabbitMQ publisher for route.quoted events on a fanout exchange.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"routecost/internal/service"
)

var _ service.QuotePublisher = (*QuotePublisher)(nil)

const (
	ExchangeName = "routecost.events"
	QueueName    = "route_quotes"
	EventQuoted  = "route.quoted"
)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type QuotePublisher struct {
	ch channel
}

// NewQuotePublisher opens a channel on conn and declares the exchange, the
// durable quote queue and their binding.
func NewQuotePublisher(conn *amqp.Connection) (*QuotePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &QuotePublisher{ch: ch}, nil
}

type quoteMessage struct {
	Event string        `json:"event"`
	Quote service.Quote `json:"quote"`
}

func (p *QuotePublisher) PublishQuote(ctx context.Context, q service.Quote) error {
	body, err := json.Marshal(quoteMessage{Event: EventQuoted, Quote: q})
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}

	ts := q.QuotedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         EventQuoted,
		Timestamp:    ts,
		Body:         body,
	})
}

func (p *QuotePublisher) Close() error {
	return p.ch.Close()
}

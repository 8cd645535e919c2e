package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitSink publishes domain events to a topic exchange, routing key =
// event type (booking.booked, booking.refunded, ...).
type RabbitSink struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      *zap.Logger
}

var _ Sink = (*RabbitSink)(nil)

func NewRabbitSink(url, exchange string, log *zap.Logger) (*RabbitSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &RabbitSink{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		log:      log.With(zap.String("sink", "rabbit"), zap.String("exchange", exchange)),
	}, nil
}

func (s *RabbitSink) Publish(ctx context.Context, evt DomainEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal domain event: %w", err)
	}

	err = s.ch.PublishWithContext(ctx, s.exchange, evt.Type, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   evt.BookingID,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}

	s.log.Debug("Domain event published",
		zap.String("type", evt.Type),
		zap.String("booking_id", evt.BookingID),
	)
	return nil
}

func (s *RabbitSink) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

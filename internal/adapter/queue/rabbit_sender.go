package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nethra1406/whatsappbot/internal/usecase"
)

const (
	exchangeName = "wa.outbound"
	routingKey   = "wa.outbound.send"
	QueueName    = "wa.outbound.q"
)

// RabbitSender implements usecase.Sender by enqueueing outbound texts onto
// the delivery side channel instead of calling the Cloud API inline. The
// queue is at-most-once by policy: a failed delivery is dropped, never
// requeued, so message loss can never imply order loss or duplicate sends.
type RabbitSender struct {
	ch *amqp.Channel
}

// NewRabbitSender declares the outbound exchange, queue, and binding once
// at startup.
func NewRabbitSender(ch *amqp.Channel) (*RabbitSender, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}

	return &RabbitSender{ch: ch}, nil
}

func (s *RabbitSender) Send(ctx context.Context, to, text string) error {
	body, err := json.Marshal(usecase.OutboundMsg{
		MsgID: uuid.NewString(),
		To:    to,
		Text:  text,
	})
	if err != nil {
		return fmt.Errorf("marshal outbound message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if err := s.ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, pub); err != nil {
		return fmt.Errorf("publish outbound message: %w", err)
	}
	return nil
}

var _ usecase.Sender = (*RabbitSender)(nil)

package queue

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler consumes one delivery from the outbound send queue. A nil
// return acks the delivery; an error nacks it, with requeue behavior
// decided by the Router. Handlers must tolerate redelivered messages.
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}

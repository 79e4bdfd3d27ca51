package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
)

// JSONHandler lifts a typed function into a Handler: the delivery body
// is decoded as T before the call. The outbound consumer registers one
// of these to turn raw queue deliveries back into OutboundMsg values.
// A body that does not decode is an error, so the malformed delivery
// is nacked rather than half-processed.
type JSONHandler[T any] struct {
	HandleFunc func(ctx context.Context, msg T) error
}

func (h JSONHandler[T]) Handle(ctx context.Context, d amqp.Delivery) error {
	var v T
	if err := json.Unmarshal(d.Body, &v); err != nil {
		return err
	}
	return h.HandleFunc(ctx, v)
}

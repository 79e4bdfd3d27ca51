package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/nethra1406/whatsappbot/internal/usecase"
)

// OrderEvents publishes order lifecycle events to a single topic, keyed by
// order id so one order's events stay in partition order.
type OrderEvents struct {
	producer sarama.SyncProducer
	topic    string
}

func NewOrderEvents(producer sarama.SyncProducer, topic string) *OrderEvents {
	return &OrderEvents{producer: producer, topic: topic}
}

func (p *OrderEvents) OrderPlaced(ctx context.Context, msg usecase.OrderPlacedMsg) error {
	return p.publish("OrderPlacedV1", msg.OrderID, msg)
}

func (p *OrderEvents) OrderAssigned(ctx context.Context, msg usecase.OrderAssignedMsg) error {
	return p.publish("OrderAssignedV1", msg.OrderID, msg)
}

func (p *OrderEvents) publish(eventType, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(eventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("produce %s: %w", eventType, err)
	}
	return nil
}

var _ usecase.EventPublisher = (*OrderEvents)(nil)

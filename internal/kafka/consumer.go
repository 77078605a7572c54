package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventHandler receives one decoded ride event. A returned error stops
// the consumer.
type EventHandler func(ctx context.Context, event RideEvent) error

type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer joins the consumer group on a ride-event topic. The
// reader is tuned for small latency-sensitive notification payloads,
// not bulk throughput.
func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			MinBytes:          1,
			MaxBytes:          1 << 20,
			CommitInterval:    time.Second,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume decodes each message into a RideEvent and hands it to the
// handler. Undecodable messages are dropped so a poison message cannot
// wedge the group.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := decodeEvent(msg.Value)
		if err != nil {
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeEvent(value []byte) (RideEvent, error) {
	var event RideEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return RideEvent{}, fmt.Errorf("decode ride event: %w", err)
	}
	if event.Type == "" || event.RideID == "" {
		return RideEvent{}, fmt.Errorf("ride event missing type or ride_id")
	}
	return event, nil
}

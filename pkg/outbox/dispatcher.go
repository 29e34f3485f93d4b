package outbox

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/storelab/checkout/pkg/tracing"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Dispatcher turns outbox rows into Kafka messages keyed by aggregate id.
type Dispatcher struct {
	log      *slog.Logger
	producer Producer
	topic    string
}

func NewDispatcher(log *slog.Logger, producer Producer, topic string) *Dispatcher {
	return &Dispatcher{log: log, producer: producer, topic: topic}
}

func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	// Resume the span context persisted with the event, then propagate it
	// on the message.
	if event.Traceparent != "" {
		ctx = tracing.ExtractKafkaHeaders(ctx, []kafka.Header{
			{Key: tracing.TraceparentHeader, Value: []byte(event.Traceparent)},
		})
	}
	headers := tracing.InjectKafkaHeaders(ctx, []kafka.Header{
		{Key: "event_type", Value: []byte(event.Type)},
	})

	msg := kafka.Message{
		Topic:   d.topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	}
	if err := d.producer.WriteMessages(ctx, msg); err != nil {
		d.log.Error("outbox dispatch failed", "event_id", event.ID, "err", err)
		return err
	}
	d.log.Info("outbox dispatched", "event_id", event.ID, "type", event.Type)
	return nil
}

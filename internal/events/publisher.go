package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bridge-be/internal/logger"
	"bridge-be/internal/order"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	batchTimeout = 10 * time.Millisecond
	writeTimeout = 5 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events as JSON, keyed by order id so every
// event of one order lands on the same partition. Publish is called on the
// request path, so the writer flushes every message right away.
type KafkaPublisher struct {
	w     messageWriter
	topic string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: newWriter(brokers, topic), topic: topic}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    1,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
	}
}

// Publish writes ev once the order change is already applied. The write is
// detached from ctx cancellation and bounded by writeTimeout instead.

func (p *KafkaPublisher) Publish(ctx context.Context, ev order.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := p.w.WriteMessages(wctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.Type, p.topic, err)
	}

	logger.FromCtx(ctx).Debug("order event published",
		zap.String("topic", p.topic),
		zap.String("type", string(ev.Type)),
		zap.String("order_id", ev.OrderID),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Nop discards events. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, order.Event) error { return nil }

func (Nop) Close() error { return nil }

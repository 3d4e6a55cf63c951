package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/local_market/internal/breaker"
	"github.com/Skotchmaster/local_market/internal/metrics"
)

const publishTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w       messageWriter
	breaker *breaker.Breaker
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return newProducer(w)
}

func newProducer(w messageWriter) *Producer {
	return &Producer{w: w, breaker: breaker.New("kafka-order-events")}
}

// Publish keys messages by order id so every event of one order lands on the same partition.
func (p *Producer) Publish(ctx context.Context, ev OrderEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.breaker.Do(func() error {
		return p.w.WriteMessages(ctx, kafka.Message{
			Key:   []byte(ev.OrderID.String()),
			Value: data,
			Time:  ev.OccurredAt,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(ev.Type)},
			},
		})
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(ev.Type), "error").Inc()
		return fmt.Errorf("kafka: publish %s: %w", ev.Type, err)
	}

	metrics.EventsPublished.WithLabelValues(string(ev.Type), "ok").Inc()
	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}

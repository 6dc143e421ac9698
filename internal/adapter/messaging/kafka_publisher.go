// Package messaging publishes price ticks to Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rl1809/storefront/internal/core/domain"
)

// PriceEvent is the Kafka message value for one tick of one session.
type PriceEvent struct {
	SessionID  string            `json:"session_id"`
	Tick       uint64            `json:"tick"`
	ComputedAt time.Time         `json:"computed_at"`
	Prices     map[string]string `json:"prices"`
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher sends every tick keyed by session id, so a session's ticks
// stay ordered within one partition. Closing a session writes a tombstone.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func NewPriceEvent(sessionID string, prices domain.DisplayPrices) PriceEvent {
	ev := PriceEvent{
		SessionID:  sessionID,
		Tick:       prices.Tick,
		ComputedAt: prices.ComputedAt.UTC(),
		Prices:     make(map[string]string, len(prices.Prices)),
	}
	for id, p := range prices.Prices {
		ev.Prices[strconv.FormatInt(int64(id), 10)] = p.StringFixed(2)
	}
	return ev
}

func (k *KafkaPublisher) PublishPrices(ctx context.Context, sessionID string, prices domain.DisplayPrices) error {
	value, err := json.Marshal(NewPriceEvent(sessionID, prices))
	if err != nil {
		return fmt.Errorf("marshal price event: %w", err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(sessionID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write price event: %w", err)
	}
	return nil
}

func (k *KafkaPublisher) CloseSession(ctx context.Context, sessionID string) error {
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(sessionID)}); err != nil {
		return fmt.Errorf("write tombstone: %w", err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// Mock MessageWriter
type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestPublishPrices(t *testing.T) {
	w := &mockWriter{}
	pub := NewKafkaPublisher(w)

	prices := domain.DisplayPrices{
		Tick:       3,
		ComputedAt: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		Prices: map[domain.ProductID]decimal.Decimal{
			1: decimal.RequireFromString("1302.4"),
			5: decimal.RequireFromString("390.01"),
		},
	}
	if err := pub.PublishPrices(context.Background(), "session-1", prices); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(w.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.messages))
	}
	msg := w.messages[0]
	if string(msg.Key) != "session-1" {
		t.Errorf("expected key session-1, got %s", msg.Key)
	}

	var ev PriceEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Tick != 3 || ev.SessionID != "session-1" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.Prices["1"] != "1302.40" || ev.Prices["5"] != "390.01" {
		t.Errorf("unexpected prices: %v", ev.Prices)
	}
}

func TestPublishPrices_WriterError(t *testing.T) {
	w := &mockWriter{err: errors.New("broker unavailable")}
	pub := NewKafkaPublisher(w)

	err := pub.PublishPrices(context.Background(), "session-1", domain.DisplayPrices{})
	if !errors.Is(err, w.err) {
		t.Errorf("expected wrapped writer error, got %v", err)
	}
}

func TestCloseSession_Tombstone(t *testing.T) {
	w := &mockWriter{}
	pub := NewKafkaPublisher(w)

	if err := pub.CloseSession(context.Background(), "session-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.messages) != 1 || string(w.messages[0].Key) != "session-9" || w.messages[0].Value != nil {
		t.Errorf("expected tombstone for session-9, got %+v", w.messages)
	}

	pub.Close()
	if !w.closed {
		t.Error("expected writer closed")
	}
}

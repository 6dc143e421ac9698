package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/adapter/seed"
	"github.com/rl1809/storefront/internal/core/catalog"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// Mock PriceSink
type mockPriceSink struct {
	mu        sync.Mutex
	published map[string][]domain.DisplayPrices
	closed    []string
	err       error
}

func newMockPriceSink() *mockPriceSink {
	return &mockPriceSink{published: make(map[string][]domain.DisplayPrices)}
}

func (m *mockPriceSink) PublishPrices(ctx context.Context, sessionID string, prices domain.DisplayPrices) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[sessionID] = append(m.published[sessionID], prices)
	return m.err
}

func (m *mockPriceSink) CloseSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, sessionID)
	return nil
}

func (m *mockPriceSink) count(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published[sessionID])
}

func newTestSessionService(t *testing.T, cfg SessionConfig, sinks ...port.PriceSink) *SessionService {
	t.Helper()
	cat, err := catalog.New(seed.Products())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc := NewSessionService(cat, cfg, zerolog.Nop(), sinks...)
	t.Cleanup(svc.CloseAll)
	return svc
}

func fastConfig() SessionConfig {
	cfg := DefaultSessionConfig()
	cfg.TickInterval = 5 * time.Millisecond
	return cfg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOpen_DefaultFilter(t *testing.T) {
	svc := newTestSessionService(t, DefaultSessionConfig())

	vs, err := svc.Open(context.Background(), domain.FilterState{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vs.Filter().Category != domain.CategoryAll || vs.Filter().Query != "" {
		t.Errorf("unexpected filter: %+v", vs.Filter())
	}

	products, err := vs.Products()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 5 {
		t.Errorf("expected 5 products, got %d", len(products))
	}
	// no tick yet: display price equals base price
	for _, p := range products {
		if !p.DisplayPrice.Equal(p.Price) {
			t.Errorf("product %d: expected base price before first tick", p.ID)
		}
	}
}

func TestOpen_PreselectedCategory(t *testing.T) {
	svc := newTestSessionService(t, DefaultSessionConfig())

	vs, err := svc.Open(context.Background(), domain.FilterState{Category: "Gaming"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	products, _ := vs.Products()
	if len(products) != 1 || products[0].Name != "Neural Headset Pro" {
		t.Errorf("expected only Neural Headset Pro, got %v", products)
	}
}

func TestOpen_TooManySessions(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.MaxSessions = 2
	svc := newTestSessionService(t, cfg)

	for i := 0; i < 2; i++ {
		if _, err := svc.Open(context.Background(), domain.DefaultFilter()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := svc.Open(context.Background(), domain.DefaultFilter()); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("expected ErrTooManySessions, got %v", err)
	}
}

func TestOpen_OutlivesRequestContext(t *testing.T) {
	svc := newTestSessionService(t, fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	vs, err := svc.Open(ctx, domain.DefaultFilter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()

	waitFor(t, func() bool { return vs.Prices().Tick >= 2 })
}

func TestSession_FilterAndPrices(t *testing.T) {
	svc := newTestSessionService(t, fastConfig())

	vs, _ := svc.Open(context.Background(), domain.DefaultFilter())
	if err := vs.SetQuery("QUANTUM"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, func() bool { return vs.Prices().Tick >= 1 })

	products, _ := vs.Products()
	if len(products) != 1 || products[0].ID != 1 {
		t.Fatalf("expected product 1, got %v", products)
	}
	if !withinBounds(products[0].Price, products[0].DisplayPrice, DefaultFluctuation) {
		t.Errorf("display price %s out of bounds", products[0].DisplayPrice)
	}

	if err := vs.SetCategory("Gaming"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products, _ := vs.Products(); len(products) != 0 {
		t.Errorf("expected no products, got %d", len(products))
	}
	if vs.Filter().Query != "QUANTUM" {
		t.Error("SetCategory must keep the query")
	}
}

func TestClose_StopsTicking(t *testing.T) {
	sink := newMockPriceSink()
	svc := newTestSessionService(t, fastConfig(), sink)

	vs, _ := svc.Open(context.Background(), domain.DefaultFilter())
	waitFor(t, func() bool { return sink.count(vs.ID()) >= 2 })

	if err := svc.Close(vs.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	published := sink.count(vs.ID())
	tick := vs.Prices().Tick

	time.Sleep(30 * time.Millisecond)
	if sink.count(vs.ID()) != published {
		t.Error("sink received prices after close")
	}
	sink.mu.Lock()
	if len(sink.closed) != 1 || sink.closed[0] != vs.ID() {
		t.Errorf("expected sink to be told about the close, got %v", sink.closed)
	}
	sink.mu.Unlock()
	if vs.Prices().Tick != tick {
		t.Error("prices changed after close")
	}
	if _, err := vs.Products(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
	if err := vs.SetQuery("x"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
	if _, err := svc.Get(vs.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.Close(vs.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSinkErrors_DoNotStopSimulator(t *testing.T) {
	sink := newMockPriceSink()
	sink.err = errors.New("redis down")
	svc := newTestSessionService(t, fastConfig(), sink)

	vs, _ := svc.Open(context.Background(), domain.DefaultFilter())
	waitFor(t, func() bool { return sink.count(vs.ID()) >= 3 })
}

func TestReap_IdleSessions(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.IdleTimeout = time.Minute
	svc := newTestSessionService(t, cfg)

	now := time.Now()
	svc.now = func() time.Time { return now }

	idle, _ := svc.Open(context.Background(), domain.DefaultFilter())
	active, _ := svc.Open(context.Background(), domain.DefaultFilter())

	now = now.Add(50 * time.Second)
	if _, err := svc.Get(active.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := svc.Reap(now.Add(20 * time.Second)); n != 1 {
		t.Fatalf("expected 1 reaped session, got %d", n)
	}
	if !idle.Closed() {
		t.Error("expected idle session closed")
	}
	if active.Closed() {
		t.Error("expected active session open")
	}
	if svc.Count() != 1 {
		t.Errorf("expected 1 session, got %d", svc.Count())
	}
}

func TestCloseAll(t *testing.T) {
	svc := newTestSessionService(t, fastConfig())

	var sessions []*ViewSession
	for i := 0; i < 5; i++ {
		vs, _ := svc.Open(context.Background(), domain.DefaultFilter())
		sessions = append(sessions, vs)
	}

	svc.CloseAll()
	if svc.Count() != 0 {
		t.Errorf("expected no sessions, got %d", svc.Count())
	}
	for _, vs := range sessions {
		if !vs.Closed() || !vs.sim.Stopped() {
			t.Error("expected session and simulator stopped")
		}
	}
}

func TestSessions_AreIndependent(t *testing.T) {
	svc := newTestSessionService(t, DefaultSessionConfig())

	a, _ := svc.Open(context.Background(), domain.DefaultFilter())
	b, _ := svc.Open(context.Background(), domain.DefaultFilter())

	_ = a.SetCategory("Drones")
	if b.Filter().Category != domain.CategoryAll {
		t.Error("filter leaked between sessions")
	}
	if a.ID() == b.ID() {
		t.Error("expected distinct session ids")
	}
}

func TestWatchPrices_StopsWithContext(t *testing.T) {
	svc := newTestSessionService(t, DefaultSessionConfig())

	ctx, cancel := context.WithCancel(context.Background())
	var got []domain.DisplayPrices
	done := make(chan error, 1)
	go func() {
		done <- svc.WatchPrices(ctx, 5*time.Millisecond, func(p domain.DisplayPrices) error {
			got = append(got, p)
			if len(got) == 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return")
	}

	if len(got) < 3 {
		t.Fatalf("expected at least 3 snapshots, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Tick <= got[i-1].Tick {
			t.Errorf("ticks out of order: %d after %d", got[i].Tick, got[i-1].Tick)
		}
	}
}

func TestWatchPrices_SendError(t *testing.T) {
	svc := newTestSessionService(t, DefaultSessionConfig())
	sendErr := errors.New("client gone")

	err := svc.WatchPrices(context.Background(), 5*time.Millisecond, func(domain.DisplayPrices) error {
		return sendErr
	})
	if !errors.Is(err, sendErr) {
		t.Errorf("expected send error, got %v", err)
	}
}

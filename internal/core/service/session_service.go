package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/catalog"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrTooManySessions = errors.New("too many sessions")
)

type SessionConfig struct {
	TickInterval time.Duration
	Fluctuation  float64
	IdleTimeout  time.Duration
	ReapInterval time.Duration
	MaxSessions  int
	SinkTimeout  time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TickInterval: DefaultTickInterval,
		Fluctuation:  DefaultFluctuation,
		IdleTimeout:  15 * time.Minute,
		ReapInterval: 30 * time.Second,
		MaxSessions:  10000,
		SinkTimeout:  2 * time.Second,
	}
}

// SessionService owns the open view sessions. Every session runs its own
// price simulator, torn down together with the session.
type SessionService struct {
	catalog *catalog.Catalog
	sinks   []port.PriceSink
	cfg     SessionConfig
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*ViewSession
}

func NewSessionService(cat *catalog.Catalog, cfg SessionConfig, logger zerolog.Logger, sinks ...port.PriceSink) *SessionService {
	return &SessionService{
		catalog:  cat,
		sinks:    sinks,
		cfg:      cfg,
		logger:   logger.With().Str("component", "sessions").Logger(),
		now:      time.Now,
		sessions: make(map[string]*ViewSession),
	}
}

// Open creates a session with the given initial filter and starts its
// simulator. The session outlives ctx; it ends on Close, idle expiry or
// CloseAll.
func (s *SessionService) Open(ctx context.Context, filter domain.FilterState) (*ViewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	vs := &ViewSession{
		id:       id,
		catalog:  s.catalog,
		filter:   filter.Normalize(),
		lastSeen: s.now(),
		now:      s.now,
	}
	vs.sim = NewPriceSimulator(s.catalog.All(),
		WithInterval(s.cfg.TickInterval),
		WithFluctuation(s.cfg.Fluctuation),
		WithOnTick(s.publisher(id)),
	)
	if err := vs.sim.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}

	s.sessions[id] = vs
	s.logger.Info().Str("session_id", id).Str("category", vs.filter.Category).Msg("session_opened")
	return vs, nil
}

func (s *SessionService) publisher(sessionID string) TickFunc {
	if len(s.sinks) == 0 {
		return nil
	}
	return func(ctx context.Context, prices domain.DisplayPrices) {
		for _, sink := range s.sinks {
			sinkCtx, cancel := context.WithTimeout(ctx, s.cfg.SinkTimeout)
			if err := sink.PublishPrices(sinkCtx, sessionID, prices); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Str("session_id", sessionID).Uint64("tick", prices.Tick).Msg("price_publish_failed")
			}
			cancel()
		}
	}
}

// Get returns an open session and marks it as recently used.
func (s *SessionService) Get(id string) (*ViewSession, error) {
	s.mu.Lock()
	vs, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	vs.touch()
	return vs, nil
}

func (s *SessionService) Close(id string) error {
	s.mu.Lock()
	vs, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.release(vs)
	s.logger.Info().Str("session_id", id).Msg("session_closed")
	return nil
}

// release stops the session, then tells the sinks to drop its prices. The
// order matters: once Close returns no further tick reaches a sink.
func (s *SessionService) release(vs *ViewSession) {
	vs.Close()
	for _, sink := range s.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SinkTimeout)
		if err := sink.CloseSession(ctx, vs.ID()); err != nil {
			s.logger.Warn().Err(err).Str("session_id", vs.ID()).Msg("sink_close_failed")
		}
		cancel()
	}
}

func (s *SessionService) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*ViewSession)
	s.mu.Unlock()

	for _, vs := range all {
		s.release(vs)
	}
	s.logger.Info().Int("count", len(all)).Msg("sessions_closed")
}

// Reap closes sessions idle for longer than the idle timeout and returns
// how many were closed.
func (s *SessionService) Reap(now time.Time) int {
	if s.cfg.IdleTimeout <= 0 {
		return 0
	}

	var expired []*ViewSession
	s.mu.Lock()
	for id, vs := range s.sessions {
		if now.Sub(vs.LastSeen()) > s.cfg.IdleTimeout {
			expired = append(expired, vs)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, vs := range expired {
		s.release(vs)
		s.logger.Info().Str("session_id", vs.ID()).Msg("session_expired")
	}
	return len(expired)
}

// Run reaps idle sessions until ctx is done.
func (s *SessionService) Run(ctx context.Context) {
	t := time.NewTicker(s.cfg.ReapInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Reap(s.now())
		}
	}
}

func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// WatchPrices runs a private simulator for the lifetime of ctx and hands
// every snapshot to send. A slow receiver only ever sees the latest
// snapshot. It returns when ctx is done or send fails.
func (s *SessionService) WatchPrices(ctx context.Context, interval time.Duration, send func(domain.DisplayPrices) error) error {
	if interval <= 0 {
		interval = s.cfg.TickInterval
	}

	updates := make(chan domain.DisplayPrices, 1)
	sim := NewPriceSimulator(s.catalog.All(),
		WithInterval(interval),
		WithFluctuation(s.cfg.Fluctuation),
		WithOnTick(func(_ context.Context, prices domain.DisplayPrices) {
			select {
			case <-updates:
			default:
			}
			updates <- prices
		}),
	)
	if err := sim.Start(ctx); err != nil {
		return err
	}
	defer sim.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case prices := <-updates:
			if err := send(prices); err != nil {
				return err
			}
		}
	}
}

// ViewSession is the state of one catalog view: its filter and its own
// price simulator.
type ViewSession struct {
	id      string
	catalog *catalog.Catalog
	sim     *PriceSimulator
	now     func() time.Time

	mu       sync.Mutex
	filter   domain.FilterState
	lastSeen time.Time
	closed   bool
}

func (v *ViewSession) ID() string {
	return v.id
}

func (v *ViewSession) Filter() domain.FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *ViewSession) SetFilter(f domain.FilterState) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrSessionClosed
	}
	v.filter = f.Normalize()
	v.lastSeen = v.now()
	return nil
}

func (v *ViewSession) SetCategory(category string) error {
	f := v.Filter()
	f.Category = category
	return v.SetFilter(f)
}

func (v *ViewSession) SetQuery(query string) error {
	f := v.Filter()
	f.Query = query
	return v.SetFilter(f)
}

// Products returns the filtered products priced with the current snapshot.
func (v *ViewSession) Products() ([]domain.PricedProduct, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrSessionClosed
	}
	filter := v.filter
	v.mu.Unlock()

	prices := v.sim.Prices()
	products := v.catalog.Filter(filter)
	out := make([]domain.PricedProduct, len(products))
	for i, p := range products {
		out[i] = domain.PricedProduct{Product: p, DisplayPrice: prices.PriceOf(p)}
	}
	return out, nil
}

func (v *ViewSession) Prices() domain.DisplayPrices {
	return v.sim.Prices()
}

// Close stops the simulator. It is idempotent.
func (v *ViewSession) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.sim.Stop()
}

func (v *ViewSession) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *ViewSession) LastSeen() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

func (v *ViewSession) touch() {
	v.mu.Lock()
	v.lastSeen = v.now()
	v.mu.Unlock()
}

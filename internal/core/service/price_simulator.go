package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	DefaultTickInterval = 3 * time.Second
	DefaultFluctuation  = 0.05
)

var (
	ErrSimulatorStarted = errors.New("price simulator already started")
	ErrSimulatorStopped = errors.New("price simulator stopped")
)

// TickFunc observes every published snapshot. It runs on the simulator's
// goroutine with the simulator's context, which is cancelled by Stop.
type TickFunc func(ctx context.Context, prices domain.DisplayPrices)

type SimulatorOption func(*PriceSimulator)

func WithInterval(d time.Duration) SimulatorOption {
	return func(s *PriceSimulator) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithFluctuation sets the maximum relative deviation from the base price,
// e.g. 0.05 for ±5%.
func WithFluctuation(ratio float64) SimulatorOption {
	return func(s *PriceSimulator) {
		if ratio > 0 && ratio < 1 {
			s.maxRatio = ratio
		}
	}
}

func WithRand(r *rand.Rand) SimulatorOption {
	return func(s *PriceSimulator) {
		if r != nil {
			s.rng = r
		}
	}
}

func WithOnTick(fn TickFunc) SimulatorOption {
	return func(s *PriceSimulator) {
		s.onTick = fn
	}
}

func WithClock(now func() time.Time) SimulatorOption {
	return func(s *PriceSimulator) {
		if now != nil {
			s.now = now
		}
	}
}

// PriceSimulator periodically derives a fluctuated display price for every
// product. Each tick replaces the whole snapshot; readers never observe a
// partially updated one.
type PriceSimulator struct {
	products []domain.Product
	interval time.Duration
	maxRatio float64
	onTick   TickFunc
	now      func() time.Time

	tickMu sync.Mutex // serializes ticks, guards rng
	rng    *rand.Rand

	current atomic.Pointer[domain.DisplayPrices]

	mu      sync.Mutex
	tick    uint64
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPriceSimulator(products []domain.Product, opts ...SimulatorOption) *PriceSimulator {
	s := &PriceSimulator{
		products: products,
		interval: DefaultTickInterval,
		maxRatio: DefaultFluctuation,
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the tick loop. It stops on Stop or when ctx is done.
func (s *PriceSimulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSimulatorStopped
	}
	if s.started {
		return ErrSimulatorStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
	return nil
}

func (s *PriceSimulator) loop(ctx context.Context) {
	defer close(s.done)

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			return
		case <-t.C:
			if prices, ok := s.Tick(); ok && s.onTick != nil {
				s.onTick(ctx, prices)
			}
		}
	}
}

// Tick computes and publishes one snapshot. It reports false when the
// simulator was stopped before the snapshot could be published.
func (s *PriceSimulator) Tick() (domain.DisplayPrices, bool) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	prices := make(map[domain.ProductID]decimal.Decimal, len(s.products))
	for _, p := range s.products {
		prices[p.ID] = s.fluctuate(p.Price)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return domain.DisplayPrices{}, false
	}

	s.tick++
	snap := &domain.DisplayPrices{
		Tick:       s.tick,
		ComputedAt: s.now(),
		Prices:     prices,
	}
	s.current.Store(snap)
	return *snap, true
}

// fluctuate returns round2(base * (1 + r)) with r drawn from [-max, +max).
func (s *PriceSimulator) fluctuate(base decimal.Decimal) decimal.Decimal {
	r := (s.rng.Float64()*2 - 1) * s.maxRatio
	return base.Mul(decimal.NewFromFloat(1 + r)).Round(2)
}

// Prices returns the latest snapshot, or an empty one before the first tick.
func (s *PriceSimulator) Prices() domain.DisplayPrices {
	if snap := s.current.Load(); snap != nil {
		return *snap
	}
	return domain.DisplayPrices{}
}

func (s *PriceSimulator) markStopped() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// Stop cancels the loop and waits for it to exit. No snapshot is published
// and no TickFunc runs after Stop returns. Calling Stop more than once, or
// on a simulator that never started, is safe.
func (s *PriceSimulator) Stop() {
	s.mu.Lock()
	s.stopped = true
	started, cancel := s.started, s.cancel
	s.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-s.done
}

// Stopped reports whether the simulator no longer publishes.
func (s *PriceSimulator) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *PriceSimulator) Interval() time.Duration {
	return s.interval
}

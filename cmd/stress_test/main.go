package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/adapter/seed"
	"github.com/rl1809/storefront/internal/core/catalog"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/obs"
)

const (
	totalSessions = 500
	tickInterval  = 10 * time.Millisecond
	runFor        = 500 * time.Millisecond
	fluctuation   = 0.05
)

// countingSink counts ticks and remembers every session that was closed, so
// a tick arriving after close can be detected.
type countingSink struct {
	ticks      atomic.Int64
	lateTicks  atomic.Int64
	outOfRange atomic.Int64
	bounds     map[domain.ProductID][2]decimal.Decimal
	closed     sync.Map
}

func (c *countingSink) PublishPrices(ctx context.Context, sessionID string, prices domain.DisplayPrices) error {
	c.ticks.Add(1)
	if _, ok := c.closed.Load(sessionID); ok {
		c.lateTicks.Add(1)
	}
	for id, price := range prices.Prices {
		b := c.bounds[id]
		if price.LessThan(b[0]) || price.GreaterThan(b[1]) {
			c.outOfRange.Add(1)
		}
	}
	return nil
}

func (c *countingSink) CloseSession(ctx context.Context, sessionID string) error {
	c.closed.Store(sessionID, struct{}{})
	return nil
}

func main() {
	logger := obs.NewLogger("warn", true)

	products := seed.Products()
	cat, err := catalog.New(products)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid catalog")
	}

	// Rounding to cents can move a price half a cent past the raw bound.
	half := decimal.RequireFromString("0.005")
	sink := &countingSink{bounds: make(map[domain.ProductID][2]decimal.Decimal)}
	for _, p := range products {
		sink.bounds[p.ID] = [2]decimal.Decimal{
			p.Price.Mul(decimal.NewFromFloat(1 - fluctuation)).Sub(half),
			p.Price.Mul(decimal.NewFromFloat(1 + fluctuation)).Add(half),
		}
	}

	cfg := service.DefaultSessionConfig()
	cfg.TickInterval = tickInterval
	cfg.Fluctuation = fluctuation
	cfg.MaxSessions = totalSessions
	sessions := service.NewSessionService(cat, cfg, logger, sink)

	selectors := cat.Selectors()
	queries := []string{"", "smart", "PRO", "vision", "zzz"}

	var filterErrors atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalSessions; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			vs, err := sessions.Open(context.Background(), domain.FilterState{Category: selectors[n%len(selectors)]})
			if err != nil {
				filterErrors.Add(1)
				return
			}

			deadline := time.Now().Add(runFor)
			for j := 0; time.Now().Before(deadline); j++ {
				if err := vs.SetQuery(queries[j%len(queries)]); err != nil {
					filterErrors.Add(1)
					return
				}
				listed, err := vs.Products()
				if err != nil {
					filterErrors.Add(1)
					return
				}
				want := catalog.Filter(products, vs.Filter().Category, vs.Filter().Query)
				if len(listed) != len(want) {
					filterErrors.Add(1)
				}
				time.Sleep(tickInterval / 2)
			}

			if err := sessions.Close(vs.ID()); err != nil {
				filterErrors.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Give any straggling tick a chance to show up.
	settled := sink.ticks.Load()
	time.Sleep(5 * tickInterval)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Sessions:           %d\n", totalSessions)
	fmt.Printf("Ticks published:    %d\n", settled)
	fmt.Printf("Filter errors:      %d\n", filterErrors.Load())
	fmt.Printf("Out of range:       %d\n", sink.outOfRange.Load())
	fmt.Printf("Ticks after close:  %d\n", sink.lateTicks.Load())
	fmt.Printf("Open sessions:      %d\n", sessions.Count())
	fmt.Printf("Duration:           %v\n", elapsed)
	fmt.Println("==========================================")

	failed := false
	if filterErrors.Load() != 0 {
		fmt.Println("FAIL: filter results diverged from the catalog filter")
		failed = true
	}
	if sink.outOfRange.Load() != 0 {
		fmt.Println("FAIL: display prices left the fluctuation band")
		failed = true
	}
	if sink.lateTicks.Load() != 0 || sink.ticks.Load() != settled {
		fmt.Println("FAIL: ticks arrived after their session closed")
		failed = true
	}
	if sessions.Count() != 0 {
		fmt.Println("FAIL: sessions left open")
		failed = true
	}
	if failed {
		os.Exit(1)
	}
	fmt.Println("PASS: every session filtered, priced and stopped cleanly")
}

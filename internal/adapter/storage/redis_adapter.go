package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	pricesKeyPrefix = "prices:"
	tickField       = "_tick"
	computedField   = "_at"
	defaultPriceTTL = time.Minute
)

// RedisAdapter mirrors each session's display prices into a Redis hash so
// other processes can read what a viewer currently sees.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	if ttl <= 0 {
		ttl = defaultPriceTTL
	}
	return &RedisAdapter{client: client, ttl: ttl}
}

func pricesKey(sessionID string) string {
	return pricesKeyPrefix + sessionID
}

// PublishPrices replaces the session's hash with the snapshot in a single
// transaction, so readers never see two ticks mixed.
func (r *RedisAdapter) PublishPrices(ctx context.Context, sessionID string, prices domain.DisplayPrices) error {
	key := pricesKey(sessionID)

	values := make(map[string]any, len(prices.Prices)+2)
	values[tickField] = prices.Tick
	values[computedField] = prices.ComputedAt.UTC().Format(time.RFC3339Nano)
	for id, price := range prices.Prices {
		values[strconv.FormatInt(int64(id), 10)] = price.StringFixed(2)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish prices: %w", err)
	}
	return nil
}

// LoadPrices reads back the last snapshot published for a session. A
// missing key yields an empty snapshot.
func (r *RedisAdapter) LoadPrices(ctx context.Context, sessionID string) (domain.DisplayPrices, error) {
	fields, err := r.client.HGetAll(ctx, pricesKey(sessionID)).Result()
	if err != nil {
		return domain.DisplayPrices{}, fmt.Errorf("load prices: %w", err)
	}

	out := domain.DisplayPrices{Prices: make(map[domain.ProductID]decimal.Decimal, len(fields))}
	for field, value := range fields {
		switch field {
		case tickField:
			if out.Tick, err = strconv.ParseUint(value, 10, 64); err != nil {
				return domain.DisplayPrices{}, fmt.Errorf("parse tick: %w", err)
			}
		case computedField:
			if out.ComputedAt, err = time.Parse(time.RFC3339Nano, value); err != nil {
				return domain.DisplayPrices{}, fmt.Errorf("parse time: %w", err)
			}
		default:
			ref := domain.ParseProductRef(field)
			id, ok := ref.ID()
			if !ok {
				continue
			}
			price, err := decimal.NewFromString(value)
			if err != nil {
				return domain.DisplayPrices{}, fmt.Errorf("parse price of %s: %w", field, err)
			}
			out.Prices[id] = price
		}
	}
	return out, nil
}

// CloseSession removes the session's hash.
func (r *RedisAdapter) CloseSession(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, pricesKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete prices: %w", err)
	}
	return nil
}

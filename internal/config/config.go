// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the knobs for the servers, the sessions and the optional
// MySQL, Redis and Kafka integrations. Empty integration settings disable
// the integration.
type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	LogLevel        string
	LogPretty       bool
	ShutdownTimeout time.Duration

	PriceTick        time.Duration
	FluctuationPct   float64
	SessionIdle      time.Duration
	SessionReapEvery time.Duration
	MaxSessions      int

	RateLimitRPS   float64
	RateLimitBurst int

	MySQLDSN      string
	RedisAddr     string
	RedisPriceTTL time.Duration
	KafkaBrokers  []string
	KafkaTopic    string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func floatenv(key string, def float64) float64 {
	f, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

func boolenv(key string, def bool) bool {
	b, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return def
	}
	return b
}

func durenvms(key string, defMs int) time.Duration {
	return time.Duration(atoienv(key, defMs)) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

func listenv(key string) []string {
	var out []string
	for _, part := range strings.Split(getenv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		GRPCAddr:        getenv("GRPC_ADDR", ":50051"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogPretty:       boolenv("LOG_PRETTY", false),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT_S", 10),

		PriceTick:        durenvms("PRICE_TICK_MS", 3000),
		FluctuationPct:   floatenv("PRICE_FLUCTUATION_PCT", 5),
		SessionIdle:      durenvs("SESSION_IDLE_TIMEOUT_S", 900),
		SessionReapEvery: durenvs("SESSION_REAP_INTERVAL_S", 30),
		MaxSessions:      atoienv("MAX_SESSIONS", 10000),

		RateLimitRPS:   floatenv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: atoienv("RATE_LIMIT_BURST", 40),

		MySQLDSN:      getenv("MYSQL_DSN", ""),
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPriceTTL: durenvs("REDIS_PRICE_TTL_S", 60),
		KafkaBrokers:  listenv("KAFKA_BROKERS"),
		KafkaTopic:    getenv("KAFKA_PRICE_TOPIC", "storefront.prices"),
	}
}

// Validate rejects values the services cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.PriceTick <= 0 {
		errs = append(errs, errors.New("PRICE_TICK_MS must be positive"))
	}
	if c.FluctuationPct <= 0 || c.FluctuationPct >= 100 {
		errs = append(errs, errors.New("PRICE_FLUCTUATION_PCT must be in (0, 100)"))
	}
	if c.SessionIdle <= 0 || c.SessionReapEvery <= 0 {
		errs = append(errs, errors.New("session timeouts must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_S must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate limit must be positive"))
	}
	return errors.Join(errs...)
}

// Fluctuation returns the fluctuation as a ratio, e.g. 0.05 for 5%.
func (c Config) Fluctuation() float64 {
	return c.FluctuationPct / 100
}

// Package initializer builds the runtime dependencies from configuration.
package initializer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zezva802/Banking-system/infra"
	infra_cache "github.com/zezva802/Banking-system/infra/cache"
	infra_eventbus "github.com/zezva802/Banking-system/infra/eventbus"
	"github.com/zezva802/Banking-system/infra/provider/exchangerateapi"
	infra_repository "github.com/zezva802/Banking-system/infra/repository"
	"github.com/zezva802/Banking-system/pkg/app"
	"github.com/zezva802/Banking-system/pkg/cache"
	"github.com/zezva802/Banking-system/pkg/config"
	"github.com/zezva802/Banking-system/pkg/eventbus"
	"github.com/zezva802/Banking-system/pkg/service/exchange"
	"gorm.io/gorm"
)

const (
	driverMemory = "memory"
	driverRedis  = "redis"
	driverKafka  = "kafka"
)

// Deps is the full dependency set, including the handles the CLI needs.
type Deps struct {
	*app.Deps
	DB        *gorm.DB
	Exchange  *exchange.Converter
	RateCache cache.RateCache
}

// InitializeDependencies opens the database, the optional Redis client, the
// rate cache and converter, and the event bus. On error everything opened
// so far is closed.
func InitializeDependencies(cfg *config.App) (deps *Deps, err error) {
	logger := SetupLogger(cfg.Log)
	deps = &Deps{Deps: &app.Deps{Logger: logger}}
	defer func() {
		if err != nil {
			_ = deps.Close()
			deps = nil
		}
	}()

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return deps, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return deps, err
	}
	deps.Closers = append(deps.Closers, sqlDB)
	deps.DB = db
	deps.Uow = infra_repository.NewUoW(db)

	var client *redis.Client
	if needsRedis(cfg) {
		client, err = newRedisClient(cfg.Redis, logger)
		if err != nil {
			return deps, err
		}
		deps.Closers = append(deps.Closers, client)
	}

	deps.RateCache, err = initRateCache(cfg.ExchangeRateCache, client, logger)
	if err != nil {
		return deps, err
	}

	timeout := 10 * time.Second
	if cfg.ExchangeRateAPI != nil && cfg.ExchangeRateAPI.HTTPTimeout > 0 {
		timeout = cfg.ExchangeRateAPI.HTTPTimeout
	}
	source := exchangerateapi.New(cfg.ExchangeRateAPI, &http.Client{Timeout: timeout}, logger)
	deps.Exchange = exchange.New(source, deps.RateCache, cfg.ExchangeRateCache, logger)
	deps.Converter = deps.Exchange

	bus, err := initEventBus(cfg.EventBus, client, logger)
	if err != nil {
		return deps, err
	}
	if c, ok := bus.(io.Closer); ok {
		deps.Closers = append(deps.Closers, c)
	}
	deps.EventBus = bus

	logger.Info("Dependencies initialized",
		"rate_cache", driverOf(cfg.ExchangeRateCache),
		"event_bus", busDriverOf(cfg.EventBus))
	return deps, nil
}

func driverOf(cfg *config.ExchangeRateCache) string {
	if cfg == nil || cfg.Driver == "" {
		return driverMemory
	}
	return strings.ToLower(cfg.Driver)
}

func busDriverOf(cfg *config.EventBus) string {
	if cfg == nil || cfg.Driver == "" {
		return driverMemory
	}
	return strings.ToLower(cfg.Driver)
}

func needsRedis(cfg *config.App) bool {
	return driverOf(cfg.ExchangeRateCache) == driverRedis || busDriverOf(cfg.EventBus) == driverRedis
}

// newRedisClient parses the URL and pings once so a bad address fails at
// startup rather than on the first request.
func newRedisClient(cfg *config.Redis, logger *slog.Logger) (*redis.Client, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("redis driver selected but REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("Connected to Redis", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}

func initRateCache(cfg *config.ExchangeRateCache, client *redis.Client, logger *slog.Logger) (cache.RateCache, error) {
	switch driverOf(cfg) {
	case driverMemory:
		return infra_cache.NewMemoryCache(), nil
	case driverRedis:
		if client == nil {
			return nil, fmt.Errorf("redis rate cache requires a redis client")
		}
		return infra_cache.NewRedisCache(client, cfg.Prefix, logger), nil
	default:
		return nil, fmt.Errorf("unknown rate cache driver %q", cfg.Driver)
	}
}

func initEventBus(cfg *config.EventBus, client *redis.Client, logger *slog.Logger) (eventbus.Bus, error) {
	switch busDriverOf(cfg) {
	case driverMemory:
		return infra_eventbus.NewWithMemory(logger), nil
	case driverRedis:
		return infra_eventbus.NewWithRedis(client, cfg.RedisStream, logger)
	case driverKafka:
		return infra_eventbus.NewWithKafka(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	default:
		return nil, fmt.Errorf("unknown event bus driver %q", cfg.Driver)
	}
}

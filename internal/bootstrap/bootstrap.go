// Package bootstrap assembles the pricing service from configuration.
package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Omri-Jukin/Portfolio-sub003/adapters/cache"
	"github.com/Omri-Jukin/Portfolio-sub003/adapters/hclmodel"
	"github.com/Omri-Jukin/Portfolio-sub003/adapters/postgres"
	"github.com/Omri-Jukin/Portfolio-sub003/core/pricing"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/config"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

// Runtime is a ready service plus the resources it holds open
type Runtime struct {
	Service *pricing.Service

	// Source names where the model came from (file path or "postgres")
	Source string

	closers []func() error
}

// Close releases every resource opened by New
func (r *Runtime) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// New opens the configured model source and cache and builds the service.
// A database DSN takes precedence over a model file.
func New(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	logger := logging.Named("bootstrap")
	rt := &Runtime{}

	source, discounts, err := rt.openSource(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	opts := []pricing.Option{}
	if c, err := rt.openCache(ctx, cfg); err != nil {
		rt.Close()
		return nil, err
	} else if c != nil {
		opts = append(opts, pricing.WithCache(c))
	}

	svc, err := pricing.NewService(ctx, source, discounts, opts...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Service = svc

	logger.Info("pricing service ready",
		zap.String("source", rt.Source),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
	)
	return rt, nil
}

func (rt *Runtime) openSource(ctx context.Context, cfg *config.Config) (pricing.ModelSource, pricing.DiscountRepository, error) {
	if cfg.Database.DSN != "" {
		store, err := postgres.Open(ctx, cfg.Database.DSN, cfg.Database.MaxOpenConns)
		if err != nil {
			return nil, nil, err
		}
		rt.closers = append(rt.closers, store.Close)
		if cfg.Database.Migrate {
			if err := store.Migrate(ctx); err != nil {
				return nil, nil, err
			}
		}
		rt.Source = "postgres"
		return store, store, nil
	}

	// decoded on every reload so edits to the file are picked up
	file := hclmodel.NewFileSource(newLoader(cfg), cfg.Pricing.ModelPath)
	rt.Source = file.Path()
	return file, file, nil
}

func (rt *Runtime) openCache(ctx context.Context, cfg *config.Config) (pricing.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	if cfg.Cache.Backend == config.BackendRedis {
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		}, ttl)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, c.Close)
		return c, nil
	}

	return pricing.NewMemoryCache(&pricing.CachePolicy{TTL: ttl, MaxEntries: cfg.Cache.MaxEntries}), nil
}

// LoadFile decodes a pricing file with the configured variables and currency
func LoadFile(cfg *config.Config, path string) (*hclmodel.Bundle, error) {
	return newLoader(cfg).LoadFile(path)
}

func newLoader(cfg *config.Config) *hclmodel.Loader {
	return hclmodel.NewLoader(
		hclmodel.WithVariables(cfg.Pricing.Variables),
		hclmodel.WithDefaultCurrency(cfg.Pricing.DefaultCurrency),
	)
}

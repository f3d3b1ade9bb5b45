package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/clevrprog"
	"github.com/aretw0/clevrprog/internal/config"
	"github.com/aretw0/clevrprog/pkg/adapters/file"
	"github.com/aretw0/clevrprog/pkg/adapters/memory"
	"github.com/aretw0/clevrprog/pkg/adapters/redis"
	"github.com/aretw0/clevrprog/pkg/catalog"
	"github.com/aretw0/clevrprog/pkg/corpus"
	"github.com/aretw0/clevrprog/pkg/ports"
	"github.com/aretw0/clevrprog/pkg/rewrite"
)

// redisPingTimeout bounds the connectivity check of the Redis cache.
const redisPingTimeout = 2 * time.Second

// LoadCatalog loads the ontology at path, or the built-in one when path
// is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

// NewCache builds the configured result cache. It returns a nil cache for
// the "none" backend. The returned closer is never nil.
func NewCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (ports.ResultCache, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "", config.CacheNone:
		return nil, noop, nil
	case config.CacheMemory:
		return memory.NewStore(), noop, nil
	case config.CacheFile:
		store := file.New(cfg.Dir)
		logger.Debug("File cache enabled", "dir", store.Dir)
		return store, noop, nil
	case config.CacheRedis:
		opts := []redis.Option{redis.WithTTL(cfg.TTL)}
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close()
			return nil, noop, fmt.Errorf("redis cache at %s: %w", cfg.RedisAddr, err)
		}
		logger.Debug("Redis cache connected", "addr", cfg.RedisAddr, "ttl", cfg.TTL)
		return store, store.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// PipelineOptions turns the configuration into pipeline options.
func PipelineOptions(cfg config.Config, logger *slog.Logger) []clevrprog.Option {
	opts := []clevrprog.Option{
		clevrprog.WithLogger(logger),
		clevrprog.WithAttributeFactoring(cfg.FactorAttrs),
	}
	if cfg.ChainPrefix != "" {
		opts = append(opts, clevrprog.WithChainPredicate("prefix:"+cfg.ChainPrefix, rewrite.HasPrefix(cfg.ChainPrefix)))
	}
	if len(cfg.FactorFamilies) > 0 || len(cfg.BareFamilies) > 0 {
		opts = append(opts, clevrprog.WithFactorer(rewrite.NewFactorer(cfg.FactorFamilies, cfg.BareFamilies)))
	}
	return opts
}

// NewPipeline builds a pipeline from cfg over types.
func NewPipeline(cfg config.Config, types rewrite.TypeSource, logger *slog.Logger, extra ...clevrprog.Option) (*clevrprog.Pipeline, error) {
	opts := append(PipelineOptions(cfg, logger), extra...)
	p, err := clevrprog.New(types, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing pipeline: %w", err)
	}
	return p, nil
}

// NewDriver builds a corpus driver from cfg.
func NewDriver(cfg config.Config, conv ports.Converter, logger *slog.Logger) (*corpus.Driver, error) {
	policy, err := corpus.ParseErrorPolicy(cfg.OnError)
	if err != nil {
		return nil, err
	}
	return &corpus.Driver{
		Converter: conv,
		Limit:     cfg.Limit,
		MaxLen:    cfg.MaxLen,
		Workers:   cfg.Workers,
		OnError:   policy,
		Logger:    logger,
	}, nil
}

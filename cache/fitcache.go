package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/enms-tools/enbfit/compress"
	"github.com/enms-tools/enbfit/errs"
	"github.com/enms-tools/enbfit/internal/options"
	"github.com/enms-tools/enbfit/internal/pool"
)

// DefaultTTL is the lifetime of cached analyses.
const DefaultTTL = 24 * time.Hour

type config struct {
	ttl         time.Duration
	compression compress.Type
	log         *zap.Logger
	registerer  prometheus.Registerer
}

// Option configures New.
type Option = options.Option[*config]

// WithTTL sets the entry lifetime. Zero stores entries without expiry.
func WithTTL(ttl time.Duration) Option {
	return options.New(func(c *config) error {
		if ttl < 0 {
			return fmt.Errorf("ttl must not be negative, got %s", ttl)
		}
		c.ttl = ttl

		return nil
	})
}

// WithCompression sets the codec of newly written entries.
func WithCompression(t compress.Type) Option {
	return options.New(func(c *config) error {
		if _, err := compress.GetCodec(t); err != nil {
			return err
		}
		c.compression = t

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return options.NoError(func(c *config) {
		if log != nil {
			c.log = log
		}
	})
}

// WithRegisterer registers the cache metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return options.NoError(func(c *config) {
		c.registerer = reg
	})
}

// FitCache memoizes analysis results of type T in a Store.
//
// Values are JSON encoded and compressed with compress.Seal. Store failures
// are logged and counted but never fail a request: the value is computed
// instead. Concurrent misses on the same key compute once.
type FitCache[T any] struct {
	store       Store
	ttl         time.Duration
	compression compress.Type
	log         *zap.Logger
	metrics     *Metrics
	group       singleflight.Group
}

// New creates a FitCache over store.
func New[T any](store Store, opts ...Option) (*FitCache[T], error) {
	if store == nil {
		return nil, errors.New("cache store is nil")
	}

	cfg, err := options.Build(config{
		ttl:         DefaultTTL,
		compression: compress.S2,
		log:         zap.NewNop(),
	}, opts...)
	if err != nil {
		return nil, err
	}

	return &FitCache[T]{
		store:       store,
		ttl:         cfg.ttl,
		compression: cfg.compression,
		log:         cfg.log,
		metrics:     NewMetrics(cfg.registerer),
	}, nil
}

// Metrics returns the cache counters.
func (c *FitCache[T]) Metrics() *Metrics {
	return c.metrics
}

// GetOrCompute returns the value cached under key, or runs compute and
// stores its result. Errors from compute are returned as-is and not cached.
func (c *FitCache[T]) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key)
	if err == nil {
		c.metrics.Hits.Inc()
		return v, nil
	}
	if !errors.Is(err, errs.ErrCacheMiss) {
		c.metrics.Errors.WithLabelValues("get").Inc()
		c.log.Warn("cache read failed, recomputing", zap.String("key", key), zap.Error(err))
	}
	c.metrics.Misses.Inc()

	res, err, shared := c.group.Do(key, func() (any, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		if err := c.Set(ctx, key, v); err != nil {
			c.metrics.Errors.WithLabelValues("set").Inc()
			c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}

		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if shared {
		c.log.Debug("shared concurrent computation", zap.String("key", key))
	}

	out, _ := res.(T)

	return out, nil
}

// Get returns the value under key or errs.ErrCacheMiss.
func (c *FitCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	frame, err := c.store.Get(ctx, key)
	if err != nil {
		return zero, err
	}

	payload, err := compress.Open(frame)
	if err != nil {
		return zero, fmt.Errorf("decode cache entry %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return zero, fmt.Errorf("decode cache entry %s: %w", key, err)
	}

	return v, nil
}

// Set stores v under key.
func (c *FitCache[T]) Set(ctx context.Context, key string, v T) error {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	frame, stats, err := compress.Seal(c.compression, buf.Bytes())
	if err != nil {
		return err
	}
	c.metrics.PayloadBytes.Observe(float64(stats.CompressedSize))

	return c.store.Set(ctx, key, frame, c.ttl)
}

// Invalidate removes every cached analysis of a baseline.
func (c *FitCache[T]) Invalidate(ctx context.Context, baselineID string) (int, error) {
	n, err := c.store.DeletePrefix(ctx, KeyPrefix(baselineID))
	if err != nil {
		c.metrics.Errors.WithLabelValues("invalidate").Inc()
		return n, err
	}

	c.log.Debug("invalidated cached analyses", zap.String("baseline", baselineID), zap.Int("count", n))

	return n, nil
}

// Close closes the underlying store.
func (c *FitCache[T]) Close() error {
	return c.store.Close()
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/enms-tools/enbfit/errs"
)

// scanBatch is the COUNT hint of SCAN and the DEL batch size of DeletePrefix.
const scanBatch = 256

// RedisStore is a Store backed by Redis, shared between processes.
type RedisStore struct {
	client *redis.Client
	log    *zap.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to url (redis://[:password@]host:port/db) and pings it.
func NewRedisStore(ctx context.Context, url string, log *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	log.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))

	return &RedisStore{client: client, log: log}, nil
}

// NewRedisStoreFromClient wraps an existing client. The store owns the client
// and closes it on Close.
func NewRedisStoreFromClient(client *redis.Client, log *zap.Logger) *RedisStore {
	if log == nil {
		log = zap.NewNop()
	}

	return &RedisStore{client: client, log: log}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}

// DeletePrefix walks the keyspace with SCAN and deletes matches in batches.
// Keys written concurrently with the scan may survive.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := s.client.Scan(ctx, cursor, escapeGlob(prefix)+"*", scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan %s*: %w", prefix, err)
		}

		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	s.log.Debug("deleted cache entries", zap.String("prefix", prefix), zap.Int("count", removed))

	return removed, nil
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

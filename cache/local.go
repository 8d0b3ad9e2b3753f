package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/enms-tools/enbfit/errs"
	"github.com/enms-tools/enbfit/internal/options"
)

// DefaultCleanupInterval is how often LocalStore sweeps expired entries.
const DefaultCleanupInterval = time.Minute

type entry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

type localConfig struct {
	cleanupInterval time.Duration
	log             *zap.Logger
	now             func() time.Time
}

// LocalOption configures NewLocalStore.
type LocalOption = options.Option[*localConfig]

// WithCleanupInterval sets the sweep interval. Zero disables the background sweep;
// expired entries are then only dropped when read.
func WithCleanupInterval(d time.Duration) LocalOption {
	return options.New(func(c *localConfig) error {
		if d < 0 {
			return fmt.Errorf("cleanup interval must not be negative, got %s", d)
		}
		c.cleanupInterval = d

		return nil
	})
}

// WithLocalLogger sets the logger of the store.
func WithLocalLogger(log *zap.Logger) LocalOption {
	return options.NoError(func(c *localConfig) {
		if log != nil {
			c.log = log
		}
	})
}

// withClock replaces time.Now in tests.
func withClock(now func() time.Time) LocalOption {
	return options.NoError(func(c *localConfig) {
		c.now = now
	})
}

// LocalStore is an in-process Store backed by a map.
type LocalStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	log     *zap.Logger
	now     func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates an in-process store and starts its cleanup loop.
// Close stops the loop.
func NewLocalStore(opts ...LocalOption) (*LocalStore, error) {
	cfg, err := options.Build(localConfig{
		cleanupInterval: DefaultCleanupInterval,
		log:             zap.NewNop(),
		now:             time.Now,
	}, opts...)
	if err != nil {
		return nil, err
	}

	s := &LocalStore{
		entries: make(map[string]entry),
		log:     cfg.log,
		now:     cfg.now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if cfg.cleanupInterval > 0 {
		go s.cleanupLoop(cfg.cleanupInterval)
	} else {
		close(s.done)
	}

	return s, nil
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, errs.ErrCacheMiss
	}

	if e.expired(s.now()) {
		s.mu.Lock()
		if cur, still := s.entries[key]; still && cur.expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()

		return nil, errs.ErrCacheMiss
	}

	return e.value, nil
}

func (s *LocalStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()

	return nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	return nil
}

func (s *LocalStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
			n++
		}
	}

	return n, nil
}

// Len returns the number of stored entries, expired ones included until swept.
func (s *LocalStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Close stops the cleanup loop. It is safe to call more than once.
func (s *LocalStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	<-s.done

	return nil
}

func (s *LocalStore) cleanupLoop(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.log.Debug("removed expired cache entries", zap.Int("count", n))
			}
		}
	}
}

// sweep removes expired entries and returns how many were removed.
func (s *LocalStore) sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			n++
		}
	}

	return n
}

package baseline

import (
	"context"
	"fmt"
	"sync"

	"github.com/enms-tools/enbfit/errs"
)

// Source supplies baselines by identifier. It stands in for the external
// data service the dashboard reads baselines from.
type Source interface {
	// Load returns the baseline with the given id, or an error wrapping
	// errs.ErrBaselineNotFound.
	Load(ctx context.Context, id string) (*Baseline, error)
}

// MemorySource is a Source backed by a map. It is safe for concurrent use.
type MemorySource struct {
	mu        sync.RWMutex
	baselines map[string]*Baseline
}

var _ Source = (*MemorySource)(nil)

// NewMemorySource returns a source holding the given baselines.
func NewMemorySource(baselines ...*Baseline) *MemorySource {
	s := &MemorySource{baselines: make(map[string]*Baseline, len(baselines))}
	for _, b := range baselines {
		s.baselines[b.ID] = b
	}

	return s
}

// Put adds or replaces a baseline.
func (s *MemorySource) Put(b *Baseline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baselines[b.ID] = b
}

// Load implements Source.
func (s *MemorySource) Load(ctx context.Context, id string) (*Baseline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.baselines[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrBaselineNotFound, id)
	}

	return b, nil
}

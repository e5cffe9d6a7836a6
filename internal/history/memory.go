package history

import (
	"context"
	"sort"
	"sync"

	"github.com/psantana5/vaultmod/internal/report"
)

// MemoryStore keeps runs in process memory
type MemoryStore struct {
	runs map[string]*report.Result
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*report.Result)}
}

// SaveRun stores a copy of r; saving an existing run id replaces it
func (s *MemoryStore) SaveRun(_ context.Context, r *report.Result) error {
	cp := *r
	cp.Applied = append([]report.Outcome(nil), r.Applied...)
	cp.Failures = append([]report.Failure(nil), r.Failures...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.RunID] = &cp
	return nil
}

// GetRun returns a stored run
func (s *MemoryStore) GetRun(_ context.Context, runID string) (*report.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// ListRuns returns up to limit runs, newest first
func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]RunSummary, error) {
	s.mu.RLock()
	out := make([]RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, summarize(r))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close implements Store
func (s *MemoryStore) Close() error { return nil }

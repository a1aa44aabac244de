package usecases

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// RunHistory keeps the most recent run results in memory. Results are never
// persisted; the oldest run is evicted once capacity is reached.
type RunHistory struct {
	runs *lru.Cache[string, *domain.RunResult]
}

// NewRunHistory creates a RunHistory holding up to size runs.
func NewRunHistory(size int) (*RunHistory, error) {
	if size <= 0 {
		size = 16
	}
	cache, err := lru.New[string, *domain.RunResult](size)
	if err != nil {
		return nil, fmt.Errorf("create run history: %w", err)
	}
	return &RunHistory{runs: cache}, nil
}

// Add records a finished run.
func (h *RunHistory) Add(result *domain.RunResult) {
	h.runs.Add(result.ID, result)
}

// Get returns the run with the given id.
func (h *RunHistory) Get(id string) (*domain.RunResult, error) {
	if r, ok := h.runs.Peek(id); ok {
		return r, nil
	}
	return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
}

// Latest returns the most recently added run.
func (h *RunHistory) Latest() (*domain.RunResult, error) {
	keys := h.runs.Keys()
	if len(keys) == 0 {
		return nil, fmt.Errorf("latest run: %w", domain.ErrNotFound)
	}
	return h.Get(keys[len(keys)-1])
}

// List returns summaries of the retained runs, newest first.
func (h *RunHistory) List() []domain.RunSummary {
	keys := h.runs.Keys()
	out := make([]domain.RunSummary, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if r, ok := h.runs.Peek(keys[i]); ok {
			out = append(out, r.Summary())
		}
	}
	return out
}

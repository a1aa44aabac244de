package usecases

import (
	"context"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// RunService starts corridor runs and serves their results.
type RunService struct {
	engine  *MigrationEngine
	history *RunHistory
}

// NewRunService creates a new RunService.
func NewRunService(engine *MigrationEngine, history *RunHistory) *RunService {
	return &RunService{engine: engine, history: history}
}

// Start runs the engine synchronously and records the result.
func (s *RunService) Start(ctx context.Context, req domain.RunRequest) (*domain.RunResult, error) {
	result, err := s.engine.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	s.history.Add(result)
	return result, nil
}

// Record stores a result produced elsewhere, e.g. by a workflow.
func (s *RunService) Record(result *domain.RunResult) {
	s.history.Add(result)
}

// Get returns a retained run by id.
func (s *RunService) Get(id string) (*domain.RunResult, error) {
	return s.history.Get(id)
}

// Latest returns the most recent run.
func (s *RunService) Latest() (*domain.RunResult, error) {
	return s.history.Latest()
}

// List returns summaries of retained runs, newest first.
func (s *RunService) List() []domain.RunSummary {
	return s.history.List()
}

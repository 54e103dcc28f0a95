package storage

import (
	"context"
	"errors"

	"treasurehunt/internal/model"
)

var ErrNotInitialized = errors.New("store is not initialized")

// Store persists the outcome of finished runs. Populations are not part of
// the contract.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns runs newest first; limit <= 0 returns all of them.
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	SaveSolution(ctx context.Context, solution model.SolutionRecord) error
	GetSolution(ctx context.Context, runID string) (model.SolutionRecord, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
}

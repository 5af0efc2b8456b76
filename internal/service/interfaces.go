// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/flcheck/internal/model"
)

// RunStore defines the contract for the run history persistence layer.
type RunStore interface {
	// Run operations
	SaveRun(ctx context.Context, run model.RunSummary, outcomes []model.MatchOutcome, findings []model.Finding) error
	GetRun(ctx context.Context, id string) (*model.RunSummary, error)
	ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error)
	GetRunOutcomes(ctx context.Context, id string) ([]model.MatchOutcome, error)
	GetRunFindings(ctx context.Context, id string) ([]model.Finding, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

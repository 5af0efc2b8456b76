package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/flcheck/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrInvalidRun   = errors.New("invalid run")
	ErrRunNotFound  = errors.New("run not found")
	ErrInvalidLimit = errors.New("limit must not be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRun validates a run header.
func validateRun(run model.RunSummary) error {
	if run.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRun)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidRun)
	}
	if run.Status == "" {
		return fmt.Errorf("%w: missing status", ErrInvalidRun)
	}
	if run.CandidateCount < 0 || run.ValidCount < 0 || run.ValidCount > run.CandidateCount {
		return fmt.Errorf("%w: counts %d/%d", ErrInvalidRun, run.ValidCount, run.CandidateCount)
	}
	return nil
}

// Package testutil provides test helpers shared across flcheck packages.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/storage"
)

// SetupTestDB creates a migrated in-memory run store that is closed when the test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	db, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// RunBuilder builds run fixtures.
type RunBuilder struct {
	run      model.RunSummary
	outcomes []model.MatchOutcome
	findings []model.Finding
}

// NewRun starts a completed run fixture with the given ID.
func NewRun(id string) *RunBuilder {
	return &RunBuilder{run: model.RunSummary{
		ID:         id,
		Technology: "B",
		Country:    "IT",
		Status:     "completed",
		StartedAt:  time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}}
}

// StartedAt sets the start time.
func (b *RunBuilder) StartedAt(t time.Time) *RunBuilder {
	b.run.StartedAt = t
	return b
}

// WithStatus sets the run status.
func (b *RunBuilder) WithStatus(status string) *RunBuilder {
	b.run.Status = status
	return b
}

// WithOutcome appends an outcome for code.
func (b *RunBuilder) WithOutcome(code string, status model.MatchStatus) *RunBuilder {
	o := model.MatchOutcome{
		Code:   code,
		Status: status,
		Index:  len(b.outcomes),
		Length: strings.Count(code, model.LevelSeparator) + 1,
	}
	switch status {
	case model.StatusValid:
		o.Pattern = ".*"
		b.run.ValidCount++
	case model.StatusMultipleMatch:
		o.Patterns = []string{".*", "[A-Z-]+"}
		o.Message = fmt.Sprintf("%q matches 2 patterns", code)
	default:
		o.Message = fmt.Sprintf("%q is %s", code, status)
	}
	b.outcomes = append(b.outcomes, o)
	b.run.CandidateCount++
	return b
}

// WithFinding appends a finding.
func (b *RunBuilder) WithFinding(kind model.FindingKind, subject, message string) *RunBuilder {
	b.findings = append(b.findings, model.Finding{Kind: kind, Subject: subject, Message: message})
	return b
}

// Build returns the run header, outcomes and findings.
func (b *RunBuilder) Build() (model.RunSummary, []model.MatchOutcome, []model.Finding) {
	return b.run, b.outcomes, b.findings
}

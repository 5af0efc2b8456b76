package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/flcheck/internal/model"
)

// DefaultRunLimit is the number of runs ListRuns returns when limit is 0.
const DefaultRunLimit = 20

// SaveRun stores a run with its outcomes and findings in one transaction.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run model.RunSummary, outcomes []model.MatchOutcome, findings []model.Finding) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, technology, country, started_at, candidate_count, valid_count,
			status, record_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Technology, run.Country, run.StartedAt.UTC(), run.CandidateCount, run.ValidCount,
		run.Status, run.RecordCount, run.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := saveOutcomesTx(ctx, tx, run.ID, outcomes); err != nil {
		return err
	}
	if err := saveFindingsTx(ctx, tx, run.ID, findings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug("Saved run",
		"run_id", run.ID,
		"outcomes", len(outcomes),
		"findings", len(findings))
	return nil
}

func saveOutcomesTx(ctx context.Context, tx *sql.Tx, runID string, outcomes []model.MatchOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_outcomes (run_id, line, code, length, status, pattern, message, patterns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, o := range outcomes {
		var patterns sql.NullString
		if len(o.Patterns) > 0 {
			data, err := json.Marshal(o.Patterns)
			if err != nil {
				return fmt.Errorf("failed to encode patterns of %q: %w", o.Code, err)
			}
			patterns = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, o.Index+1, o.Code, o.Length, string(o.Status),
			o.Pattern, o.Message, patterns); err != nil {
			return fmt.Errorf("failed to insert outcome for %q: %w", o.Code, err)
		}
	}
	return nil
}

func saveFindingsTx(ctx context.Context, tx *sql.Tx, runID string, findings []model.Finding) error {
	for _, f := range findings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_findings (run_id, kind, subject, message) VALUES (?, ?, ?, ?)`,
			runID, string(f.Kind), f.Subject, f.Message); err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}
	return nil
}

const runColumns = `id, technology, country, started_at, candidate_count, valid_count, status,
	record_count, duration_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.RunSummary, error) {
	var (
		run        model.RunSummary
		startedAt  time.Time
		durationMS int64
	)
	if err := row.Scan(&run.ID, &run.Technology, &run.Country, &startedAt, &run.CandidateCount,
		&run.ValidCount, &run.Status, &run.RecordCount, &durationMS); err != nil {
		return model.RunSummary{}, err
	}
	run.StartedAt = startedAt
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}

// GetRun returns a stored run header.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.RunSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first. A limit of 0 means DefaultRunLimit.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = DefaultRunLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunOutcomes returns the outcomes of a run in input order.
func (s *SQLiteStorage) GetRunOutcomes(ctx context.Context, id string) ([]model.MatchOutcome, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT line, code, length, status, COALESCE(pattern, ''), COALESCE(message, ''), patterns
		FROM run_outcomes WHERE run_id = ? ORDER BY line`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var outcomes []model.MatchOutcome
	for rows.Next() {
		var (
			o        model.MatchOutcome
			line     int
			status   string
			patterns sql.NullString
		)
		if err := rows.Scan(&line, &o.Code, &o.Length, &status, &o.Pattern, &o.Message, &patterns); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Index = line - 1
		o.Status = model.MatchStatus(status)
		if patterns.Valid {
			if err := json.Unmarshal([]byte(patterns.String), &o.Patterns); err != nil {
				return nil, fmt.Errorf("failed to decode patterns of %q: %w", o.Code, err)
			}
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// GetRunFindings returns the findings of a run in the order they were reported.
func (s *SQLiteStorage) GetRunFindings(ctx context.Context, id string) ([]model.Finding, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, subject, message FROM run_findings WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var findings []model.Finding
	for rows.Next() {
		var (
			f    model.Finding
			kind string
		)
		if err := rows.Scan(&kind, &f.Subject, &f.Message); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Kind = model.FindingKind(kind)
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

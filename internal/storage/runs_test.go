package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/storage"
	"github.com/Veraticus/flcheck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_SaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	run, outcomes, findings := testutil.NewRun("run-1").
		WithOutcome("ITB", model.StatusValid).
		WithOutcome("ITB-B001", model.StatusMultipleMatch).
		WithOutcome("ITB-B001-XX", model.StatusNoMatch).
		WithFinding(model.FindingMissingParent, "ITB-B002", "parent missing").
		WithFinding(model.FindingDuplicateTemplate, "PPP", "dropped").
		Build()
	run.RecordCount = 3
	run.Duration = 1500 * time.Millisecond

	require.NoError(t, db.SaveRun(ctx, run, outcomes, findings))

	got, err := db.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Technology)
	assert.Equal(t, "IT", got.Country)
	assert.Equal(t, 3, got.CandidateCount)
	assert.Equal(t, 1, got.ValidCount)
	assert.Equal(t, 3, got.RecordCount)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))

	gotOutcomes, err := db.GetRunOutcomes(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, gotOutcomes, 3)
	assert.Equal(t, outcomes, gotOutcomes)

	gotFindings, err := db.GetRunFindings(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, findings, gotFindings)
}

func TestSQLiteStorage_ListRuns(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run, outcomes, findings := testutil.NewRun(id).
			StartedAt(base.Add(time.Duration(i) * time.Hour)).
			WithOutcome("ITB", model.StatusValid).
			Build()
		require.NoError(t, db.SaveRun(ctx, run, outcomes, findings))
	}

	runs, err := db.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	runs, err = db.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	_, err = db.ListRuns(ctx, -1)
	assert.ErrorIs(t, err, storage.ErrInvalidLimit)
}

func TestSQLiteStorage_Errors(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	tests := []struct {
		run     model.RunSummary
		wantErr error
		name    string
	}{
		{
			name:    "missing id",
			run:     model.RunSummary{Status: "completed", StartedAt: time.Now()},
			wantErr: storage.ErrInvalidRun,
		},
		{
			name:    "missing start",
			run:     model.RunSummary{ID: "x", Status: "completed"},
			wantErr: storage.ErrInvalidRun,
		},
		{
			name:    "more valid than candidates",
			run:     model.RunSummary{ID: "x", Status: "completed", StartedAt: time.Now(), ValidCount: 2, CandidateCount: 1},
			wantErr: storage.ErrInvalidRun,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.SaveRun(ctx, tt.run, nil, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := db.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrRunNotFound)
	_, err = db.GetRunOutcomes(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrRunNotFound)
	_, err = db.GetRun(ctx, " ")
	assert.ErrorIs(t, err, storage.ErrEmptyString)

	run, outcomes, findings := testutil.NewRun("dup").WithOutcome("ITB", model.StatusValid).Build()
	require.NoError(t, db.SaveRun(ctx, run, outcomes, findings))
	assert.Error(t, db.SaveRun(ctx, run, outcomes, findings))

	outcomesAfter, err := db.GetRunOutcomes(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, outcomesAfter, 1)
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	db, err := storage.NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	v, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, storage.ExpectedSchemaVersion, v)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())

	_, err = storage.NewSQLiteStorage("")
	assert.ErrorIs(t, err, storage.ErrEmptyString)
}

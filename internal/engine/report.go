package engine

import (
	"time"

	"github.com/Veraticus/flcheck/internal/classification"
	"github.com/Veraticus/flcheck/internal/model"
	"github.com/Veraticus/flcheck/internal/pattern"
)

// RunStatus is the final state of a validation run.
type RunStatus string

// Run statuses.
const (
	// StatusMaskFailed means some lines do not have the shape of a functional location.
	StatusMaskFailed RunStatus = "mask_failed"
	// StatusInvalid means some codes match no template, or several.
	StatusInvalid RunStatus = "invalid"
	// StatusUpToDate means every code is already in the reference snapshots.
	StatusUpToDate RunStatus = "up_to_date"
	// StatusCompleted means upload records were produced.
	StatusCompleted RunStatus = "completed"
)

// Difference is the set of candidate values missing from one reference set.
type Difference struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
	Level  int      `json:"level,omitempty"`
}

// Report is the outcome of one validation run.
type Report struct {
	StartedAt       time.Time                          `json:"started_at"`
	Partition       *classification.Partition          `json:"-"`
	Records         map[model.TableKind][]model.Record `json:"records,omitempty"`
	RunID           string                             `json:"run_id"`
	Status          RunStatus                          `json:"status"`
	Technology      string                             `json:"technology"`
	TechnologyName  string                             `json:"technology_name,omitempty"`
	Country         string                             `json:"country"`
	CountryName     string                             `json:"country_name,omitempty"`
	PartitionReason string                             `json:"partition_reason,omitempty"`
	Codes           []model.Code                       `json:"codes"`
	Violations      []pattern.MaskViolation            `json:"violations,omitempty"`
	Outcomes        []model.MatchOutcome               `json:"outcomes,omitempty"`
	Findings        []model.Finding                    `json:"findings,omitempty"`
	Differences     []Difference                       `json:"differences,omitempty"`
	Duration        time.Duration                      `json:"duration"`
	PartitionValid  bool                               `json:"partition_valid"`
}

// ValidCount returns the number of codes with a single template match.
func (r *Report) ValidCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Valid() {
			n++
		}
	}
	return n
}

// Invalid returns the outcomes of codes that failed verification.
func (r *Report) Invalid() []model.MatchOutcome {
	return pattern.Invalid(r.Outcomes)
}

// AllRecords returns every record, grouped in upload table order.
func (r *Report) AllRecords() []model.Record {
	var out []model.Record
	for _, kind := range model.TableKinds() {
		out = append(out, r.Records[kind]...)
	}
	return out
}

// RecordCount returns the number of upload records.
func (r *Report) RecordCount() int {
	n := 0
	for _, recs := range r.Records {
		n += len(recs)
	}
	return n
}

// OK reports whether the run got past verification.
func (r *Report) OK() bool {
	return r.Status == StatusCompleted || r.Status == StatusUpToDate
}

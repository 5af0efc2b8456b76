package model

import "time"

// RunSummary is the stored header of a validation run.
type RunSummary struct {
	StartedAt      time.Time     `json:"started_at"`
	ID             string        `json:"id"`
	Technology     string        `json:"technology"`
	Country        string        `json:"country"`
	Status         string        `json:"status"`
	CandidateCount int           `json:"candidate_count"`
	ValidCount     int           `json:"valid_count"`
	RecordCount    int           `json:"record_count"`
	Duration       time.Duration `json:"duration"`
}

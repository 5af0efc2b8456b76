package model

import "fmt"

// FindingKind classifies structural integrity warnings.
type FindingKind string

// Finding kinds.
const (
	FindingMissingParent     FindingKind = "missing_parent"
	FindingDuplicateHeader   FindingKind = "duplicate_header"
	FindingDuplicateTemplate FindingKind = "duplicate_template"
	FindingDuplicateRule     FindingKind = "duplicate_rule"
	FindingSkippedSource     FindingKind = "skipped_source"
	FindingSkippedRow        FindingKind = "skipped_row"
	FindingMultipleLookup    FindingKind = "multiple_lookup"
	FindingInvalidPattern    FindingKind = "invalid_pattern"
	FindingMaskViolation     FindingKind = "mask_violation"
	FindingPartition         FindingKind = "partition"
)

// Finding is a non-fatal anomaly flagged for human review.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Kind, f.Subject, f.Message)
}

// NewFinding creates a finding with a formatted message.
func NewFinding(kind FindingKind, subject, format string, args ...any) Finding {
	return Finding{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

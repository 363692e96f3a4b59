package models

import "context"

// AssessmentStore persists assessments. Implementations must apply each call atomically.
type AssessmentStore interface {
	Append(ctx context.Context, rec *AssessmentRecord) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]AssessmentRecord, error)
	ClearAll(ctx context.Context) (int64, error)
}

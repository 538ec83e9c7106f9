package reports

import (
	"context"
	"time"
)

// Repo persists report jobs through their lifecycle.
type Repo interface {
	Create(ctx context.Context, report Report) error
	GetByID(ctx context.Context, reportID string) (Report, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error)
	MarkProcessing(ctx context.Context, reportID string, startedAt time.Time) error
	Complete(ctx context.Context, reportID string, result Result, completedAt time.Time) error
	Fail(ctx context.Context, reportID, code, reason string, completedAt time.Time) error
}

package reports

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for dev mode and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Report // reportID -> report
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Report)}
}

var _ Repo = (*MemoryRepo)(nil)

// Create stores a new report.
func (r *MemoryRepo) Create(ctx context.Context, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[report.ID] = report
	return nil
}

// GetByID returns a report by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, reportID string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.data[reportID]
	if !ok {
		return Report{}, ErrNotFound
	}
	return report, nil
}

// ListByUser returns a user's reports, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	matched := make([]Report, 0, len(r.data))
	for _, report := range r.data {
		if report.UserID == userID {
			matched = append(matched, report)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []Report{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

// ClaimGuest reassigns a guest user's reports to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, report := range r.data {
		if report.UserID != guestUserID {
			continue
		}
		report.UserID = authedUserID
		r.data[id] = report
		moved++
	}
	return moved, nil
}

// MarkProcessing moves a report into the processing state.
func (r *MemoryRepo) MarkProcessing(ctx context.Context, reportID string, startedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.data[reportID]
	if !ok {
		return ErrNotFound
	}
	report.Status = StatusProcessing
	report.StartedAt = &startedAt
	r.data[reportID] = report
	return nil
}

// Complete stores the result and moves the report to completed.
func (r *MemoryRepo) Complete(ctx context.Context, reportID string, result Result, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.data[reportID]
	if !ok {
		return ErrNotFound
	}
	report.Status = StatusCompleted
	report.Result = &result
	report.FailureCode = ""
	report.FailureReason = ""
	report.CompletedAt = &completedAt
	r.data[reportID] = report
	return nil
}

// Fail records the failure code and reason and moves the report to failed.
func (r *MemoryRepo) Fail(ctx context.Context, reportID, code, reason string, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.data[reportID]
	if !ok {
		return ErrNotFound
	}
	report.Status = StatusFailed
	report.FailureCode = code
	report.FailureReason = reason
	report.CompletedAt = &completedAt
	r.data[reportID] = report
	return nil
}

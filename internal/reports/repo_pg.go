package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres. Results live in a jsonb column so
// the result shape can evolve without migrations.
type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

// Create inserts a new queued report.
func (r *PGRepo) Create(ctx context.Context, report Report) error {
	const query = `
INSERT INTO reports (id, user_id, profile_id, status, focus, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		report.ID,
		report.UserID,
		report.ProfileID,
		report.Status,
		report.Focus,
		report.CreatedAt,
	)
	return err
}

// GetByID returns a report by ID.
func (r *PGRepo) GetByID(ctx context.Context, reportID string) (Report, error) {
	const query = `
SELECT id, user_id, profile_id, status, focus, result, failure_code, failure_reason, created_at, started_at, completed_at
FROM reports
WHERE id = $1
LIMIT 1`
	report, err := scanReport(r.DB.QueryRowContext(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	return report, nil
}

// ListByUser returns a user's reports, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT id, user_id, profile_id, status, focus, result, failure_code, failure_reason, created_at, started_at, completed_at
FROM reports
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

// MarkProcessing moves a report into the processing state.
func (r *PGRepo) MarkProcessing(ctx context.Context, reportID string, startedAt time.Time) error {
	const query = `
UPDATE reports
SET status = $2, started_at = $3
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, reportID, StatusProcessing, startedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Complete stores the result and moves the report to completed.
func (r *PGRepo) Complete(ctx context.Context, reportID string, result Result, completedAt time.Time) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	const query = `
UPDATE reports
SET status = $2, result = $3, failure_code = NULL, failure_reason = NULL, completed_at = $4
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, reportID, StatusCompleted, payload, completedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Fail records the failure code and reason and moves the report to failed.
func (r *PGRepo) Fail(ctx context.Context, reportID, code, reason string, completedAt time.Time) error {
	const query = `
UPDATE reports
SET status = $2, failure_code = $3, failure_reason = $4, completed_at = $5
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, reportID, StatusFailed, code, reason, completedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var report Report
	var result []byte
	var failureCode sql.NullString
	var failureReason sql.NullString
	var startedAt sql.NullTime
	var completedAt sql.NullTime

	if err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.ProfileID,
		&report.Status,
		&report.Focus,
		&result,
		&failureCode,
		&failureReason,
		&report.CreatedAt,
		&startedAt,
		&completedAt,
	); err != nil {
		return Report{}, err
	}

	if len(result) > 0 {
		var parsed Result
		if err := json.Unmarshal(result, &parsed); err != nil {
			return Report{}, fmt.Errorf("decode result for report %s: %w", report.ID, err)
		}
		report.Result = &parsed
	}
	report.FailureCode = failureCode.String
	report.FailureReason = failureReason.String
	if startedAt.Valid {
		t := startedAt.Time
		report.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		report.CompletedAt = &t
	}
	return report, nil
}

// ClaimGuest reassigns reports owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE reports
SET user_id = $1
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

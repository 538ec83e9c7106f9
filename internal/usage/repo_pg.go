package usage

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. One row per (user, day); the
// increment is atomic in SQL so concurrent asks never lose counts.
type PGRepo struct {
	DB *sql.DB
}

// Get returns the counter for the user and day, zero when absent.
func (r *PGRepo) Get(ctx context.Context, userID, day string) (int, error) {
	const query = `
SELECT used
FROM ask_usage
WHERE user_id = $1 AND day = $2
LIMIT 1`
	var used int
	err := r.DB.QueryRowContext(ctx, query, userID, day).Scan(&used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return used, nil
}

// Increment bumps the counter and returns the new value.
func (r *PGRepo) Increment(ctx context.Context, userID, day string) (int, error) {
	const query = `
INSERT INTO ask_usage (user_id, day, used)
VALUES ($1, $2, 1)
ON CONFLICT (user_id, day) DO UPDATE SET used = ask_usage.used + 1
RETURNING used`
	var used int
	if err := r.DB.QueryRowContext(ctx, query, userID, day).Scan(&used); err != nil {
		return 0, err
	}
	return used, nil
}

// Reset clears the counter for the user and day.
func (r *PGRepo) Reset(ctx context.Context, userID, day string) error {
	const query = `
DELETE FROM ask_usage
WHERE user_id = $1 AND day = $2`
	_, err := r.DB.ExecContext(ctx, query, userID, day)
	return err
}

var _ Repo = (*PGRepo)(nil)

package saves

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

// Create inserts a new save record.
func (r *PGRepo) Create(ctx context.Context, save Save) error {
	const query = `
INSERT INTO saves (id, user_id, profile_id, file_name, mime_type, size_bytes, storage_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		save.ID,
		save.UserID,
		save.ProfileID,
		save.FileName,
		save.MimeType,
		save.SizeBytes,
		save.StorageKey,
		save.CreatedAt,
	)
	return err
}

// ListByProfile returns a profile's saves, newest first.
func (r *PGRepo) ListByProfile(ctx context.Context, userID, profileID string, limit, offset int) ([]Save, error) {
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
SELECT id, user_id, profile_id, file_name, mime_type, size_bytes, storage_key, created_at
FROM saves
WHERE user_id = $1 AND profile_id = $2
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`
	rows, err := r.DB.QueryContext(ctx, query, userID, profileID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Save{}
	for rows.Next() {
		var s Save
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.ProfileID,
			&s.FileName,
			&s.MimeType,
			&s.SizeBytes,
			&s.StorageKey,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ClaimGuest reassigns saves owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE saves
SET user_id = $1
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

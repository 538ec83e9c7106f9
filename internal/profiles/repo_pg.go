package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// PGRepo implements Repo using Postgres. Game state lives in a jsonb column
// so the snapshot shape can evolve without migrations.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new profile.
func (r *PGRepo) Create(ctx context.Context, p Profile) error {
	state, err := json.Marshal(p.State)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	const query = `
INSERT INTO profiles (id, user_id, name, spending_tier, state, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.DB.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		string(p.SpendingTier),
		state,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// GetByID returns a profile owned by the user.
func (r *PGRepo) GetByID(ctx context.Context, userID, profileID string) (Profile, error) {
	const query = `
SELECT id, user_id, name, spending_tier, state, created_at, updated_at
FROM profiles
WHERE user_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, profileID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// ListByUser lists profiles newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Profile, error) {
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
SELECT id, user_id, name, spending_tier, state, created_at, updated_at
FROM profiles
WHERE user_id = $1
ORDER BY created_at DESC, name ASC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateState replaces the stored game state.
func (r *PGRepo) UpdateState(ctx context.Context, userID, profileID string, state snapshot.Snapshot, updatedAt time.Time) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	const query = `
UPDATE profiles
SET state = $1, updated_at = $2
WHERE user_id = $3 AND id = $4`
	res, err := r.DB.ExecContext(ctx, query, encoded, updatedAt, userID, profileID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSpendingTier replaces the profile's spending tier.
func (r *PGRepo) UpdateSpendingTier(ctx context.Context, userID, profileID string, tier snapshot.SpendingTier, updatedAt time.Time) error {
	const query = `
UPDATE profiles
SET spending_tier = $1, updated_at = $2
WHERE user_id = $3 AND id = $4`
	res, err := r.DB.ExecContext(ctx, query, string(tier), updatedAt, userID, profileID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	var tier string
	var state []byte
	var updatedAt sql.NullTime
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&tier,
		&state,
		&p.CreatedAt,
		&updatedAt,
	); err != nil {
		return Profile{}, err
	}
	p.SpendingTier = snapshot.SpendingTier(tier)
	if len(state) > 0 {
		if err := json.Unmarshal(state, &p.State); err != nil {
			return Profile{}, fmt.Errorf("decode state: %w", err)
		}
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	} else {
		p.UpdatedAt = p.CreatedAt
	}
	return p, nil
}

// ClaimGuest reassigns profiles owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE profiles
SET user_id = $1
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

var _ Repo = (*PGRepo)(nil)

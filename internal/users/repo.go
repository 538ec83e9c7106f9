package users

import (
	"context"
	"errors"
)

// ErrNotFound indicates no identity row exists for the user id.
var ErrNotFound = errors.New("user not found")

// Repo persists identities. Upsert is idempotent per user id; every sign-in
// refreshes the stored fields.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}

package saves

import "context"

// Repo persists save records.
type Repo interface {
	Create(ctx context.Context, save Save) error
	ListByProfile(ctx context.Context, userID, profileID string, limit, offset int) ([]Save, error)
}

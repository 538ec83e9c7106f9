package profiles

import (
	"context"
	"time"

	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// Repo defines persistence operations for profiles. Every read and write is
// scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, p Profile) error
	GetByID(ctx context.Context, userID, profileID string) (Profile, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Profile, error)
	UpdateState(ctx context.Context, userID, profileID string, state snapshot.Snapshot, updatedAt time.Time) error
	UpdateSpendingTier(ctx context.Context, userID, profileID string, tier snapshot.SpendingTier, updatedAt time.Time) error
}

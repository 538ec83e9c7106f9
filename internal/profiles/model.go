package profiles

import (
	"time"

	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// Profile is one saved game state owned by a user. State is stored exactly as
// submitted; read it through SnapshotFor so it is normalized in one place.
type Profile struct {
	ID           string                `json:"id"`
	UserID       string                `json:"userId"`
	Name         string                `json:"name"`
	SpendingTier snapshot.SpendingTier `json:"spendingTier"`
	State        snapshot.Snapshot     `json:"state"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

package profiles

import (
	"time"

	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// ProfileResponse is the outward-facing representation of a profile.
type ProfileResponse struct {
	ProfileID    string            `json:"profileId"`
	Name         string            `json:"name"`
	SpendingTier string            `json:"spendingTier"`
	State        snapshot.Snapshot `json:"state"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func toResponse(p Profile) ProfileResponse {
	return ProfileResponse{
		ProfileID:    p.ID,
		Name:         p.Name,
		SpendingTier: string(p.SpendingTier),
		State:        p.State,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

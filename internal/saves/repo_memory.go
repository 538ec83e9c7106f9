package saves

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev mode and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Save // userID -> saves
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Save)}
}

var _ Repo = (*MemoryRepo)(nil)

// Create appends a save record for its user.
func (r *MemoryRepo) Create(ctx context.Context, save Save) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[save.UserID] = append(r.data[save.UserID], save)
	return nil
}

// ClaimGuest reassigns a guest user's saves to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for _, s := range r.data[guestUserID] {
		s.UserID = authedUserID
		r.data[authedUserID] = append(r.data[authedUserID], s)
		moved++
	}
	delete(r.data, guestUserID)
	return moved, nil
}

// ListByProfile returns a profile's saves, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByProfile(ctx context.Context, userID, profileID string, limit, offset int) ([]Save, error) {
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
	all := r.data[userID]
	r.mu.RUnlock()

	matched := make([]Save, 0, len(all))
	for _, s := range all {
		if s.ProfileID == profileID {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []Save{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

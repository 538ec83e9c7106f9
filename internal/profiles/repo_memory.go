package profiles

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// MemoryRepo is an in-memory implementation of Repo for dev mode and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]map[string]Profile // userID -> profileID -> profile
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]map[string]Profile)}
}

// Create stores a new profile.
func (r *MemoryRepo) Create(ctx context.Context, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.data[p.UserID]
	if !ok {
		byID = make(map[string]Profile)
		r.data[p.UserID] = byID
	}
	byID[p.ID] = p
	return nil
}

// GetByID returns a profile owned by the user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, profileID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[userID][profileID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// ListByUser returns the user's profiles newest-first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Profile, error) {
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
	byID := r.data[userID]
	out := make([]Profile, 0, len(byID))
	for _, p := range byID {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})

	if offset >= len(out) {
		return []Profile{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// UpdateState replaces the stored game state.
func (r *MemoryRepo) UpdateState(ctx context.Context, userID, profileID string, state snapshot.Snapshot, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[userID][profileID]
	if !ok {
		return ErrNotFound
	}
	p.State = state
	p.UpdatedAt = updatedAt
	r.data[userID][profileID] = p
	return nil
}

// ClaimGuest reassigns a guest user's profiles to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, p := range r.data[guestUserID] {
		p.UserID = authedUserID
		byID, ok := r.data[authedUserID]
		if !ok {
			byID = make(map[string]Profile)
			r.data[authedUserID] = byID
		}
		byID[id] = p
		moved++
	}
	delete(r.data, guestUserID)
	return moved, nil
}

// UpdateSpendingTier replaces the profile's spending tier.
func (r *MemoryRepo) UpdateSpendingTier(ctx context.Context, userID, profileID string, tier snapshot.SpendingTier, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[userID][profileID]
	if !ok {
		return ErrNotFound
	}
	p.SpendingTier = tier
	p.UpdatedAt = updatedAt
	r.data[userID][profileID] = p
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

package usage

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.Mutex
	data map[string]map[string]int // userID -> day -> used
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]map[string]int)}
}

// Get returns the counter for the user and day.
func (r *MemoryRepo) Get(ctx context.Context, userID, day string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data[userID][day], nil
}

// Increment bumps the counter and returns the new value.
func (r *MemoryRepo) Increment(ctx context.Context, userID, day string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byDay, ok := r.data[userID]
	if !ok {
		byDay = make(map[string]int)
		r.data[userID] = byDay
	}
	byDay[day]++
	return byDay[day], nil
}

// Reset clears the counter for the user and day.
func (r *MemoryRepo) Reset(ctx context.Context, userID, day string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if byDay, ok := r.data[userID]; ok {
		delete(byDay, day)
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

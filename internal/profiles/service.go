package profiles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

const (
	defaultName = "Main"
	maxNameLen  = 80
)

// Service contains business logic for profiles.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create stores a new profile. An empty name gets a default; the state is
// kept exactly as submitted and normalized on read.
func (s *Service) Create(ctx context.Context, userID, name string, tier snapshot.SpendingTier, state snapshot.Snapshot) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName
	}
	if len(name) > maxNameLen {
		return Profile{}, fmt.Errorf("%w: name longer than %d characters", ErrInvalidInput, maxNameLen)
	}
	if tier == "" {
		tier = state.SpendingTier
	}
	if tier == "" {
		tier = snapshot.TierF2P
	}
	parsed, err := snapshot.ParseSpendingTier(string(tier))
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := time.Now().UTC()
	p := Profile{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		SpendingTier: parsed,
		State:        state,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Get returns a profile owned by the user.
func (s *Service) Get(ctx context.Context, userID, profileID string) (Profile, error) {
	if userID == "" || profileID == "" {
		return Profile{}, fmt.Errorf("%w: user id and profile id required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, profileID)
}

// List returns the user's profiles newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// UpdateState replaces the profile's stored game state.
func (s *Service) UpdateState(ctx context.Context, userID, profileID string, state snapshot.Snapshot) (Profile, error) {
	if userID == "" || profileID == "" {
		return Profile{}, fmt.Errorf("%w: user id and profile id required", ErrInvalidInput)
	}
	if err := s.Repo.UpdateState(ctx, userID, profileID, state, time.Now().UTC()); err != nil {
		return Profile{}, err
	}
	return s.Repo.GetByID(ctx, userID, profileID)
}

// UpdateSpendingTier replaces the profile's spending tier.
func (s *Service) UpdateSpendingTier(ctx context.Context, userID, profileID string, tier snapshot.SpendingTier) (Profile, error) {
	if userID == "" || profileID == "" {
		return Profile{}, fmt.Errorf("%w: user id and profile id required", ErrInvalidInput)
	}
	parsed, err := snapshot.ParseSpendingTier(string(tier))
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.Repo.UpdateSpendingTier(ctx, userID, profileID, parsed, time.Now().UTC()); err != nil {
		return Profile{}, err
	}
	return s.Repo.GetByID(ctx, userID, profileID)
}

// SnapshotFor loads the profile and returns its normalized snapshot with the
// profile-level spending tier applied. This is the one place raw stored
// state becomes engine input.
func (s *Service) SnapshotFor(ctx context.Context, userID, profileID string) (snapshot.Snapshot, error) {
	p, err := s.Get(ctx, userID, profileID)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	snap := p.State
	snap.SpendingTier = p.SpendingTier
	return snap.Normalized(), nil
}

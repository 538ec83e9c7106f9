// Package usage tracks per-user daily AI question consumption. Quota limits
// come from the spending-tier policy at the call site; this package only
// counts the UTC day window.
package usage

import (
	"context"
	"time"
)

const dayFormat = "2006-01-02"

// Usage is one user's consumption for the current UTC day.
type Usage struct {
	Day      string    `json:"day"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}

// Repo defines persistence for daily counters.
type Repo interface {
	Get(ctx context.Context, userID, day string) (int, error)
	Increment(ctx context.Context, userID, day string) (int, error)
	Reset(ctx context.Context, userID, day string) error
}

// Service wraps a Repo with the day-window arithmetic.
type Service struct {
	Repo Repo
	now  func() time.Time
}

// NewService constructs a Service. A nil now func uses time.Now.
func NewService(repo Repo, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{Repo: repo, now: now}
}

func (s *Service) day() (string, time.Time) {
	now := s.now().UTC()
	resetsAt := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return now.Format(dayFormat), resetsAt
}

// Get returns today's consumption.
func (s *Service) Get(ctx context.Context, userID string) (Usage, error) {
	day, resetsAt := s.day()
	used, err := s.Repo.Get(ctx, userID, day)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Day: day, Used: used, ResetsAt: resetsAt}, nil
}

// CanConsume reports whether one more AI question fits under the limit.
// A non-positive limit means unlimited.
func (s *Service) CanConsume(ctx context.Context, userID string, limit int) (bool, Usage, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return false, Usage{}, err
	}
	if limit <= 0 {
		return true, u, nil
	}
	return u.Used < limit, u, nil
}

// Consume charges one AI question against the limit. When the user is
// already at the limit nothing is charged and ErrLimitReached is returned
// with the untouched usage.
func (s *Service) Consume(ctx context.Context, userID string, limit int) (Usage, error) {
	ok, u, err := s.CanConsume(ctx, userID, limit)
	if err != nil {
		return Usage{}, err
	}
	if !ok {
		return u, ErrLimitReached
	}
	day, resetsAt := s.day()
	used, err := s.Repo.Increment(ctx, userID, day)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Day: day, Used: used, ResetsAt: resetsAt}, nil
}

// Reset clears today's counter. Dev tooling only.
func (s *Service) Reset(ctx context.Context, userID string) (Usage, error) {
	day, resetsAt := s.day()
	if err := s.Repo.Reset(ctx, userID, day); err != nil {
		return Usage{}, err
	}
	return Usage{Day: day, Used: 0, ResetsAt: resetsAt}, nil
}

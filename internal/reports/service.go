package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amk92987/wos-optimizer/internal/advisor"
	"github.com/amk92987/wos-optimizer/internal/lineup"
	"github.com/amk92987/wos-optimizer/internal/profiles"
	"github.com/amk92987/wos-optimizer/internal/queue"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/shared/metrics"
	"github.com/amk92987/wos-optimizer/internal/shared/telemetry"
)

const (
	reportRecLimit   = 10
	reportPowerLimit = 5
	maxFocusLen      = 200
)

// Service owns the report lifecycle. Create validates and enqueues; Process
// runs the engine over the profile snapshot; Get and List read back. With no
// queue configured, Create processes inline on a goroutine (dev mode).
type Service struct {
	Repo     Repo
	Profiles *profiles.Service
	Advisor  *advisor.Advisor
	Tables   *refdata.Tables
	Queue    queue.Client
}

// Create records a queued report and hands it to the worker.
func (s *Service) Create(ctx context.Context, userID, profileID, focus string) (Report, error) {
	if userID == "" || profileID == "" {
		return Report{}, errors.New("userID and profileID are required")
	}
	focus = strings.TrimSpace(focus)
	if len(focus) > maxFocusLen {
		focus = focus[:maxFocusLen]
	}
	if _, err := s.Profiles.Get(ctx, userID, profileID); err != nil {
		return Report{}, err
	}

	report := Report{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProfileID: profileID,
		Status:    StatusQueued,
		Focus:     focus,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, report); err != nil {
		return Report{}, err
	}

	if s.Queue != nil {
		msg := queue.Message{
			ReportID:   report.ID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: report.CreatedAt.Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			s.fail(ctx, report.ID, report.UserID, report.ProfileID, fmt.Errorf("enqueue: %w", err), nil)
			return Report{}, fmt.Errorf("enqueue report: %w", err)
		}
		return report, nil
	}

	go s.processAsync(backgroundWithRequestID(ctx), report.ID)
	return report, nil
}

// Get returns a report owned by the user. Foreign reports read as not found.
func (s *Service) Get(ctx context.Context, userID, reportID string) (Report, error) {
	if reportID == "" {
		return Report{}, errors.New("reportID is required")
	}
	report, err := s.Repo.GetByID(ctx, reportID)
	if err != nil {
		return Report{}, err
	}
	if report.UserID != userID {
		return Report{}, ErrNotFound
	}
	return report, nil
}

// List returns a user's reports, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) processAsync(ctx context.Context, reportID string) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, reportID, "", "", fmt.Errorf("panic: %v", r), nil)
		}
	}()
	_ = s.Process(ctx, reportID)
}

// Process runs the engine for one queued report. The worker calls this per
// queue message; dev mode calls it inline after Create.
func (s *Service) Process(ctx context.Context, reportID string) error {
	startedAt := time.Now().UTC()
	if err := s.Repo.MarkProcessing(ctx, reportID, startedAt); err != nil {
		s.fail(ctx, reportID, "", "", fmt.Errorf("set processing: %w", err), &startedAt)
		return err
	}

	report, err := s.Repo.GetByID(ctx, reportID)
	if err != nil {
		s.fail(ctx, reportID, "", "", fmt.Errorf("report lookup: %w", err), &startedAt)
		return err
	}
	telemetry.Info("report.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           report.UserID,
		"report_id":         report.ID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	result, err := s.run(ctx, report)
	if err != nil {
		s.fail(ctx, reportID, report.UserID, report.ProfileID, err, &startedAt)
		return err
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.Complete(ctx, reportID, result, completedAt); err != nil {
		s.fail(ctx, reportID, report.UserID, report.ProfileID, fmt.Errorf("set report result: %w", err), &startedAt)
		return err
	}
	metrics.IncReportJobCompleted()
	metrics.ObserveReportDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("report.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           report.UserID,
		"report_id":         report.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

// run executes the full engine pass for one report.
func (s *Service) run(ctx context.Context, report Report) (Result, error) {
	profile, err := s.Profiles.Get(ctx, report.UserID, report.ProfileID)
	if err != nil {
		return Result{}, fmt.Errorf("profile lookup: %w", err)
	}
	snap, err := s.Profiles.SnapshotFor(ctx, report.UserID, report.ProfileID)
	if err != nil {
		return Result{}, fmt.Errorf("profile snapshot: %w", err)
	}

	recs, err := s.Advisor.GetRecommendations(ctx, snap, reportRecLimit)
	if err != nil {
		return Result{}, fmt.Errorf("engine recommendations: %w", err)
	}
	plan, err := s.Advisor.GetPowerRecommendations(ctx, snap, reportPowerLimit)
	if err != nil {
		return Result{}, fmt.Errorf("engine power plan: %w", err)
	}
	lineups := make([]lineup.Lineup, 0, len(s.Tables.ModeOrder))
	for _, mode := range s.Tables.ModeOrder {
		built, err := s.Advisor.GetLineup(ctx, mode, snap)
		if err != nil {
			return Result{}, fmt.Errorf("engine lineup %s: %w", mode, err)
		}
		lineups = append(lineups, built)
	}
	phase := s.Advisor.Phase(snap)

	result := Result{
		Phase:           phase.Name,
		Summary:         s.Advisor.ReportSummary(ctx, snap, report.Focus, recs),
		Recommendations: recs,
		PowerPlan:       plan,
		Lineups:         lineups,
		GeneratedAt:     time.Now().UTC(),
	}
	result.Text = renderText(profile.Name, report.Focus, result)
	return result, nil
}

// fail transitions the report to failed. The update runs on a fresh context
// so a cancelled request cannot keep the failure from being recorded.
func (s *Service) fail(ctx context.Context, reportID, userID, profileID string, err error, startedAt *time.Time) {
	code := classifyFailure(err)
	reason := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.Fail(context.Background(), reportID, code, reason, completedAt); updateErr != nil {
		telemetry.Error("report.fail_update", map[string]any{
			"report_id": reportID,
			"error":     updateErr.Error(),
			"cause":     reason,
		})
	}
	metrics.IncReportJobFailed()
	if startedAt != nil {
		metrics.ObserveReportDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("report.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"profile_id":        profileID,
		"report_id":         reportID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"failure_code":      code,
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) string {
	if err == nil {
		return ErrorCodeInternal
	}
	if errors.Is(err, profiles.ErrNotFound) {
		return ErrorCodeProfile
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "profile"):
		return ErrorCodeProfile
	case strings.Contains(msg, "engine"):
		return ErrorCodeEngine
	case strings.Contains(msg, "enqueue"):
		return ErrorCodeQueue
	case strings.Contains(msg, "set processing"),
		strings.Contains(msg, "report lookup"),
		strings.Contains(msg, "set report result"):
		return ErrorCodeStorage
	default:
		return ErrorCodeInternal
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

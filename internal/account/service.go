package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/amk92987/wos-optimizer/internal/profiles"
	"github.com/amk92987/wos-optimizer/internal/reports"
	"github.com/amk92987/wos-optimizer/internal/saves"
)

// Service migrates guest-owned data to an authenticated account. Players
// often build a profile before signing in; claiming keeps that work.
type Service struct {
	ProfilesRepo profiles.Repo
	ReportsRepo  reports.Repo
	SavesRepo    saves.Repo
}

type ClaimResult struct {
	MigratedProfiles int `json:"migratedProfiles"`
	MigratedReports  int `json:"migratedReports"`
	MigratedSaves    int `json:"migratedSaves"`
}

func NewService(profilesRepo profiles.Repo, reportsRepo reports.Repo, savesRepo saves.Repo) *Service {
	return &Service{ProfilesRepo: profilesRepo, ReportsRepo: reportsRepo, SavesRepo: savesRepo}
}

func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if profilePG, ok := s.ProfilesRepo.(*profiles.PGRepo); ok && profilePG != nil && profilePG.DB != nil {
		if reportPG, ok := s.ReportsRepo.(*reports.PGRepo); ok && reportPG != nil && reportPG.DB != nil {
			if savePG, ok := s.SavesRepo.(*saves.PGRepo); ok && savePG != nil && savePG.DB != nil {
				return claimWithTx(ctx, profilePG.DB, guestUserID, authedUserID)
			}
		}
	}

	profileCount, err := claimFromRepo(ctx, s.ProfilesRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	reportCount, err := claimFromRepo(ctx, s.ReportsRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	saveCount, err := claimFromRepo(ctx, s.SavesRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{
		MigratedProfiles: profileCount,
		MigratedReports:  reportCount,
		MigratedSaves:    saveCount,
	}, nil
}

// claimWithTx moves all three tables in one transaction so a partial claim
// never leaves a profile behind without its reports.
func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	profileRes, err := tx.ExecContext(ctx, `UPDATE profiles SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	profileCount, _ := profileRes.RowsAffected()

	reportRes, err := tx.ExecContext(ctx, `UPDATE reports SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	reportCount, _ := reportRes.RowsAffected()

	saveRes, err := tx.ExecContext(ctx, `UPDATE saves SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	saveCount, _ := saveRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{
		MigratedProfiles: int(profileCount),
		MigratedReports:  int(reportCount),
		MigratedSaves:    int(saveCount),
	}, nil
}

type guestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

func claimFromRepo(ctx context.Context, repo any, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("repo does not support claim")
}

package saves

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/amk92987/wos-optimizer/internal/profiles"
	"github.com/amk92987/wos-optimizer/internal/shared/storage/object"
)

// maxExportBytes caps how much of an upload Import will read. Tracker
// exports are small JSON documents; anything bigger is not one.
const maxExportBytes = 2 << 20

// Service imports game-state exports. The raw file goes to object storage
// and the parsed state is applied to the owning profile in the same call.
type Service struct {
	Store    object.ObjectStore
	Repo     Repo
	Profiles *profiles.Service
}

// Import stores the export, records it, and applies the parsed state to the
// profile. A spending tier present in the export also updates the profile's
// tier, since an import expresses the player's full current state.
func (s *Service) Import(ctx context.Context, userID, profileID, fileName string, r io.Reader) (Save, error) {
	if fileName == "" {
		return Save{}, ErrInvalidInput
	}
	if _, err := s.Profiles.Get(ctx, userID, profileID); err != nil {
		return Save{}, err
	}

	data, err := io.ReadAll(io.LimitReader(r, maxExportBytes+1))
	if err != nil {
		return Save{}, fmt.Errorf("read export: %w", err)
	}
	if int64(len(data)) > maxExportBytes {
		return Save{}, fmt.Errorf("%w: export exceeds %d bytes", ErrInvalidInput, maxExportBytes)
	}

	snap, err := ParseExport(data)
	if err != nil {
		return Save{}, err
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Save{}, fmt.Errorf("store export: %w", err)
	}

	save := Save{
		ID:         uuid.NewString(),
		UserID:     userID,
		ProfileID:  profileID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, save); err != nil {
		return Save{}, err
	}

	if _, err := s.Profiles.UpdateState(ctx, userID, profileID, snap); err != nil {
		return Save{}, fmt.Errorf("apply state: %w", err)
	}
	if snap.SpendingTier != "" {
		if _, err := s.Profiles.UpdateSpendingTier(ctx, userID, profileID, snap.SpendingTier); err != nil {
			return Save{}, fmt.Errorf("apply spending tier: %w", err)
		}
	}
	return save, nil
}

// List returns a profile's saves, newest first. The profile must belong to
// the user.
func (s *Service) List(ctx context.Context, userID, profileID string, limit, offset int) ([]Save, error) {
	if _, err := s.Profiles.Get(ctx, userID, profileID); err != nil {
		return nil, err
	}
	return s.Repo.ListByProfile(ctx, userID, profileID, limit, offset)
}

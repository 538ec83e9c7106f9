package saves

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/amk92987/wos-optimizer/internal/profiles"
	localstore "github.com/amk92987/wos-optimizer/internal/shared/storage/object/local"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

func testSetup(t *testing.T) (*Service, *profiles.Service, profiles.Profile) {
	t.Helper()
	profSvc := profiles.NewService(profiles.NewMemoryRepo())
	p, err := profSvc.Create(context.Background(), "user-1", "Main", snapshot.TierF2P, snapshot.Snapshot{})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	svc := &Service{
		Store:    localstore.New(t.TempDir()),
		Repo:     NewMemoryRepo(),
		Profiles: profSvc,
	}
	return svc, profSvc, p
}

func TestImportAppliesState(t *testing.T) {
	svc, profSvc, p := testSetup(t)
	ctx := context.Background()

	save, err := svc.Import(ctx, "user-1", p.ID, "export.json", strings.NewReader(fullExport))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if save.ID == "" || save.StorageKey == "" {
		t.Fatalf("save missing identifiers: %+v", save)
	}
	if save.SizeBytes != int64(len(fullExport)) {
		t.Fatalf("size = %d, want %d", save.SizeBytes, len(fullExport))
	}

	updated, err := profSvc.Get(ctx, "user-1", p.ID)
	if err != nil {
		t.Fatalf("Get profile: %v", err)
	}
	if updated.State.Progression.FurnaceLevel != 22 {
		t.Fatalf("furnace = %d, want 22", updated.State.Progression.FurnaceLevel)
	}
	if updated.SpendingTier != snapshot.TierDolphin {
		t.Fatalf("tier = %q, want dolphin", updated.SpendingTier)
	}

	rc, err := svc.Store.Open(ctx, save.StorageKey)
	if err != nil {
		t.Fatalf("Open stored export: %v", err)
	}
	rc.Close()
}

func TestImportKeepsTierWhenExportOmitsIt(t *testing.T) {
	svc, profSvc, p := testSetup(t)
	ctx := context.Background()

	if _, err := profSvc.UpdateSpendingTier(ctx, "user-1", p.ID, snapshot.TierOrca); err != nil {
		t.Fatalf("UpdateSpendingTier: %v", err)
	}
	if _, err := svc.Import(ctx, "user-1", p.ID, "export.json", strings.NewReader(`{"progression": {"furnaceLevel": 11}}`)); err != nil {
		t.Fatalf("Import: %v", err)
	}

	updated, err := profSvc.Get(ctx, "user-1", p.ID)
	if err != nil {
		t.Fatalf("Get profile: %v", err)
	}
	if updated.SpendingTier != snapshot.TierOrca {
		t.Fatalf("tier = %q, want orca untouched", updated.SpendingTier)
	}
	if updated.State.Progression.FurnaceLevel != 11 {
		t.Fatalf("furnace = %d, want 11", updated.State.Progression.FurnaceLevel)
	}
}

func TestImportRejectsBadExport(t *testing.T) {
	svc, profSvc, p := testSetup(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, "user-1", p.ID, "export.json", strings.NewReader(`{"settings": {"sound": true}}`))
	if !errors.Is(err, ErrBadExport) {
		t.Fatalf("expected ErrBadExport, got %v", err)
	}

	list, err := svc.Repo.ListByProfile(ctx, "user-1", p.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListByProfile: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("rejected export should not be recorded, got %d saves", len(list))
	}

	updated, err := profSvc.Get(ctx, "user-1", p.ID)
	if err != nil {
		t.Fatalf("Get profile: %v", err)
	}
	if updated.UpdatedAt != p.UpdatedAt {
		t.Fatal("rejected export should not touch the profile")
	}
}

func TestImportRequiresFileName(t *testing.T) {
	svc, _, p := testSetup(t)

	_, err := svc.Import(context.Background(), "user-1", p.ID, "", strings.NewReader(fullExport))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestImportUnknownProfile(t *testing.T) {
	svc, _, _ := testSetup(t)

	_, err := svc.Import(context.Background(), "user-1", "nope", "export.json", strings.NewReader(fullExport))
	if !errors.Is(err, profiles.ErrNotFound) {
		t.Fatalf("expected profiles.ErrNotFound, got %v", err)
	}
}

func TestImportForeignProfile(t *testing.T) {
	svc, _, p := testSetup(t)

	_, err := svc.Import(context.Background(), "user-2", p.ID, "export.json", strings.NewReader(fullExport))
	if !errors.Is(err, profiles.ErrNotFound) {
		t.Fatalf("expected profiles.ErrNotFound for foreign profile, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, _, p := testSetup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Import(ctx, "user-1", p.ID, "export.json", strings.NewReader(`{"progression": {"furnaceLevel": 5}}`)); err != nil {
			t.Fatalf("Import %d: %v", i, err)
		}
	}

	list, err := svc.List(ctx, "user-1", p.ID, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Fatal("expected newest first")
	}
}

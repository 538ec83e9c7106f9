package profiles

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

func TestPGRepoCreateEncodesState(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	p := Profile{
		ID:           "profile-1",
		UserID:       "user-1",
		Name:         "Main",
		SpendingTier: snapshot.TierF2P,
		State: snapshot.Snapshot{
			Progression: snapshot.Progression{FurnaceLevel: 20},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO profiles").
		WithArgs(
			p.ID,
			p.UserID,
			p.Name,
			"f2p",
			sqlmock.AnyArg(), // state json
			p.CreatedAt,
			p.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesState(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	state := []byte(`{"progression":{"furnaceLevel":22,"fireCrystalLevel":0,"accountAgeDays":140}}`)

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "spending_tier", "state", "created_at", "updated_at"}).
		AddRow("profile-1", "user-1", "Main", "dolphin", state, now, now)
	mock.ExpectQuery("SELECT (.+) FROM profiles").
		WithArgs("user-1", "profile-1").
		WillReturnRows(rows)

	p, err := repo.GetByID(context.Background(), "user-1", "profile-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.SpendingTier != snapshot.TierDolphin {
		t.Fatalf("expected dolphin, got %q", p.SpendingTier)
	}
	if p.State.Progression.FurnaceLevel != 22 {
		t.Fatalf("expected furnace 22, got %d", p.State.Progression.FurnaceLevel)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT (.+) FROM profiles").
		WithArgs("user-1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateStateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE profiles").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateState(context.Background(), "user-1", "missing", snapshot.Snapshot{}, time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

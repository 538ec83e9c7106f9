package saves

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	save := Save{
		ID:         "save-1",
		UserID:     "user-1",
		ProfileID:  "profile-1",
		FileName:   "export.json",
		MimeType:   "application/json",
		SizeBytes:  512,
		StorageKey: "ab12/cd34_export.json",
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO saves").
		WithArgs(
			save.ID,
			save.UserID,
			save.ProfileID,
			save.FileName,
			save.MimeType,
			save.SizeBytes,
			save.StorageKey,
			save.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), save); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "profile_id", "file_name", "mime_type", "size_bytes", "storage_key", "created_at"}).
		AddRow("save-2", "user-1", "profile-1", "export.json", "application/json", int64(600), "key-2", now).
		AddRow("save-1", "user-1", "profile-1", "export.json", "application/json", int64(512), "key-1", now.Add(-time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM saves").
		WithArgs("user-1", "profile-1", 20, 0).
		WillReturnRows(rows)

	list, err := repo.ListByProfile(context.Background(), "user-1", "profile-1", 0, 0)
	if err != nil {
		t.Fatalf("ListByProfile: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != "save-2" {
		t.Fatalf("first = %q, want save-2", list[0].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

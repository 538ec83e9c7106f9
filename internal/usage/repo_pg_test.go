package usage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetDefaultsToZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT used").
		WithArgs("user-1", "2025-07-01").
		WillReturnError(sql.ErrNoRows)

	used, err := repo.Get(context.Background(), "user-1", "2025-07-01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if used != 0 {
		t.Fatalf("expected zero for missing row, got %d", used)
	}
}

func TestPGRepoIncrementReturnsNewCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("INSERT INTO ask_usage").
		WithArgs("user-1", "2025-07-01").
		WillReturnRows(sqlmock.NewRows([]string{"used"}).AddRow(4))

	used, err := repo.Increment(context.Background(), "user-1", "2025-07-01")
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if used != 4 {
		t.Fatalf("expected 4, got %d", used)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

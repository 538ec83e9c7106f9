package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetByIDDecodesResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	result := []byte(`{"phase":"Mid game","recommendations":[],"powerPlan":[],"lineups":[],"text":"report body","generatedAt":"2026-08-20T10:00:00Z"}`)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "profile_id", "status", "focus", "result",
		"failure_code", "failure_reason", "created_at", "started_at", "completed_at",
	}).AddRow("report-1", "user-1", "profile-1", StatusCompleted, "", result, nil, nil, now, now, now)

	mock.ExpectQuery("SELECT (.+) FROM reports").
		WithArgs("report-1").
		WillReturnRows(rows)

	report, err := repo.GetByID(context.Background(), "report-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if report.Result == nil || report.Result.Phase != "Mid game" {
		t.Fatalf("result = %+v", report.Result)
	}
	if report.StartedAt == nil || report.CompletedAt == nil {
		t.Fatal("expected timestamps")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMarkProcessingNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE reports").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.MarkProcessing(context.Background(), "missing", time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoFail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	mock.ExpectExec("UPDATE reports").
		WithArgs("report-1", StatusFailed, ErrorCodeEngine, "engine recommendations: boom", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Fail(context.Background(), "report-1", ErrorCodeEngine, "engine recommendations: boom", now); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

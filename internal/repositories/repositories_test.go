package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/rolesplit/internal/models"
	"github.com/desertthunder/rolesplit/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "export_runs")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}

	if _, err := NextSequence(db, "users; DROP TABLE export_runs"); err == nil {
		t.Error("unknown tables should be rejected")
	}
}

func TestExportRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRunRepository(db)
		run := models.NewExportRun("batch-1", models.Faculty, "faculty.csv", 3, models.ExportCommitted, "")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("Sequence() = %d, want 1", run.Sequence())
		}
	})

	t.Run("Create rejects invalid", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRunRepository(db)
		if err := repo.Create(models.NewExportRun("", models.Other, "other.csv", 0, models.ExportCommitted, "")); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRunRepository(db)
		run := models.NewExportRun("batch-1", models.Other, "out/other.csv", 0, models.ExportFailed, "permission denied")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Category() != "other" || got.Output() != "out/other.csv" {
			t.Errorf("unexpected run %+v", got)
		}
		if got.Status() != models.ExportFailed || got.ErrorMessage() != "permission denied" {
			t.Errorf("status = %s (%s)", got.Status(), got.ErrorMessage())
		}

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRunRepository(db)
		run := models.NewExportRun("batch-1", models.Student, "student.csv", 2, models.ExportFailed, "timeout")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.SetStatus(models.ExportCommitted, "")
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Status() != models.ExportCommitted || got.ErrorMessage() != "" {
			t.Errorf("update not persisted: %s %q", got.Status(), got.ErrorMessage())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRunRepository(db)
		run := models.NewExportRun("batch-1", models.Student, "student.csv", 2, models.ExportCommitted, "")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("deleted run should not be found, got %v", err)
		}
		if err := repo.Delete(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("deleting twice should fail with ErrRunNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewExportRunRepository(db)
		for _, run := range []*models.ExportRun{
			models.NewExportRun("a", models.Faculty, "faculty.csv", 1, models.ExportCommitted, ""),
			models.NewExportRun("a", models.Student, "student.csv", 1, models.ExportCommitted, ""),
			models.NewExportRun("b", models.Other, "other.csv", 1, models.ExportFailed, "boom"),
		} {
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		byBatch, err := repo.ListByBatch("a")
		if err != nil {
			t.Fatalf("ListByBatch() error = %v", err)
		}
		if len(byBatch) != 2 {
			t.Errorf("expected 2 runs for batch a, got %d", len(byBatch))
		}

		failed, err := repo.List(map[string]any{"status": "failed"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(failed) != 1 || failed[0].BatchID() != "b" {
			t.Errorf("unexpected failed runs %+v", failed)
		}

		recent, err := repo.Recent(2)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(recent) != 2 || recent[0].Sequence() != 3 {
			t.Errorf("Recent should return newest first, got %d runs", len(recent))
		}

		if _, err := repo.List(map[string]any{"limit": "ten"}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestExportLedger(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewExportRunRepository(db)
	ledger := NewExportLedger(repo)

	if err := ledger.RecordExport("batch-9", models.Faculty, "faculty.csv", 4, nil); err != nil {
		t.Fatalf("RecordExport() error = %v", err)
	}
	if err := ledger.RecordExport("batch-9", models.Other, "other.csv", 1, errors.New("disk full")); err != nil {
		t.Fatalf("RecordExport() error = %v", err)
	}

	runs, err := repo.ListByBatch("batch-9")
	if err != nil {
		t.Fatalf("ListByBatch() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	statuses := map[string]models.ExportStatus{}
	for _, r := range runs {
		statuses[r.Category()] = r.Status()
	}
	if statuses["faculty"] != models.ExportCommitted || statuses["other"] != models.ExportFailed {
		t.Errorf("unexpected statuses %v", statuses)
	}
}

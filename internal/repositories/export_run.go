package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/rolesplit/internal/models"
	"github.com/desertthunder/rolesplit/internal/shared"
)

const exportRunColumns = `id, sequence, batch_id, category, output, record_count, status, error_message, created_at, updated_at`

// ExportRunRepository implements models.Repository[*models.ExportRun] for export history.
type ExportRunRepository struct {
	db *sql.DB
}

// NewExportRunRepository creates a new ExportRunRepository with the given database connection
func NewExportRunRepository(db *sql.DB) *ExportRunRepository {
	return &ExportRunRepository{db: db}
}

// Create inserts a new [models.ExportRun] with generated ID and sequence
func (r *ExportRunRepository) Create(run *models.ExportRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "export_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	query := `
		INSERT INTO export_runs (` + exportRunColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.BatchID(),
		run.Category(),
		run.Output(),
		run.RecordCount(),
		string(run.Status()),
		nullString(run.ErrorMessage()),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export run: %w", err)
	}

	return nil
}

// Get retrieves an export run by ID, excluding soft-deleted runs
func (r *ExportRunRepository) Get(id string) (*models.ExportRun, error) {
	query := `SELECT ` + exportRunColumns + ` FROM export_runs WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// Update persists status changes of an existing run
func (r *ExportRunRepository) Update(run *models.ExportRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE export_runs
		SET output = ?, record_count = ?, status = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.Output(),
		run.RecordCount(),
		string(run.Status()),
		nullString(run.ErrorMessage()),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update export run: %w", err)
	}

	return requireAffected(result, run.ID())
}

// Delete soft-deletes an export run by ID
func (r *ExportRunRepository) Delete(id string) error {
	now := time.Now()
	result, err := r.db.Exec(`UPDATE export_runs SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete export run: %w", err)
	}
	return requireAffected(result, id)
}

// List retrieves runs matching criteria, newest first.
//
// Supported criteria: "batch_id", "category", "status" (string equality) and "limit" (int).
func (r *ExportRunRepository) List(criteria map[string]any) ([]*models.ExportRun, error) {
	var (
		where = []string{"deleted_at IS NULL"}
		args  []any
		limit = 0
	)

	for _, key := range []string{"batch_id", "category", "status"} {
		v, ok := criteria[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: criteria %s must be a string", shared.ErrInvalidArgument, key)
		}
		where = append(where, key+" = ?")
		args = append(args, s)
	}

	if v, ok := criteria["limit"]; ok {
		n, ok := v.(int)
		if !ok || n < 0 {
			return nil, fmt.Errorf("%w: criteria limit must be a non-negative int", shared.ErrInvalidArgument)
		}
		limit = n
	}

	query := `SELECT ` + exportRunColumns + ` FROM export_runs WHERE ` + strings.Join(where, " AND ") + ` ORDER BY sequence DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ExportRun
	for rows.Next() {
		run, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate export runs: %w", err)
	}
	return runs, nil
}

// ListByBatch returns every run of one batch, newest first
func (r *ExportRunRepository) ListByBatch(batchID string) ([]*models.ExportRun, error) {
	return r.List(map[string]any{"batch_id": batchID})
}

// Recent returns the latest limit runs
func (r *ExportRunRepository) Recent(limit int) ([]*models.ExportRun, error) {
	return r.List(map[string]any{"limit": limit})
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *ExportRunRepository) scanOne(row scanner) (*models.ExportRun, error) {
	var (
		id, batchID, category, output, status string
		sequence, count                       int
		errMsg                                sql.NullString
		createdAt, updatedAt                  time.Time
	)

	err := row.Scan(&id, &sequence, &batchID, &category, &output, &count, &status, &errMsg, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan export run: %w", err)
	}

	return models.RestoreExportRun(id, sequence, batchID, category, output, count,
		models.ExportStatus(status), errMsg.String, createdAt, updatedAt), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return nil
}

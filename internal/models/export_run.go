package models

import (
	"errors"
	"time"
)

// ExportStatus is the terminal state of one export write.
type ExportStatus string

const (
	ExportCommitted ExportStatus = "committed"
	ExportFailed    ExportStatus = "failed"
)

// ExportRun records the outcome of writing one category file.
//
// Runs sharing a BatchID were produced from the same spreadsheet.
type ExportRun struct {
	id           string
	sequence     int
	batchID      string
	category     string
	output       string
	recordCount  int
	status       ExportStatus
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewExportRun creates an unsaved [ExportRun]. The ID is assigned by the repository.
func NewExportRun(batchID string, category Category, output string, count int, status ExportStatus, errMsg string) *ExportRun {
	now := time.Now()
	return &ExportRun{
		batchID:      batchID,
		category:     category.String(),
		output:       output,
		recordCount:  count,
		status:       status,
		errorMessage: errMsg,
		createdAt:    now,
		updatedAt:    now,
	}
}

// RestoreExportRun rebuilds an [ExportRun] from stored columns.
func RestoreExportRun(id string, sequence int, batchID, category, output string, count int, status ExportStatus, errMsg string, createdAt, updatedAt time.Time) *ExportRun {
	return &ExportRun{
		id:           id,
		sequence:     sequence,
		batchID:      batchID,
		category:     category,
		output:       output,
		recordCount:  count,
		status:       status,
		errorMessage: errMsg,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (r *ExportRun) ID() string               { return r.id }
func (r *ExportRun) Sequence() int            { return r.sequence }
func (r *ExportRun) BatchID() string          { return r.batchID }
func (r *ExportRun) Category() string         { return r.category }
func (r *ExportRun) Output() string           { return r.output }
func (r *ExportRun) RecordCount() int         { return r.recordCount }
func (r *ExportRun) Status() ExportStatus     { return r.status }
func (r *ExportRun) ErrorMessage() string     { return r.errorMessage }
func (r *ExportRun) CreatedAt() time.Time     { return r.createdAt }
func (r *ExportRun) UpdatedAt() time.Time     { return r.updatedAt }
func (r *ExportRun) SetID(id string)          { r.id = id }
func (r *ExportRun) SetSequence(seq int)      { r.sequence = seq }
func (r *ExportRun) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// SetStatus moves the run to a new terminal state.
func (r *ExportRun) SetStatus(status ExportStatus, errMsg string) {
	r.status = status
	r.errorMessage = errMsg
	r.updatedAt = time.Now()
}

// Validate checks required fields.
func (r *ExportRun) Validate() error {
	if r.batchID == "" {
		return errors.New("batch ID is required")
	}
	if _, err := ParseCategory(r.category); err != nil {
		return err
	}
	if r.output == "" {
		return errors.New("output identifier is required")
	}
	if r.recordCount < 0 {
		return errors.New("record count cannot be negative")
	}
	switch r.status {
	case ExportCommitted, ExportFailed:
	default:
		return errors.New("invalid export status: " + string(r.status))
	}
	return nil
}

package repositories

import (
	"github.com/desertthunder/rolesplit/internal/models"
)

// ExportLedger implements tasks.ExportRecorder using ExportRunRepository.
type ExportLedger struct {
	repo *ExportRunRepository
}

// NewExportLedger creates a new ExportLedger with the given repository
func NewExportLedger(repo *ExportRunRepository) *ExportLedger {
	return &ExportLedger{repo: repo}
}

// RecordExport stores the outcome of one category export. A non-nil exportErr marks the run failed.
func (l *ExportLedger) RecordExport(batchID string, category models.Category, output string, count int, exportErr error) error {
	status, msg := models.ExportCommitted, ""
	if exportErr != nil {
		status, msg = models.ExportFailed, exportErr.Error()
	}
	return l.repo.Create(models.NewExportRun(batchID, category, output, count, status, msg))
}

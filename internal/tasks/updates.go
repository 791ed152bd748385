package tasks

import (
	"fmt"

	"github.com/desertthunder/rolesplit/internal/exporter"
	"github.com/desertthunder/rolesplit/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or server layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadSpreadsheet Phase = iota
	ClassifyRows
	ExportCategory
)

func (p Phase) String() string {
	switch p {
	case ReadSpreadsheet:
		return "read_spreadsheet"
	case ClassifyRows:
		return "classify_rows"
	case ExportCategory:
		return "export_category"
	default:
		return ""
	}
}

func readingUpdate(size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadSpreadsheet,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Reading spreadsheet (%d bytes)...", size),
	}
}

func classifyingUpdate(rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyRows,
		Step:    0,
		Total:   rows,
		Message: fmt.Sprintf("Classifying %d rows...", rows),
	}
}

func classifiedUpdate(b *models.Batch) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyRows,
		Step:    b.Len(),
		Total:   b.Len(),
		Message: fmt.Sprintf("Classified: %d faculty, %d student, %d other", len(b.Faculty), len(b.Student), len(b.Other)),
		Data:    b,
	}
}

func exportStartedUpdate(step, total int, c models.Category, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing %s (%d records)...", exporter.FileName(c), count),
	}
}

func exportCompletedUpdate(step, total int, res exporter.Result) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ %s (%d records)", res.Output, res.Records),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res exporter.Result) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCategory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ %s: %v", res.Output, res.Err),
		Data:    res,
	}
}

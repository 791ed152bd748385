package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/rolesplit/internal/models"
	"github.com/desertthunder/rolesplit/internal/repositories"
	"github.com/desertthunder/rolesplit/internal/ui"
	"github.com/urfave/cli/v3"
)

type historyEntry struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	BatchID   string    `json:"batch_id"`
	Category  string    `json:"category"`
	File      string    `json:"file"`
	Records   int       `json:"records"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// History lists recorded exports, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.useConfig(cmd); err != nil {
		return err
	}

	db, err := r.ledger()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	repo := repositories.NewExportRunRepository(db)

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if batch := cmd.String("batch"); batch != "" {
		criteria["batch_id"] = batch
	}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	runs, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, 0, len(runs))
		for _, run := range runs {
			entries = append(entries, toHistoryEntry(run))
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	return r.writePlain("%s", ui.RenderHistory(runs))
}

func toHistoryEntry(run *models.ExportRun) historyEntry {
	return historyEntry{
		ID:        run.ID(),
		Sequence:  run.Sequence(),
		BatchID:   run.BatchID(),
		Category:  run.Category(),
		File:      run.Output(),
		Records:   run.RecordCount(),
		Status:    string(run.Status()),
		Error:     run.ErrorMessage(),
		CreatedAt: run.CreatedAt(),
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/desertthunder/rolesplit/internal/exporter"
	"github.com/desertthunder/rolesplit/internal/shared"
	"github.com/desertthunder/rolesplit/internal/spreadsheet"
	"github.com/desertthunder/rolesplit/internal/tasks"
	"github.com/desertthunder/rolesplit/internal/ui"
	"github.com/urfave/cli/v3"
)

// splitOutput is the JSON shape of a finished split.
type splitOutput struct {
	BatchID string         `json:"batch_id"`
	Rows    int            `json:"rows"`
	Exports []exportOutput `json:"exports"`
}

type exportOutput struct {
	Category string `json:"category"`
	File     string `json:"file"`
	Records  int    `json:"records"`
	State    string `json:"state"`
	Error    string `json:"error,omitempty"`
}

// Split classifies one spreadsheet and writes a file per category.
func (r *Runner) Split(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: spreadsheet file is required", shared.ErrMissingArgument)
	}

	if err := r.useConfig(cmd); err != nil {
		return err
	}
	r.applySplitFlags(cmd)

	format := spreadsheet.FormatFromName(path)
	if cmd.IsSet("format") {
		f, err := spreadsheet.ParseFormat(cmd.String("format"))
		if err != nil {
			return fmt.Errorf("%w: --format", err)
		}
		format = f
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	engine, err := r.newEngine(!cmd.Bool("no-history"))
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	r.logger.Info("splitting spreadsheet", "file", path, "bytes", len(data))

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			if !asJSON {
				r.writePlain("%s\n", ui.RenderProgress(update))
			}
		}
	}()

	result, runErr := engine.Run(ctx, progress, data, format)
	close(progress)
	wg.Wait()

	if result == nil {
		return runErr
	}

	if asJSON {
		if err := r.writeJSON(toSplitOutput(result), cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		r.writePlain("\n%s", ui.RenderSummary(result))
	}
	return runErr
}

// applySplitFlags lets command flags override the [input] and [output] config sections.
func (r *Runner) applySplitFlags(cmd *cli.Command) {
	if dir := cmd.String("output"); dir != "" {
		r.config.Output.Directory = dir
		r.config.Output.SFTP.Enabled = false
	}
	if cmd.IsSet("encoding") {
		r.config.Input.Encoding = cmd.String("encoding")
	}
	if cmd.IsSet("skip-header") {
		r.config.Input.SkipHeader = cmd.Bool("skip-header")
	}
	if cmd.IsSet("lenient") {
		r.config.Input.LenientRoles = cmd.Bool("lenient")
	}
}

func toSplitOutput(result *tasks.SplitResult) splitOutput {
	out := splitOutput{
		BatchID: result.BatchID,
		Rows:    result.Rows,
		Exports: make([]exportOutput, 0, len(result.Exports)),
	}
	for _, res := range result.Exports {
		out.Exports = append(out.Exports, toExportOutput(res))
	}
	return out
}

func toExportOutput(res exporter.Result) exportOutput {
	e := exportOutput{
		Category: res.Category.String(),
		File:     res.Output,
		Records:  res.Records,
		State:    res.State.String(),
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	return e
}

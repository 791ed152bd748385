package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/rolesplit/internal/exporter"
	"github.com/desertthunder/rolesplit/internal/models"
	"github.com/desertthunder/rolesplit/internal/tasks"
)

const timeLayout = "2006-01-02 15:04:05"

// RenderProgress formats a progress update as a single status line.
func RenderProgress(u tasks.ProgressUpdate) string {
	prefix := "→"
	if u.Phase == tasks.ExportCategory && u.Total > 0 {
		prefix = fmt.Sprintf("[%d/%d]", u.Step, u.Total)
	}
	return styles.help.Render(prefix) + " " + u.Message
}

// RenderSummary formats the outcome of a split: one line per category file and a totals footer.
func RenderSummary(result *tasks.SplitResult) string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Split " + result.BatchID))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Rows read: %d\n\n", result.Rows)

	width := 0
	for _, res := range result.Exports {
		width = max(width, len(res.Output))
	}

	for _, res := range result.Exports {
		b.WriteString(renderExport(res, width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if result.Failed > 0 {
		b.WriteString(styles.err.Render(fmt.Sprintf("%d of %d exports failed", result.Failed, len(result.Exports))))
	} else {
		b.WriteString(styles.ok.Render(fmt.Sprintf("✓ %d files written", result.Exported)))
	}
	b.WriteString("\n")
	return b.String()
}

func renderExport(res exporter.Result, width int) string {
	name := lipgloss.NewStyle().Width(width).Render(res.Output)
	count := fmt.Sprintf("%5d records", res.Records)

	if res.Err != nil {
		return fmt.Sprintf("%s %s %s\n    %s", styles.err.Render("✗"), name, count, styles.warn.Render(res.Err.Error()))
	}
	return fmt.Sprintf("%s %s %s", styles.ok.Render("✓"), name, count)
}

// RenderHistory formats export runs as a table, newest first as given.
func RenderHistory(runs []*models.ExportRun) string {
	if len(runs) == 0 {
		return styles.help.Render("No exports recorded yet.") + "\n"
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.help).
		Headers("#", "BATCH", "CATEGORY", "FILE", "RECORDS", "STATUS", "CREATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, run := range runs {
		t.Row(
			strconv.Itoa(run.Sequence()),
			shortID(run.BatchID()),
			run.Category(),
			run.Output(),
			strconv.Itoa(run.RecordCount()),
			renderStatus(run),
			run.CreatedAt().Local().Format(timeLayout),
		)
	}
	return t.Render() + "\n"
}

func renderStatus(run *models.ExportRun) string {
	if run.Status() == models.ExportFailed {
		return styles.err.Render(string(run.Status()))
	}
	return styles.ok.Render(string(run.Status()))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// package exporter writes one category of normalized records as a CSV file.
//
// Files are named "{category}.csv" and start with the fixed header
//
//	Email,Primeiro Nome,Último Nome,CPF
//
// Values are joined with commas and terminated by "\n" without quoting, so a comma inside a
// name shifts the columns of that row. Downstream importers expect this exact layout.
package exporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolesplit/internal/models"
	"github.com/desertthunder/rolesplit/internal/shared"
)

// Header is the fixed first line of every export.
var Header = []string{"Email", "Primeiro Nome", "Último Nome", "CPF"}

const (
	delimiter  = ","
	terminator = "\n"
)

// State tracks one export write: Idle → Writing → Committed | Failed.
type State int

const (
	Idle State = iota
	Writing
	Committed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Writing:
		return "writing"
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Result describes one finished export.
type Result struct {
	Category models.Category
	Output   string // identifier returned by the sink, e.g. "out/faculty.csv"
	Records  int
	State    State
	Err      error
}

// Exporter writes category files to a [Sink]. It keeps no per-call state and may be shared between goroutines.
type Exporter struct {
	sink   Sink
	logger *log.Logger
}

// New creates an [Exporter]. A nil logger discards log output.
func New(sink Sink, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{sink: sink, logger: logger}
}

// FileName derives the output name for a category.
func FileName(c models.Category) string {
	return c.String() + ".csv"
}

// Export writes records for category and returns the output identifier once the sink has flushed and closed it.
//
// Failures are returned as [*shared.WriteError]; no retry is attempted.
func (e *Exporter) Export(ctx context.Context, records []models.Record, category models.Category) (string, error) {
	res := e.ExportResult(ctx, records, category)
	return res.Output, res.Err
}

// ExportResult is [Exporter.Export] with the final [State] and record count attached.
func (e *Exporter) ExportResult(ctx context.Context, records []models.Record, category models.Category) Result {
	name := FileName(category)
	res := Result{
		Category: category,
		Output:   e.sink.Locate(name),
		Records:  len(records),
		State:    Idle,
	}

	fail := func(op string, partial bool, err error) Result {
		res.State = Failed
		res.Err = &shared.WriteError{
			Category: category.String(),
			Output:   res.Output,
			Op:       op,
			Partial:  partial,
			Err:      err,
		}
		e.logger.Error("error creating file", "file", res.Output, "error", err)
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail("open", false, err)
	}

	w, err := e.sink.Open(ctx, name)
	if err != nil {
		return fail("open", false, err)
	}
	res.State = Writing

	bw := bufio.NewWriter(w)
	if err := WriteRecords(bw, records); err != nil {
		w.Close()
		return fail("write", true, err)
	}
	if err := bw.Flush(); err != nil {
		w.Close()
		return fail("flush", true, err)
	}
	if err := w.Close(); err != nil {
		return fail("close", true, err)
	}

	res.State = Committed
	e.logger.Info("file created", "file", res.Output, "records", res.Records)
	return res
}

// WriteRecords renders the header followed by one line per record.
func WriteRecords(w io.Writer, records []models.Record) error {
	if err := writeLine(w, Header...); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		if err := writeLine(w, r.Email, r.FirstName, r.LastName, r.NationalIDCode); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return nil
}

func writeLine(w io.Writer, values ...string) error {
	for i, v := range values {
		if i > 0 {
			if _, err := io.WriteString(w, delimiter); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, v); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, terminator)
	return err
}

package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolesplit/internal/classifier"
	"github.com/desertthunder/rolesplit/internal/exporter"
	"github.com/desertthunder/rolesplit/internal/models"
	"github.com/desertthunder/rolesplit/internal/shared"
	"github.com/desertthunder/rolesplit/internal/spreadsheet"
)

// ExportRecorder persists the outcome of one category export.
type ExportRecorder interface {
	RecordExport(batchID string, category models.Category, output string, count int, err error) error
}

// SplitResult contains all data from a full split.
type SplitResult struct {
	BatchID  string            // Groups the exports of this run in history
	Rows     int               // Rows read from the used range
	Batch    *models.Batch     // Classified records
	Exports  []exporter.Result // One result per category, in faculty, student, other order
	Exported int               // Categories written successfully
	Failed   int               // Categories that failed
}

// Engine defines operations for splitting rosters.
type Engine interface {
	// Extract reads and classifies a spreadsheet without writing anything.
	Extract(ctx context.Context, progress chan<- ProgressUpdate, data []byte, format spreadsheet.Format) (*models.Batch, int, error)

	// ExportBatch writes every category of batch concurrently.
	ExportBatch(ctx context.Context, progress chan<- ProgressUpdate, batchID string, batch *models.Batch) []exporter.Result

	// Run performs Extract followed by ExportBatch.
	Run(ctx context.Context, progress chan<- ProgressUpdate, data []byte, format spreadsheet.Format) (*SplitResult, error)
}

// SplitEngine implements Engine.
type SplitEngine struct {
	classifier *classifier.Classifier
	exporter   *exporter.Exporter
	recorder   ExportRecorder
	logger     *log.Logger
}

// SplitEngineOpts contains dependencies for a [SplitEngine]. Recorder and Logger are optional.
type SplitEngineOpts struct {
	Classifier *classifier.Classifier
	Exporter   *exporter.Exporter
	Recorder   ExportRecorder
	Logger     *log.Logger
}

// NewSplitEngine creates a new SplitEngine with the provided dependencies.
func NewSplitEngine(opts SplitEngineOpts) *SplitEngine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &SplitEngine{
		classifier: opts.Classifier,
		exporter:   opts.Exporter,
		recorder:   opts.Recorder,
		logger:     opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *SplitEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Extract reads the spreadsheet and classifies every row. It also returns the number of rows read.
//
// Classification is all-or-nothing: on error no batch is returned.
func (e *SplitEngine) Extract(ctx context.Context, progress chan<- ProgressUpdate, data []byte, format spreadsheet.Format) (*models.Batch, int, error) {
	if e.classifier == nil {
		return nil, 0, fmt.Errorf("%w: classifier not initialized", shared.ErrInvalidConfig)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	e.sendProgress(progress, readingUpdate(len(data)))
	grid, err := spreadsheet.Read(data, format)
	if err != nil {
		e.logger.Error("error extracting data", "error", err)
		return nil, 0, err
	}

	e.sendProgress(progress, classifyingUpdate(len(grid)))
	batch, err := e.classifier.ClassifyGrid(grid)
	if err != nil {
		e.logger.Error("error extracting data", "error", err)
		return nil, len(grid), err
	}

	e.sendProgress(progress, classifiedUpdate(batch))
	return batch, len(grid), nil
}

type exportJob struct {
	index    int
	category models.Category
	records  []models.Record
}

type exportOutcome struct {
	index int
	res   exporter.Result
}

// ExportBatch writes each category on its own worker. Results are returned in [models.Categories] order.
func (e *SplitEngine) ExportBatch(ctx context.Context, progress chan<- ProgressUpdate, batchID string, batch *models.Batch) []exporter.Result {
	total := len(models.Categories)
	results := make([]exporter.Result, total)

	jobs := make(chan exportJob, total)
	outcomes := make(chan exportOutcome, total)

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, outcomes)
	}

	for i, c := range models.Categories {
		records := batch.Records(c)
		e.sendProgress(progress, exportStartedUpdate(i+1, total, c, len(records)))
		jobs <- exportJob{index: i, category: c, records: records}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	completed := 0
	for out := range outcomes {
		completed++
		results[out.index] = out.res

		if out.res.Err != nil {
			e.sendProgress(progress, exportFailedUpdate(completed, total, out.res))
		} else {
			e.sendProgress(progress, exportCompletedUpdate(completed, total, out.res))
		}
		e.record(batchID, out.res)
	}

	return results
}

// exportWorker is a worker goroutine that exports categories from the jobs channel.
func (e *SplitEngine) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan exportJob, outcomes chan<- exportOutcome) {
	defer wg.Done()

	for job := range jobs {
		res := e.exporter.ExportResult(ctx, job.records, job.category)
		outcomes <- exportOutcome{index: job.index, res: res}
	}
}

func (e *SplitEngine) record(batchID string, res exporter.Result) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordExport(batchID, res.Category, res.Output, res.Records, res.Err); err != nil {
		e.logger.Warn("failed to record export", "category", res.Category, "error", err)
	}
}

// Run splits one spreadsheet into category files.
//
// Extraction errors abort before anything is written. Export failures are reported per category in the
// result and also joined into the returned error, so callers can print the summary and still fail.
func (e *SplitEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, data []byte, format spreadsheet.Format) (*SplitResult, error) {
	if e.exporter == nil {
		return nil, fmt.Errorf("%w: exporter not initialized", shared.ErrSinkNotReady)
	}

	batch, rows, err := e.Extract(ctx, progress, data, format)
	if err != nil {
		return nil, err
	}

	result := &SplitResult{
		BatchID: shared.GenerateID(),
		Rows:    rows,
		Batch:   batch,
	}
	result.Exports = e.ExportBatch(ctx, progress, result.BatchID, batch)

	var errs []error
	for _, res := range result.Exports {
		if res.Err != nil {
			result.Failed++
			errs = append(errs, res.Err)
		} else {
			result.Exported++
		}
	}

	if len(errs) > 0 {
		return result, fmt.Errorf("%d of %d exports failed: %w", result.Failed, len(result.Exports), errors.Join(errs...))
	}
	return result, nil
}

package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/rolesplit/internal/classifier"
	"github.com/desertthunder/rolesplit/internal/exporter"
	"github.com/desertthunder/rolesplit/internal/models"
	"github.com/desertthunder/rolesplit/internal/shared"
	"github.com/desertthunder/rolesplit/internal/spreadsheet"
	th "github.com/desertthunder/rolesplit/internal/testing"
)

const roster = "ana@x.com,Ana,Silva,Docente,123.456.789-01\n" +
	"bia@x.com,Bia,Souza,DISCENTE,98765432100\n" +
	"caio@x.com,Caio,Lima,Técnico,\n" +
	"dani@x.com,Dani,Reis,discente,12\n"

type recordedExport struct {
	batchID  string
	category models.Category
	output   string
	count    int
	failed   bool
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []recordedExport
	err     error
}

func (r *fakeRecorder) RecordExport(batchID string, category models.Category, output string, count int, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recordedExport{batchID, category, output, count, err != nil})
	return r.err
}

func newEngine(t *testing.T, sink exporter.Sink, recorder ExportRecorder, opts classifier.Options) *SplitEngine {
	t.Helper()
	c, err := classifier.New(opts)
	if err != nil {
		t.Fatalf("classifier.New() error = %v", err)
	}
	return NewSplitEngine(SplitEngineOpts{
		Classifier: c,
		Exporter:   exporter.New(sink, nil),
		Recorder:   recorder,
	})
}

func TestExtract(t *testing.T) {
	t.Run("classifies csv roster", func(t *testing.T) {
		engine := newEngine(t, th.NewMemorySink("out"), nil, classifier.Options{})

		batch, rows, err := engine.Extract(context.Background(), nil, []byte(roster), spreadsheet.FormatAuto)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if rows != 4 {
			t.Errorf("rows = %d, want 4", rows)
		}
		if len(batch.Faculty) != 1 || len(batch.Student) != 2 || len(batch.Other) != 1 {
			t.Fatalf("unexpected partition: %d/%d/%d", len(batch.Faculty), len(batch.Student), len(batch.Other))
		}
		if batch.Faculty[0].NationalIDCode != "123456" {
			t.Errorf("faculty id = %q, want 123456", batch.Faculty[0].NationalIDCode)
		}
		if batch.Other[0].NationalIDCode != "000000" {
			t.Errorf("other id = %q, want 000000", batch.Other[0].NationalIDCode)
		}
		if batch.Student[1].NationalIDCode != "000000" {
			t.Errorf("short id = %q, want 000000", batch.Student[1].NationalIDCode)
		}
	})

	t.Run("malformed row aborts", func(t *testing.T) {
		engine := newEngine(t, th.NewMemorySink("out"), nil, classifier.Options{})

		data := []byte("ana@x.com,Ana,Silva,Docente,1\nbia@x.com,Bia,Souza,,2\n")
		batch, _, err := engine.Extract(context.Background(), nil, data, spreadsheet.FormatCSV)
		if batch != nil {
			t.Error("no batch should be returned on error")
		}

		var malformed *shared.MalformedRowError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedRowError, got %v", err)
		}
		if malformed.Row != 1 {
			t.Errorf("Row = %d, want 1", malformed.Row)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		engine := newEngine(t, th.NewMemorySink("out"), nil, classifier.Options{})

		_, _, err := engine.Extract(context.Background(), nil, nil, spreadsheet.FormatAuto)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		engine := newEngine(t, th.NewMemorySink("out"), nil, classifier.Options{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, _, err := engine.Extract(ctx, nil, []byte(roster), spreadsheet.FormatCSV); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		engine := newEngine(t, th.NewMemorySink("out"), nil, classifier.Options{})
		progress := make(chan ProgressUpdate, 10)

		if _, _, err := engine.Extract(context.Background(), progress, []byte(roster), spreadsheet.FormatCSV); err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		close(progress)

		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		want := []Phase{ReadSpreadsheet, ClassifyRows, ClassifyRows}
		if len(phases) != len(want) {
			t.Fatalf("got %d updates, want %d", len(phases), len(want))
		}
		for i := range want {
			if phases[i] != want[i] {
				t.Errorf("update %d phase = %s, want %s", i, phases[i], want[i])
			}
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("writes three files and records them", func(t *testing.T) {
		sink := th.NewMemorySink("out")
		recorder := &fakeRecorder{}
		engine := newEngine(t, sink, recorder, classifier.Options{})

		result, err := engine.Run(context.Background(), nil, []byte(roster), spreadsheet.FormatCSV)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.BatchID == "" {
			t.Error("BatchID should be set")
		}
		if result.Exported != 3 || result.Failed != 0 {
			t.Errorf("Exported/Failed = %d/%d, want 3/0", result.Exported, result.Failed)
		}

		for i, c := range models.Categories {
			res := result.Exports[i]
			if res.Category != c {
				t.Errorf("export %d category = %s, want %s", i, res.Category, c)
			}
			if res.State != exporter.Committed {
				t.Errorf("%s state = %s, want committed", c, res.State)
			}
		}

		faculty, ok := sink.File("out/faculty.csv")
		if !ok {
			t.Fatal("faculty.csv was not written")
		}
		want := "Email,Primeiro Nome,Último Nome,CPF\nana@x.com,Ana,Silva,123456\n"
		if faculty != want {
			t.Errorf("faculty.csv = %q, want %q", faculty, want)
		}

		student, _ := sink.File("out/student.csv")
		if !strings.Contains(student, "bia@x.com,Bia,Souza,987654\n") {
			t.Errorf("student.csv missing bia: %q", student)
		}

		if len(recorder.entries) != 3 {
			t.Fatalf("recorded %d exports, want 3", len(recorder.entries))
		}
		for _, e := range recorder.entries {
			if e.batchID != result.BatchID {
				t.Errorf("recorded batch %q, want %q", e.batchID, result.BatchID)
			}
			if e.failed {
				t.Errorf("%s should not be recorded as failed", e.category)
			}
		}
	})

	t.Run("one failing category does not stop the others", func(t *testing.T) {
		inner := th.NewMemorySink("")
		sink := &th.FailingSink{
			OpenErr: errors.New("disk full"),
			Fail:    map[string]bool{"student.csv": true},
			Inner:   inner,
		}
		recorder := &fakeRecorder{}
		engine := newEngine(t, sink, recorder, classifier.Options{})

		result, err := engine.Run(context.Background(), nil, []byte(roster), spreadsheet.FormatCSV)
		if err == nil {
			t.Fatal("expected joined export error")
		}
		if !errors.Is(err, shared.ErrWrite) {
			t.Errorf("expected ErrWrite in chain, got %v", err)
		}
		if result == nil {
			t.Fatal("result should be returned alongside export errors")
		}
		if result.Exported != 2 || result.Failed != 1 {
			t.Errorf("Exported/Failed = %d/%d, want 2/1", result.Exported, result.Failed)
		}
		if result.Exports[1].State != exporter.Failed {
			t.Errorf("student state = %s, want failed", result.Exports[1].State)
		}

		for _, name := range []string{"faculty.csv", "other.csv"} {
			if _, ok := inner.File(name); !ok {
				t.Errorf("%s should have been written", name)
			}
		}

		failed := 0
		for _, e := range recorder.entries {
			if e.failed {
				failed++
			}
		}
		if failed != 1 {
			t.Errorf("recorded %d failed exports, want 1", failed)
		}
	})

	t.Run("classification error writes nothing", func(t *testing.T) {
		sink := th.NewMemorySink("out")
		recorder := &fakeRecorder{}
		engine := newEngine(t, sink, recorder, classifier.Options{})

		data := []byte("ana@x.com,Ana,Silva,,1\n")
		if _, err := engine.Run(context.Background(), nil, data, spreadsheet.FormatCSV); !errors.Is(err, shared.ErrMalformedRow) {
			t.Fatalf("expected ErrMalformedRow, got %v", err)
		}
		if len(sink.Files) != 0 {
			t.Errorf("no files should be written, got %d", len(sink.Files))
		}
		if len(recorder.entries) != 0 {
			t.Errorf("nothing should be recorded, got %d", len(recorder.entries))
		}
	})

	t.Run("lenient roles", func(t *testing.T) {
		sink := th.NewMemorySink("out")
		engine := newEngine(t, sink, nil, classifier.Options{LenientRoles: true})

		data := []byte("ana@x.com,Ana,Silva,,1\n")
		result, err := engine.Run(context.Background(), nil, data, spreadsheet.FormatCSV)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(result.Batch.Other) != 1 {
			t.Errorf("absent role should be other, got %d other", len(result.Batch.Other))
		}
	})

	t.Run("recorder errors are not fatal", func(t *testing.T) {
		recorder := &fakeRecorder{err: errors.New("db locked")}
		engine := newEngine(t, th.NewMemorySink("out"), recorder, classifier.Options{})

		if _, err := engine.Run(context.Background(), nil, []byte(roster), spreadsheet.FormatCSV); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	t.Run("missing exporter", func(t *testing.T) {
		engine := NewSplitEngine(SplitEngineOpts{})
		if _, err := engine.Run(context.Background(), nil, []byte(roster), spreadsheet.FormatCSV); !errors.Is(err, shared.ErrSinkNotReady) {
			t.Errorf("expected ErrSinkNotReady, got %v", err)
		}
	})
}

func TestSendProgressNeverBlocks(t *testing.T) {
	engine := NewSplitEngine(SplitEngineOpts{})
	progress := make(chan ProgressUpdate)

	engine.sendProgress(progress, readingUpdate(1))
	engine.sendProgress(nil, readingUpdate(1))
}

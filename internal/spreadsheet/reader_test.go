package spreadsheet

import (
	"errors"
	"testing"

	"github.com/desertthunder/rolesplit/internal/models"
	"github.com/desertthunder/rolesplit/internal/shared"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into the first sheet starting at origin (e.g. "A1") and returns the xlsx bytes.
func buildWorkbook(t *testing.T, origin string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	col, row, err := excelize.CellNameToCoordinates(origin)
	if err != nil {
		t.Fatalf("bad origin %s: %v", origin, err)
	}

	for r, values := range rows {
		for c, v := range values {
			if v == nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(col+c, row+r)
			if err != nil {
				t.Fatalf("failed to build cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", axis, v); err != nil {
				t.Fatalf("failed to set %s: %v", axis, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	t.Run("reads first sheet with typed cells", func(t *testing.T) {
		data := buildWorkbook(t, "A1", [][]any{
			{"a@x.com", "Ana", "Silva", "Docente", "123.456.789-00"},
			{"b@x.com", "Bea", "Souza", "DISCENTE", nil},
			{"c@x.com", "Cid", "Reis", "staff", 12345678900},
		})

		grid, err := ReadXLSX(data)
		if err != nil {
			t.Fatalf("ReadXLSX() error = %v", err)
		}

		if len(grid) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(grid))
		}
		for i, row := range grid {
			if len(row) != models.RowWidth {
				t.Errorf("row %d: expected %d cells, got %d", i, models.RowWidth, len(row))
			}
		}

		if got := grid[0][4]; got.Kind != models.CellText || got.Text != "123.456.789-00" {
			t.Errorf("formatted id should stay text, got %+v", got)
		}
		if got := grid[1][4]; !got.IsEmpty() {
			t.Errorf("missing id should be empty, got %+v", got)
		}
		if got := grid[2][4]; got.Kind != models.CellNumber || got.Number != 12345678900 {
			t.Errorf("numeric id should be a number cell, got %+v", got)
		}
		if got := grid[1][3]; got.Text != "DISCENTE" {
			t.Errorf("role = %q, want DISCENTE", got.Text)
		}
	})

	t.Run("used range skips leading blank rows and columns", func(t *testing.T) {
		data := buildWorkbook(t, "C3", [][]any{
			{"a@x.com", "Ana", "Silva", "docente", "1"},
			{},
			{"b@x.com", "Bea", "Souza", "discente", "2"},
		})

		grid, err := ReadXLSX(data)
		if err != nil {
			t.Fatalf("ReadXLSX() error = %v", err)
		}
		if len(grid) != 3 {
			t.Fatalf("expected 3 rows in used range, got %d", len(grid))
		}
		if grid[0][0].Text != "a@x.com" {
			t.Errorf("first cell = %+v, want a@x.com", grid[0][0])
		}
		for _, cell := range grid[1] {
			if !cell.IsEmpty() {
				t.Errorf("blank row inside range should be empty, got %+v", cell)
			}
		}
	})

	t.Run("empty sheet", func(t *testing.T) {
		grid, err := ReadXLSX(buildWorkbook(t, "A1", nil))
		if err != nil {
			t.Fatalf("ReadXLSX() error = %v", err)
		}
		if len(grid) != 0 {
			t.Errorf("expected no rows, got %d", len(grid))
		}
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := ReadXLSX([]byte("PK\x03\x04 not really a zip"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestReadCSV(t *testing.T) {
	data := []byte("\xef\xbb\xbfa@x.com,Jo\xe3o,Silva,docente,123\nb@x.com,Bea\n")

	grid, err := ReadCSV(data)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(grid) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(grid))
	}

	if grid[0][0].Text != "a@x.com" {
		t.Errorf("BOM should be stripped, got %q", grid[0][0].Text)
	}
	if got := grid[0][1]; got.Kind != models.CellBytes || string(got.Bytes) != "Jo\xe3o" {
		t.Errorf("invalid UTF-8 should be delivered as bytes, got %+v", got)
	}
	if got := grid[0][2]; got.Kind != models.CellText {
		t.Errorf("valid UTF-8 should be text, got %+v", got)
	}
	if len(grid[1]) != 2 {
		t.Errorf("short rows keep their width, got %d", len(grid[1]))
	}
}

func TestRead(t *testing.T) {
	t.Run("sniffs xlsx", func(t *testing.T) {
		data := buildWorkbook(t, "A1", [][]any{{"a", "b", "c", "docente", "1"}})
		if Detect(data) != FormatXLSX {
			t.Fatal("expected xlsx detection")
		}
		grid, err := Read(data, FormatAuto)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if len(grid) != 1 {
			t.Errorf("expected 1 row, got %d", len(grid))
		}
	})

	t.Run("sniffs csv", func(t *testing.T) {
		grid, err := Read([]byte("a,b,c,discente,1\n"), FormatAuto)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if len(grid) != 1 || grid[0][3].Text != "discente" {
			t.Errorf("unexpected grid %+v", grid)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		if _, err := Read(nil, FormatAuto); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := Read([]byte("x"), Format("ods")); !errors.Is(err, shared.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}

func TestFormatHelpers(t *testing.T) {
	tc := []struct {
		name string
		want Format
	}{
		{"roster.xlsx", FormatXLSX},
		{"ROSTER.XLSX", FormatXLSX},
		{"roster.csv", FormatCSV},
		{"roster", FormatAuto},
	}
	for _, tt := range tc {
		if got := FormatFromName(tt.name); got != tt.want {
			t.Errorf("FormatFromName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	if _, err := ParseFormat("ods"); !errors.Is(err, shared.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if f, err := ParseFormat(" CSV "); err != nil || f != FormatCSV {
		t.Errorf("ParseFormat(CSV) = %q, %v", f, err)
	}
}

// Package spreadsheet reads a roster document into a grid of tagged cells.
//
// XLSX workbooks are read with excelize: the first worksheet's used range, row 0 included.
// CSV files are accepted as well; fields that are not valid UTF-8 are handed on as raw bytes
// so the classifier can decode them with the configured legacy encoding.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/rolesplit/internal/models"
	"github.com/desertthunder/rolesplit/internal/shared"
	"github.com/xuri/excelize/v2"
)

// Format identifies the container of a roster document.
type Format string

const (
	FormatAuto Format = ""
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var (
	zipMagic = []byte("PK\x03\x04")
	utf8BOM  = []byte("\xef\xbb\xbf")
)

// FormatFromName guesses the format from a file extension, falling back to [FormatAuto].
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".txt":
		return FormatCSV
	default:
		return FormatAuto
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatXLSX, FormatCSV:
		return f, nil
	default:
		return FormatAuto, fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, s)
	}
}

// Detect sniffs the format from content: zip containers are XLSX, everything else is CSV.
func Detect(data []byte) Format {
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// Read parses data into a grid. [FormatAuto] sniffs the content.
func Read(data []byte, format Format) ([][]models.Cell, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", shared.ErrInvalidInput)
	}
	if format == FormatAuto {
		format = Detect(data)
	}

	switch format {
	case FormatXLSX:
		return ReadXLSX(data)
	case FormatCSV:
		return ReadCSV(data)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, format)
	}
}

// ReadXLSX returns the used range of the first worksheet.
//
// Numeric cells keep their raw value as [models.CellNumber]; every other non-empty cell is text.
func ReadXLSX(data []byte) ([][]models.Cell, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", shared.ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, shared.ErrEmptyWorkbook
	}
	sheet := sheets[0]

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw values of sheet %q: %w", sheet, err)
	}

	top, left, bottom := usedRange(formatted)
	grid := make([][]models.Cell, 0, bottom-top)
	for r := top; r < bottom; r++ {
		cells := make([]models.Cell, 0, models.RowWidth)
		for c := left; c < left+models.RowWidth; c++ {
			cell, err := xlsxCell(f, sheet, r, c, at(formatted, r, c), at(raw, r, c))
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// usedRange returns the first non-empty row, first non-empty column and one past the last non-empty row.
func usedRange(rows [][]string) (top, left, bottom int) {
	top, left = -1, -1
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			if top < 0 {
				top = r
			}
			if left < 0 || c < left {
				left = c
			}
			bottom = r + 1
		}
	}
	if top < 0 {
		return 0, 0, 0
	}
	return top, left, bottom
}

func at(rows [][]string, r, c int) string {
	if r < len(rows) && c < len(rows[r]) {
		return rows[r][c]
	}
	return ""
}

func xlsxCell(f *excelize.File, sheet string, r, c int, formatted, raw string) (models.Cell, error) {
	if formatted == "" && raw == "" {
		return models.EmptyCell(), nil
	}

	axis, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return models.Cell{}, fmt.Errorf("invalid cell position (%d, %d): %w", r, c, err)
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return models.Cell{}, fmt.Errorf("failed to read type of %s: %w", axis, err)
	}

	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return models.NumberCell(n), nil
		}
	}
	return models.TextCell(formatted), nil
}

// ReadCSV parses comma-separated rows. Rows keep their original width; a leading BOM is dropped.
func ReadCSV(data []byte) ([][]models.Cell, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid [][]models.Cell
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read CSV: %v", shared.ErrInvalidInput, err)
		}

		cells := make([]models.Cell, 0, len(record))
		for _, field := range record {
			cells = append(cells, csvCell(field))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func csvCell(field string) models.Cell {
	switch {
	case field == "":
		return models.EmptyCell()
	case !utf8.ValidString(field):
		return models.BytesCell([]byte(field))
	default:
		return models.TextCell(field)
	}
}

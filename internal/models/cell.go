package models

import (
	"strconv"
)

// CellKind tags which representation a [Cell] carries.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellBytes
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellBytes:
		return "bytes"
	default:
		return ""
	}
}

// Cell is one spreadsheet value. Exactly one of the payload fields is meaningful, selected by Kind.
//
// Readers decide the kind from the source cell type; consumers switch on Kind rather than guessing.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Bytes  []byte
}

// EmptyCell returns an absent value.
func EmptyCell() Cell { return Cell{Kind: CellEmpty} }

// TextCell wraps already decoded text.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// NumberCell wraps a numeric cell value.
func NumberCell(n float64) Cell { return Cell{Kind: CellNumber, Number: n} }

// BytesCell wraps an undecoded byte sequence in a legacy encoding.
func BytesCell(b []byte) Cell { return Cell{Kind: CellBytes, Bytes: b} }

// IsEmpty reports whether the cell is absent.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// FormatNumber renders a numeric cell without exponent or trailing zeros, so 12345678900 stays "12345678900".
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// RawRow holds the five cells of one roster line, taken by fixed column position.
type RawRow struct {
	Email      Cell
	FirstName  Cell
	LastName   Cell
	Role       Cell
	NationalID Cell
}

// RowWidth is the number of columns read from each grid row.
const RowWidth = 5

// NewRawRow cuts a grid row into a [RawRow]. Missing trailing cells are treated as empty and extra cells are ignored.
func NewRawRow(cells []Cell) RawRow {
	at := func(i int) Cell {
		if i < len(cells) {
			return cells[i]
		}
		return EmptyCell()
	}
	return RawRow{
		Email:      at(0),
		FirstName:  at(1),
		LastName:   at(2),
		Role:       at(3),
		NationalID: at(4),
	}
}

// RowsFromGrid converts every grid row with [NewRawRow], preserving order.
func RowsFromGrid(grid [][]Cell) []RawRow {
	rows := make([]RawRow, 0, len(grid))
	for _, cells := range grid {
		rows = append(rows, NewRawRow(cells))
	}
	return rows
}

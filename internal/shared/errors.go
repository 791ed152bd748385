package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrEncoding      = fmt.Errorf("unsupported text encoding")

	// Input errors
	ErrInvalidInput      = fmt.Errorf("invalid input")
	ErrUnsupportedFormat = fmt.Errorf("unsupported spreadsheet format")
	ErrEmptyWorkbook     = fmt.Errorf("workbook has no worksheets")
	ErrMissingArgument   = fmt.Errorf("missing required argument")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")

	// Classification errors
	ErrDecode       = fmt.Errorf("name decode failed")
	ErrMalformedRow = fmt.Errorf("malformed row")

	// Export errors
	ErrWrite        = fmt.Errorf("export write failed")
	ErrRunNotFound  = fmt.Errorf("export run not found")
	ErrSinkNotReady = fmt.Errorf("output sink not configured")
)

// DecodeError reports a name field whose bytes are not valid in the configured legacy encoding.
type DecodeError struct {
	Row      int    // zero-based index into the classified rows
	Field    string // "first_name" or "last_name"
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("row %d: %s: cannot decode %s as %s: %v", e.Row, ErrDecode, e.Field, e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// MalformedRowError reports a row whose role cannot be compared as text.
type MalformedRowError struct {
	Row    int
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, ErrMalformedRow, e.Reason)
}

func (e *MalformedRowError) Unwrap() error { return ErrMalformedRow }

// WriteError reports a failed category export.
//
// Partial is set once the sink was opened, meaning a truncated file may exist at Output.
type WriteError struct {
	Category string
	Output   string
	Op       string // open, write, flush or close
	Partial  bool
	Err      error
}

func (e *WriteError) Error() string {
	msg := fmt.Sprintf("%s %s (%s): %s: %v", ErrWrite, e.Output, e.Category, e.Op, e.Err)
	if e.Partial {
		msg += " (partial output may remain)"
	}
	return msg
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// IsPartialWrite reports whether err is a [WriteError] that may have left a partial file behind.
func IsPartialWrite(err error) bool {
	var we *WriteError
	return errors.As(err, &we) && we.Partial
}

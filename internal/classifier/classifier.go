package classifier

import (
	"strings"

	"github.com/desertthunder/rolesplit/internal/models"
	"github.com/desertthunder/rolesplit/internal/shared"
)

const (
	roleFaculty = "docente"
	roleStudent = "discente"
)

// Options configures a [Classifier].
type Options struct {
	Encoding     string // IANA name of the legacy 8-bit name encoding; empty means [DefaultEncoding]
	SkipHeader   bool   // Drop row 0 before classifying
	LenientRoles bool   // Send absent or numeric roles to other instead of failing
}

// Classifier partitions roster rows by role. It holds no per-call state and is safe for concurrent use.
type Classifier struct {
	dec  *Decoder
	opts Options
}

// New creates a [Classifier], resolving the configured encoding up front.
func New(opts Options) (*Classifier, error) {
	dec, err := NewDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	return &Classifier{dec: dec, opts: opts}, nil
}

// NewWithDecoder creates a [Classifier] around an existing [Decoder].
func NewWithDecoder(dec *Decoder, opts Options) *Classifier {
	return &Classifier{dec: dec, opts: opts}
}

// FromConfig builds a [Classifier] from the [input] config section.
func FromConfig(cfg shared.InputConfig) (*Classifier, error) {
	return New(Options{
		Encoding:     cfg.Encoding,
		SkipHeader:   cfg.SkipHeader,
		LenientRoles: cfg.LenientRoles,
	})
}

// ClassifyGrid cuts grid rows by column position and classifies them.
func (c *Classifier) ClassifyGrid(grid [][]models.Cell) (*models.Batch, error) {
	return c.Classify(models.RowsFromGrid(grid))
}

// Classify normalizes every row and appends it to its category in input order.
//
// The first failing row aborts the call with a [shared.DecodeError] or [shared.MalformedRowError].
func (c *Classifier) Classify(rows []models.RawRow) (*models.Batch, error) {
	start := 0
	if c.opts.SkipHeader && len(rows) > 0 {
		start = 1
	}

	batch := models.NewBatch()
	for i := start; i < len(rows); i++ {
		category, record, err := c.classifyRow(i, rows[i])
		if err != nil {
			return nil, err
		}
		batch.Add(category, record)
	}
	return batch, nil
}

func (c *Classifier) classifyRow(i int, row models.RawRow) (models.Category, models.Record, error) {
	category, err := c.categorize(i, row.Role)
	if err != nil {
		return models.Other, models.Record{}, err
	}

	email, err := c.text(row.Email)
	if err != nil {
		return models.Other, models.Record{}, &shared.DecodeError{Row: i, Field: "email", Encoding: c.dec.Name(), Err: err}
	}

	first, err := c.text(row.FirstName)
	if err != nil {
		return models.Other, models.Record{}, &shared.DecodeError{Row: i, Field: "first_name", Encoding: c.dec.Name(), Err: err}
	}

	last, err := c.text(row.LastName)
	if err != nil {
		return models.Other, models.Record{}, &shared.DecodeError{Row: i, Field: "last_name", Encoding: c.dec.Name(), Err: err}
	}

	code, err := NormalizeNationalID(row.NationalID, c.dec)
	if err != nil {
		return models.Other, models.Record{}, &shared.DecodeError{Row: i, Field: "national_id", Encoding: c.dec.Name(), Err: err}
	}

	return category, models.Record{
		Email:          email,
		FirstName:      first,
		LastName:       last,
		NationalIDCode: code,
	}, nil
}

// text resolves a cell to a string: text passes through, bytes go through the legacy decoder.
func (c *Classifier) text(cell models.Cell) (string, error) {
	switch cell.Kind {
	case models.CellText:
		return cell.Text, nil
	case models.CellNumber:
		return models.FormatNumber(cell.Number), nil
	case models.CellBytes:
		return c.dec.Decode(cell.Bytes)
	default:
		return "", nil
	}
}

func (c *Classifier) categorize(i int, role models.Cell) (models.Category, error) {
	var value string
	switch role.Kind {
	case models.CellText:
		value = role.Text
	case models.CellBytes:
		s, err := c.dec.Decode(role.Bytes)
		if err != nil {
			return models.Other, &shared.DecodeError{Row: i, Field: "role", Encoding: c.dec.Name(), Err: err}
		}
		value = s
	case models.CellEmpty:
		if c.opts.LenientRoles {
			return models.Other, nil
		}
		return models.Other, &shared.MalformedRowError{Row: i, Reason: "role is missing"}
	default:
		if c.opts.LenientRoles {
			return models.Other, nil
		}
		return models.Other, &shared.MalformedRowError{Row: i, Reason: "role is " + role.Kind.String() + ", not text"}
	}

	return RoleCategory(value), nil
}

// RoleCategory maps a role string to its category by case-insensitive whole-string match.
// Surrounding whitespace is significant: " docente" is other.
func RoleCategory(role string) models.Category {
	switch strings.ToLower(role) {
	case roleFaculty:
		return models.Faculty
	case roleStudent:
		return models.Student
	default:
		return models.Other
	}
}

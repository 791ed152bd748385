package classifier

import (
	"strings"

	"github.com/desertthunder/rolesplit/internal/models"
)

const (
	idPaddedWidth = 11
	idCodeWidth   = 6
	emptyIDCode   = "000000"
)

// NormalizeNationalID reduces a national-ID cell to its six-digit code.
//
// Non-digits are stripped, the digits are left-padded with '0' to 11 characters and the first 6 are returned.
func NormalizeNationalID(c models.Cell, dec *Decoder) (string, error) {
	var raw string
	switch c.Kind {
	case models.CellEmpty:
		return emptyIDCode, nil
	case models.CellText:
		raw = c.Text
	case models.CellNumber:
		raw = models.FormatNumber(c.Number)
	case models.CellBytes:
		s, err := dec.Decode(c.Bytes)
		if err != nil {
			return "", err
		}
		raw = s
	}

	if raw == "" {
		return emptyIDCode, nil
	}
	return normalizeIDText(raw), nil
}

func normalizeIDText(s string) string {
	digits := stripNonDigits(s)
	if len(digits) < idPaddedWidth {
		digits = strings.Repeat("0", idPaddedWidth-len(digits)) + digits
	}
	return digits[:idCodeWidth]
}

// stripNonDigits keeps ASCII 0-9 only; other Unicode digits are dropped too.
func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

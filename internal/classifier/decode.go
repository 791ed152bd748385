package classifier

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/rolesplit/internal/shared"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding is the legacy encoding spreadsheets emit names in.
const DefaultEncoding = "ISO-8859-1"

var errReplacement = errors.New("byte has no mapping in encoding")

// Decoder converts legacy 8-bit name bytes to UTF-8.
type Decoder struct {
	name string
	enc  encoding.Encoding
}

// NewDecoder resolves an IANA encoding name. Only single-byte charmaps are accepted.
func NewDecoder(name string) (*Decoder, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEncoding
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", shared.ErrEncoding, name)
	}
	if _, ok := enc.(*charmap.Charmap); !ok {
		return nil, fmt.Errorf("%w: %q is not a single-byte encoding", shared.ErrEncoding, name)
	}

	return &Decoder{name: name, enc: enc}, nil
}

// NewDecoderWith wraps an arbitrary [encoding.Encoding], bypassing the single-byte check.
func NewDecoderWith(name string, enc encoding.Encoding) *Decoder {
	return &Decoder{name: name, enc: enc}
}

// Name returns the configured encoding name.
func (d *Decoder) Name() string { return d.name }

// Decode converts b to UTF-8. Bytes the encoding cannot map are reported as an error.
func (d *Decoder) Decode(b []byte) (string, error) {
	out, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	if containsReplacement(out) {
		return "", errReplacement
	}
	return string(out), nil
}

// containsReplacement reports whether the decoder emitted U+FFFD for an unmapped byte.
func containsReplacement(b []byte) bool {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError {
			return true
		}
		b = b[size:]
	}
	return false
}

// SPDX-License-Identifier: MPL-2.0

package textenc

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

const (
	// CP437 is the single-byte DOS code page most mojibake passes through.
	CP437 Name = "cp437"
	// CP932 is Microsoft's Shift-JIS variant, the encoding of the game's scripts.
	CP932 Name = "cp932"
	// ShiftJIS is accepted as an alias of CP932.
	ShiftJIS Name = "shift_jis"
	// Windows31J is accepted as an alias of CP932.
	Windows31J Name = "windows-31j"
	// EUCJP is the Unix-side Japanese encoding.
	EUCJP Name = "euc-jp"
	// CP1252 is the Western Windows code page.
	CP1252 Name = "cp1252"
	// UTF8 is the identity encoding for output files.
	UTF8 Name = "utf-8"
)

// ErrUnknownEncoding is the sentinel error wrapped by UnknownEncodingError.
var ErrUnknownEncoding = errors.New("unknown encoding")

type (
	// Name identifies a supported encoding by its lower-case label.
	Name string

	// UnknownEncodingError is returned when a Name is not in the encoding table.
	UnknownEncodingError struct {
		Value Name
	}

	// Encoding pairs a Name with its golang.org/x/text implementation.
	Encoding struct {
		name Name
		enc  encoding.Encoding
	}
)

var table = map[Name]encoding.Encoding{
	CP437:      charmap.CodePage437,
	CP932:      japanese.ShiftJIS,
	ShiftJIS:   japanese.ShiftJIS,
	Windows31J: japanese.ShiftJIS,
	EUCJP:      japanese.EUCJP,
	CP1252:     charmap.Windows1252,
	UTF8:       unicode.UTF8,
}

// Error implements the error interface.
func (e *UnknownEncodingError) Error() string {
	return fmt.Sprintf("unknown encoding %q (supported: %s)", e.Value, strings.Join(SupportedNames(), ", "))
}

// Unwrap returns ErrUnknownEncoding for errors.Is.
func (e *UnknownEncodingError) Unwrap() error { return ErrUnknownEncoding }

// Lookup resolves a case-insensitive encoding label.
func Lookup(label string) (Encoding, error) {
	n := Name(strings.ToLower(strings.TrimSpace(label)))
	enc, ok := table[n]
	if !ok {
		return Encoding{}, &UnknownEncodingError{Value: n}
	}
	return Encoding{name: n, enc: enc}, nil
}

// MustLookup is Lookup for the package's own constants.
func MustLookup(n Name) Encoding {
	e, err := Lookup(string(n))
	if err != nil {
		panic(err)
	}
	return e
}

// SupportedNames lists the labels accepted by Lookup, sorted.
func SupportedNames() []string {
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, string(n))
	}
	slices.Sort(names)
	return names
}

// Name returns the label the encoding was looked up by.
func (e Encoding) Name() Name { return e.name }

// String implements fmt.Stringer.
func (e Encoding) String() string { return string(e.name) }

// IsZero reports whether e was never resolved.
func (e Encoding) IsZero() bool { return e.enc == nil }

// SPDX-License-Identifier: MPL-2.0

package textenc

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrUnrepresentable is returned when text contains a rune the encoding cannot express.
	ErrUnrepresentable = errors.New("rune not representable")
	// ErrInvalidSequence is returned when bytes are not valid under the decoding encoding.
	ErrInvalidSequence = errors.New("invalid byte sequence")
)

type (
	// UnrepresentableError reports the first rune an encoder rejected.
	UnrepresentableError struct {
		Encoding Name
		Rune     rune
		// Index is the rune index (not byte offset) within the input string.
		Index int
	}

	// InvalidSequenceError reports where decoding first failed.
	InvalidSequenceError struct {
		Encoding Name
		// Offset is the byte offset of the first undecodable byte.
		Offset int
	}
)

// Error implements the error interface.
func (e *UnrepresentableError) Error() string {
	return fmt.Sprintf("cannot encode %q (U+%04X) at position %d as %s", e.Rune, e.Rune, e.Index, e.Encoding)
}

// Unwrap returns ErrUnrepresentable for errors.Is.
func (e *UnrepresentableError) Unwrap() error { return ErrUnrepresentable }

// Error implements the error interface.
func (e *InvalidSequenceError) Error() string {
	return fmt.Sprintf("bytes are not valid %s at offset %d", e.Encoding, e.Offset)
}

// Unwrap returns ErrInvalidSequence for errors.Is.
func (e *InvalidSequenceError) Unwrap() error { return ErrInvalidSequence }

// Encode converts UTF-8 text to bytes in e, failing on the first unrepresentable rune.
func (e Encoding) Encode(s string) ([]byte, error) {
	out, err := e.enc.NewEncoder().Bytes([]byte(s))
	if err == nil {
		return out, nil
	}

	// Locate the offending rune for the error message.
	enc := e.enc.NewEncoder()
	idx := 0
	for _, r := range s {
		if _, rerr := enc.String(string(r)); rerr != nil {
			return nil, &UnrepresentableError{Encoding: e.name, Rune: r, Index: idx}
		}
		idx++
	}
	return nil, fmt.Errorf("encode as %s: %w", e.name, err)
}

// Decode converts bytes in e to UTF-8 text. Unlike the x/text decoders it does not
// substitute U+FFFD for bad input: any undecodable byte is an InvalidSequenceError.
func (e Encoding) Decode(b []byte) (string, error) {
	if e.name == UTF8 {
		if !utf8.Valid(b) {
			return "", &InvalidSequenceError{Encoding: e.name, Offset: firstInvalidUTF8(b)}
		}
		return string(b), nil
	}

	out, err := e.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", e.name, err)
	}

	text := string(out)
	for i, r := range text {
		if r != utf8.RuneError {
			continue
		}
		// Every rune before the replacement decoded cleanly, so re-encoding that
		// prefix yields its byte length in the source.
		prefix, perr := e.enc.NewEncoder().String(text[:i])
		offset := len(prefix)
		if perr != nil {
			offset = -1
		}
		return "", &InvalidSequenceError{Encoding: e.name, Offset: offset}
	}
	return text, nil
}

// DecodeLossy decodes b, replacing invalid sequences with U+FFFD.
// Meant for diagnostic output such as a tool's stderr.
func (e Encoding) DecodeLossy(b []byte) string {
	out, err := e.enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// Decode resolves label and strictly decodes b with it.
func Decode(b []byte, label string) (string, error) {
	enc, err := Lookup(label)
	if err != nil {
		return "", err
	}
	return enc.Decode(b)
}

// DecodeLossy resolves label and decodes b best-effort. Unknown labels fall back to
// treating b as UTF-8.
func DecodeLossy(b []byte, label string) string {
	enc, err := Lookup(label)
	if err != nil {
		return string(b)
	}
	return enc.DecodeLossy(b)
}

func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

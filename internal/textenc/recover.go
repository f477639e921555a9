// SPDX-License-Identifier: MPL-2.0

package textenc

import (
	"fmt"
	"strings"
)

type (
	// Recoverer undoes one specific mojibake: text whose bytes were meant for
	// Target but were decoded as Wrong.
	Recoverer struct {
		wrong  Encoding
		target Encoding
	}

	// LineFix records one line RecoverLines rewrote.
	LineFix struct {
		// Line is 1-based.
		Line   int
		Before string
		After  string
	}

	// LineReport summarises a RecoverLines pass.
	LineReport struct {
		Fixed []LineFix
		// Kept maps 1-based line numbers to the reason the line was left as is.
		// Lines that are pure ASCII are neither fixed nor kept.
		Kept map[int]error
	}
)

var defaultRecoverer = NewRecoverer(MustLookup(CP437), MustLookup(CP932))

// NewRecoverer returns a Recoverer for the given encoding pair.
func NewRecoverer(wrong, target Encoding) *Recoverer {
	return &Recoverer{wrong: wrong, target: target}
}

// Recover reverses CP437-decoded Shift-JIS. See Recoverer.Recover.
func Recover(garbled string) (string, error) {
	return defaultRecoverer.Recover(garbled)
}

// RecoverLines applies the CP437 -> Shift-JIS recovery line by line.
// See Recoverer.RecoverLines.
func RecoverLines(text string) (string, LineReport) {
	return defaultRecoverer.RecoverLines(text)
}

// Wrong returns the encoding the text was mistakenly decoded with.
func (r *Recoverer) Wrong() Encoding { return r.wrong }

// Target returns the encoding the bytes were actually written in.
func (r *Recoverer) Target() Encoding { return r.target }

// Recover re-encodes garbled under the wrong encoding and decodes the resulting bytes
// under the target one. It fails with an UnrepresentableError when garbled holds a rune
// the wrong encoding cannot produce, and with an InvalidSequenceError when the bytes
// are not valid in the target encoding.
func (r *Recoverer) Recover(garbled string) (string, error) {
	raw, err := r.wrong.Encode(garbled)
	if err != nil {
		return "", fmt.Errorf("re-encode as %s: %w", r.wrong, err)
	}
	text, err := r.target.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("decode as %s: %w", r.target, err)
	}
	return text, nil
}

// RecoverLines runs Recover over every line of text independently. Lines that fail
// are kept verbatim, which lets a file mixing repaired and garbled literals be fixed
// in one pass. Line endings are preserved.
func (r *Recoverer) RecoverLines(text string) (string, LineReport) {
	report := LineReport{Kept: make(map[int]error)}

	lines := strings.SplitAfter(text, "\n")
	var out strings.Builder
	out.Grow(len(text))

	for i, line := range lines {
		body, eol := splitEOL(line)
		if isASCII(body) {
			out.WriteString(line)
			continue
		}
		fixed, err := r.Recover(body)
		if err != nil {
			report.Kept[i+1] = err
			out.WriteString(line)
			continue
		}
		report.Fixed = append(report.Fixed, LineFix{Line: i + 1, Before: body, After: fixed})
		out.WriteString(fixed)
		out.WriteString(eol)
	}

	return out.String(), report
}

func splitEOL(line string) (body, eol string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

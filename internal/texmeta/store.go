// SPDX-License-Identifier: MPL-2.0

package texmeta

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ModeEmbedded stores the tag inside the PNG.
	ModeEmbedded Mode = "embedded"
	// ModeSidecar stores the tag in a text file next to the PNG.
	ModeSidecar Mode = "sidecar"

	// DefaultKey is the tEXt keyword used by EmbeddedStore.
	DefaultKey = "DDSFormat"
	// DefaultSidecarSuffix replaces the image extension for SidecarStore.
	DefaultSidecarSuffix = ".format"
)

var (
	// ErrMissing is returned by Read when the image carries no format tag.
	ErrMissing = errors.New("format metadata missing")
	// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
	ErrInvalidMode = errors.New("invalid metadata mode")
	// ErrInvalidTag is returned by Write for tags that could not be read back exactly.
	ErrInvalidTag = errors.New("invalid format tag")
)

type (
	// Mode selects a metadata storage strategy.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	InvalidModeError struct {
		Value Mode
	}

	// Store persists and recovers a format tag for an image path.
	Store interface {
		// Write records tag for the image at imagePath.
		Write(imagePath, tag string) error
		// Read returns the recorded tag, or an error wrapping ErrMissing.
		Read(imagePath string) (string, error)
		// Mode reports the strategy.
		Mode() Mode
	}

	// Options configures New.
	Options struct {
		Mode Mode
		// Key is the tEXt keyword for ModeEmbedded; empty means DefaultKey.
		Key string
		// Suffix is the sidecar suffix for ModeSidecar; empty means DefaultSidecarSuffix.
		Suffix string
	}
)

// Error implements the error interface.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid metadata mode %q (valid: %s, %s)", e.Value, ModeEmbedded, ModeSidecar)
}

// Unwrap returns ErrInvalidMode for errors.Is.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// IsValid returns whether the Mode is a known strategy,
// and a list of validation errors if it is not.
func (m Mode) IsValid() (bool, []error) {
	switch m {
	case ModeEmbedded, ModeSidecar:
		return true, nil
	default:
		return false, []error{&InvalidModeError{Value: m}}
	}
}

// String returns the string representation of the Mode.
func (m Mode) String() string { return string(m) }

// New returns the Store selected by opts.Mode.
func New(opts Options) (Store, error) {
	if ok, errs := opts.Mode.IsValid(); !ok {
		return nil, errs[0]
	}
	if opts.Mode == ModeSidecar {
		return NewSidecarStore(opts.Suffix), nil
	}
	return NewEmbeddedStore(opts.Key), nil
}

// validateTag rejects tags that would not survive a write/read cycle unchanged.
func validateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTag)
	}
	if strings.TrimSpace(tag) != tag {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidTag, tag)
	}
	for _, r := range tag {
		if r < 0x20 || r > 0x7E {
			return fmt.Errorf("%w: %q contains non-printable or non-ASCII characters", ErrInvalidTag, tag)
		}
	}
	return nil
}

// writeFileAtomic replaces path via a temp file in the same directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

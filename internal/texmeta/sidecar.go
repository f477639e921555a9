// SPDX-License-Identifier: MPL-2.0

package texmeta

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SidecarStore keeps the tag in a text file beside the image.
type SidecarStore struct {
	suffix string
}

// NewSidecarStore returns a store whose sidecar files replace the image
// extension with suffix.
func NewSidecarStore(suffix string) *SidecarStore {
	if suffix == "" {
		suffix = DefaultSidecarSuffix
	}
	if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	return &SidecarStore{suffix: suffix}
}

// Mode implements Store.
func (s *SidecarStore) Mode() Mode { return ModeSidecar }

// Suffix returns the sidecar suffix, including its leading dot.
func (s *SidecarStore) Suffix() string { return s.suffix }

// Path returns the sidecar file path for imagePath.
func (s *SidecarStore) Path(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + s.suffix
}

// Write implements Store. The sidecar holds the tag and nothing else.
func (s *SidecarStore) Write(imagePath, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}
	return writeFileAtomic(s.Path(imagePath), []byte(tag), 0o644)
}

// Read implements Store. Surrounding whitespace (a trailing newline added by an
// editor, say) is trimmed; an empty sidecar counts as missing.
func (s *SidecarStore) Read(imagePath string) (string, error) {
	path := s.Path(imagePath)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", path, ErrMissing)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	tag := strings.TrimSpace(string(raw))
	if tag == "" {
		return "", fmt.Errorf("%s is empty: %w", path, ErrMissing)
	}
	return tag, nil
}

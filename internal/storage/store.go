// Package storage persists attachment bytes to a local directory.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultDir is the output directory used when none is configured.
const DefaultDir = "attachments"

// fallbackName replaces filenames that sanitize to nothing usable.
const fallbackName = "untitled.txt"

// ErrWrite marks failures creating the output directory or writing a file.
var ErrWrite = errors.New("attachment write failed")

var separators = strings.NewReplacer("/", "", `\`, "")

// SanitizeFilename strips path separators so the result always names a file
// directly inside the output directory. It does not prevent collisions.
func SanitizeFilename(name string) string {
	name = separators.Replace(name)
	switch name {
	case "", ".", "..":
		return fallbackName
	}
	return name
}

// Store writes attachments into a single directory on fs.
type Store struct {
	fs  afero.Fs
	dir string
}

// New returns a Store writing into dir on fs. An empty dir selects DefaultDir.
func New(fs afero.Fs, dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{fs: fs, dir: dir}
}

// NewOS returns a Store on the operating system filesystem.
func NewOS(dir string) *Store {
	return New(afero.NewOsFs(), dir)
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data verbatim to the sanitized name inside the output directory,
// creating the directory if needed. An existing file is overwritten.
// It returns the path written.
func (s *Store) Save(name string, data []byte) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create output directory %s: %w", ErrWrite, s.dir, err)
	}

	path := filepath.Join(s.dir, SanitizeFilename(name))
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return path, nil
}

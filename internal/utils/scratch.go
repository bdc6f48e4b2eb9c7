package utils

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ScratchFile is a uniquely named temporary artifact written for one request.
// Concurrent requests never collide because every file carries a fresh UUID.
type ScratchFile struct {
	Path string
}

// NewScratchFile writes content to <dir>/<prefix>-<uuid><ext> and returns a
// handle whose Remove is safe to defer on every exit path.
func NewScratchFile(dir, prefix, ext string, content []byte) (*ScratchFile, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create scratch directory")
	}

	name := prefix + "-" + uuid.New().String() + ext
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return nil, errors.Wrap(err, "failed to write scratch file")
	}

	return &ScratchFile{Path: path}, nil
}

// Remove deletes the file. Calling it twice is harmless.
func (f *ScratchFile) Remove() {
	if f == nil || f.Path == "" {
		return
	}
	_ = os.Remove(f.Path)
}

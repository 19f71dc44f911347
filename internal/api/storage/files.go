package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Files keeps uploaded attachments on disk and serves them under a public URL
type Files struct {
	dir       string
	publicURL string
}

func NewFiles(dir, publicURL string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Files{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Dir returns the directory files are written to
func (f *Files) Dir() string { return f.dir }

// Save writes data under a fresh name and returns its public URL
func (f *Files) Save(original string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".pdf"
	}
	name := uuid.NewString() + ext

	if err := os.WriteFile(filepath.Join(f.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", original, err)
	}
	return f.publicURL + "/" + name, nil
}

// Remove deletes a file previously returned by Save. Unknown URLs are ignored.
func (f *Files) Remove(url string) error {
	if !strings.HasPrefix(url, f.publicURL+"/") {
		return nil
	}
	name := path.Base(url)

	err := os.Remove(filepath.Join(f.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

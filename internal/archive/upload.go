package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Uploads stages externally supplied PDFs into the upload directory,
// keeping only files that pass validation.
type Uploads struct {
	dir       string
	validator *Validator
}

// NewUploads creates an upload staging area backed by dir.
func NewUploads(dir string, validator *Validator) *Uploads {
	return &Uploads{dir: dir, validator: validator}
}

// Store writes data under the given file name, validates it, and removes
// the file again if validation fails. The name must be a bare .pdf file
// name; path separators are rejected.
func (u *Uploads) Store(name string, data []byte) (*ValidationResult, error) {
	if name == "" {
		return nil, fmt.Errorf("file name cannot be empty")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("file name must not contain path separators: %s", name)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return nil, fmt.Errorf("file is not a PDF: %s", name)
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", u.dir, err)
	}
	path := filepath.Join(u.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write upload %s: %w", path, err)
	}

	result, err := u.validator.ValidateFile(path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	if !result.Valid {
		os.Remove(path)
	}
	return result, nil
}

package archive

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validator checks that a file is a structurally sound PDF.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator that refuses files larger than
// maxFileSize bytes.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidationResult reports the outcome of validating one file.
type ValidationResult struct {
	Path    string
	Valid   bool
	Size    int64
	Message string
}

// ValidateFile runs basic file checks followed by a relaxed structural
// validation. Validation failure is reported in the result, not as an
// error; errors are reserved for being unable to run the checks at all.
func (v *Validator) ValidateFile(path string) (*ValidationResult, error) {
	result := &ValidationResult{Path: path}

	info, err := v.checkBasics(path)
	if err != nil {
		result.Message = err.Error()
		return result, nil
	}
	result.Size = info.Size()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		result.Message = fmt.Sprintf("invalid PDF structure: %v", err)
		return result, nil
	}

	result.Valid = true
	result.Message = "PDF is valid"
	return result, nil
}

func (v *Validator) checkBasics(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("file is not a PDF: %s", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}
	if info.Size() > v.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), v.maxFileSize)
	}
	return info, nil
}

package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "agrocaged/internal/errors"
)

// Supported microdata extensions
var supportedInputExtensions = map[string]bool{
	".csv":     true,
	".txt":     true,
	".xlsx":    true,
	".parquet": true,
}

// FileValidator checks input and output locations before a run touches them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputFile checks that the microdata file exists, is readable and has a
// supported extension. An absent file is a missing-input error.
func (v *FileValidator) ValidateInputFile(path string) error {
	if err := v.ValidateFile(path, "microdata"); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedInputExtensions[ext] {
		v.logger.Error("unsupported input format",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewAppValidationError(
			fmt.Sprintf("unsupported input format %q (expected csv, txt, xlsx or parquet)", ext)).
			WithContext("path", path)
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewAppValidationError("input is a temporary office lock file").
			WithContext("path", path)
	}
	return nil
}

// ValidateFile checks that path is a readable regular file
func (v *FileValidator) ValidateFile(path, what string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("file does not exist",
			slog.String("what", what),
			slog.String("file", path))
		return apperrors.NewMissingInputError(what, path, err)
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("stat %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewMissingInputError(what, path, fmt.Errorf("%s is a directory", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOptionalFile is ValidateFile for assets that may be left unset
func (v *FileValidator) ValidateOptionalFile(path, what string) error {
	if path == "" {
		return nil
	}
	return v.ValidateFile(path, what)
}

// ValidateOutputDirectory ensures the parent of the output directory exists and is
// writable, since outputs are staged next to it before being moved into place.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	parent := filepath.Dir(filepath.Clean(dir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		v.logger.Error("failed to create output parent directory",
			slog.String("directory", parent),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("create output directory %s", parent), err)
	}

	probe, err := os.CreateTemp(parent, ".write_test_*")
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", parent),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", parent), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("output directory validated", slog.String("directory", dir))
	return nil
}

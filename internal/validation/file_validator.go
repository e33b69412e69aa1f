package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileValidator provides file system checks shared by the server and the CLI
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory checks that dir is a directory and returns how many
// entries match pattern. No matches is not an error.
func (v *FileValidator) ValidateInputDirectory(dir string, pattern string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Warn("Input directory does not exist", slog.String("directory", dir))
		return 0, fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	if pattern == "" {
		return 0, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	count := 0
	for _, match := range matches {
		if fi, err := os.Stat(match); err == nil && !fi.IsDir() {
			count++
		}
	}

	v.logger.Debug("Input directory validated",
		slog.String("directory", dir),
		slog.String("pattern", pattern),
		slog.Int("files_found", count))
	return count, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateFile checks that path is a readable regular file. When extensions
// are given the file must carry one of them (case-insensitive).
func (v *FileValidator) ValidateFile(path string, extensions ...string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist: %w", path, err)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	if len(extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		allowed := false
		for _, e := range extensions {
			if ext == strings.ToLower(e) {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("file %s has extension %q, want one of %s", path, ext, strings.Join(extensions, ", "))
		}
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Warn("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

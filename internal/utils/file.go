package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var textExtensions = []string{".txt", ".md", ".markdown", ".text"}

// ValidateInputFile checks that path names a readable regular file
func ValidateInputFile(path string) error {
	if path == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("file does not exist: %s", path)
	case err != nil:
		return fmt.Errorf("cannot access file %s: %w", path, err)
	case info.IsDir():
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", path, err)
	}
	return f.Close()
}

// ValidateFileSize rejects files larger than maxSize bytes; zero disables the check
func ValidateFileSize(path string, maxSize int64) error {
	if maxSize <= 0 {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file %s: %w", path, err)
	}
	if info.Size() > maxSize {
		return fmt.Errorf("file %s is %s, larger than the %s limit",
			path, FormatFileSize(info.Size()), FormatFileSize(maxSize))
	}
	return nil
}

// EnsureParentDir creates the directory that will hold path
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// IsTextFile reports whether path has a plain-text or markdown extension
func IsTextFile(path string) bool {
	return slices.Contains(textExtensions, strings.ToLower(filepath.Ext(path)))
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

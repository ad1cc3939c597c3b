package common

import (
	"fmt"
	"os"

	"jobanalyzer/internal/errors"
	"jobanalyzer/internal/utils"
)

// FileProcessor reads command inputs and writes command output
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance.
// A maxFileSize of zero disables the size check.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ValidateAndReadFiles checks every path before reading any of them
func (fp *FileProcessor) ValidateAndReadFiles(paths ...string) ([]string, error) {
	for _, path := range paths {
		if err := utils.ValidateInputFile(path); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", path), err)
		}
		if err := utils.ValidateFileSize(path, fp.maxFileSize); err != nil {
			return nil, errors.NewValidationError("INPUT_FILE_TOO_LARGE",
				fmt.Sprintf("Invalid file %s", path), err)
		}
		if !utils.IsTextFile(path) && fp.logger != nil {
			fp.logger.Warn("File may not be a text file", "filename", path)
		}
	}

	contents := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("Cannot read file: %s", path), err)
		}
		contents = append(contents, string(data))
	}
	return contents, nil
}

// WriteFile writes content to path, creating parent directories
func (fp *FileProcessor) WriteFile(path, content string) error {
	if err := utils.EnsureParentDir(path); err != nil {
		return errors.NewIOError("DIRECTORY_CREATE_FAILED", "Cannot create output directory", err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", path), err)
	}
	return nil
}

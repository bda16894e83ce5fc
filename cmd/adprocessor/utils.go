package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Aryanshanu/pesto/internal/adprocessor"
	"github.com/Aryanshanu/pesto/internal/logging"
)

// newLogger builds the command logger, optionally teeing output to a file.
func newLogger(level, logFile string) (*slog.Logger, *os.File) {
	if logFile == "" {
		return logging.New("", "", level)
	}
	return logging.New(filepath.Dir(logFile), filepath.Base(logFile), level)
}

// scanDirectoryForDataFiles scans a directory for supported data files
func scanDirectoryForDataFiles(dirPath string, recursive bool, logger *slog.Logger) ([]string, error) {
	var dataFiles []string

	// Check if directory exists
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory %s: %v", dirPath, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	logger.Debug("Scanning directory.", "path", dirPath, "recursive", recursive)

	if recursive {
		// Walk directory tree recursively
		err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				logger.Warn("Error accessing path, skipping.", "path", path, "error", err.Error())
				return nil // Continue walking
			}

			if !info.IsDir() && hasDataFileExtension(info.Name()) {
				dataFiles = append(dataFiles, path)
			}

			return nil
		})
	} else {
		// Scan only the specified directory (non-recursive)
		entries, err := os.ReadDir(dirPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %v", dirPath, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() && hasDataFileExtension(entry.Name()) {
				fullPath := filepath.Join(dirPath, entry.Name())
				dataFiles = append(dataFiles, fullPath)
			}
		}
	}

	if err != nil {
		return nil, fmt.Errorf("error scanning directory: %v", err)
	}

	logger.Debug("Directory scan completed.", "path", dirPath, "files", len(dataFiles))

	// Sort files for consistent processing order
	sort.Strings(dataFiles)

	return dataFiles, nil
}

// hasDataFileExtension reports whether a file name carries one of the
// supported data file extensions.
func hasDataFileExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range adprocessor.DataFileExtensions() {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

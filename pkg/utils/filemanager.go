// =============================================================================
// txnbatch - File Manager Utility
// =============================================================================
//
// This module provides the file operations behind the processing pipeline:
//   - Directory creation for the four configured folders
//   - Input discovery in lexicographic order
//   - Moving processed files to the archive or error folder
//   - Output file naming
//
// MOVE POLICY:
//   - A file is moved with os.Rename, falling back to copy-then-delete when
//     the folders live on different devices.
//   - An existing destination is never overwritten. The move is skipped, a
//     warning is logged, and the source stays where it is.
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for one run.
type FileManager struct {
	// InputDir is where data files are read from and generated into.
	InputDir string

	// OutputDir receives the aggregate reports.
	OutputDir string

	// ArchiveDir receives files without validation errors.
	ArchiveDir string

	// ErrorDir receives files with validation errors and their error logs.
	ErrorDir string

	logger *zap.Logger
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, archiveDir, errorDir string, logger *zap.Logger) *FileManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileManager{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		ErrorDir:   errorDir,
		logger:     logger,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all configured directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{
		fm.InputDir,
		fm.OutputDir,
		fm.ArchiveDir,
		fm.ErrorDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the data files of the input directory.
//
// RETURNS:
//   - Base names of the regular, non-hidden files, sorted lexicographically.
//     Generated names embed a yyyyMMdd_HHmmss timestamp, so this order is
//     also their creation order.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	return names, nil
}

// =============================================================================
// FILE MOVES
// =============================================================================

// MoveResult describes the outcome of a move.
type MoveResult struct {
	// Destination is the path the file was (or would have been) moved to.
	Destination string

	// Moved is false when the destination already existed.
	Moved bool
}

// MoveToArchive moves a processed file into the archive directory.
func (fm *FileManager) MoveToArchive(filePath string) (MoveResult, error) {
	return fm.moveInto(fm.ArchiveDir, filePath)
}

// MoveToError moves a rejected file into the error directory.
func (fm *FileManager) MoveToError(filePath string) (MoveResult, error) {
	return fm.moveInto(fm.ErrorDir, filePath)
}

// moveInto moves filePath into dir under its base name without overwriting.
func (fm *FileManager) moveInto(dir, filePath string) (MoveResult, error) {
	destination := filepath.Join(dir, filepath.Base(filePath))
	result := MoveResult{Destination: destination}

	if FileExists(destination) {
		fm.logger.Warn("destination already exists, file not moved",
			zap.String("file", filePath),
			zap.String("destination", destination))
		return result, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return result, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.Rename(filePath, destination); err != nil {
		// Cross-device rename: copy, then remove the original.
		if err := copyFile(filePath, destination); err != nil {
			return result, fmt.Errorf("failed to copy %s to %s: %w", filePath, dir, err)
		}
		if err := os.Remove(filePath); err != nil {
			return result, fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	fm.logger.Debug("file moved",
		zap.String("file", filePath),
		zap.String("destination", destination))

	result.Moved = true
	return result, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a file name format.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Date (YYYYMMDD)
//               {time}      - Time (HHMMSS)
//   - params: Extra placeholder values, keyed without braces.
//   - now:    The time used for the time-based placeholders.
//
// EXAMPLE:
//   format: "TestData_{timestamp}.csv"
//   output: "TestData_20240115_143022.csv"
func GenerateOutputFileName(format string, params map[string]string, now time.Time) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst. dst must not exist.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	// A partial copy would block every later move of the same name.
	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		os.Remove(dst)
		return err
	}
	if err := destFile.Sync(); err != nil {
		destFile.Close()
		os.Remove(dst)
		return err
	}

	return destFile.Close()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

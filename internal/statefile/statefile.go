// Package statefile provides all-or-nothing persistence for the JSON
// state documents. Writes go through a temp sibling plus a backup of the
// previous version so the document at a path is always either the old
// valid version or the new valid version, never a partial write. Reads
// recover from the backup sibling when the primary fails to parse.
//
// This is the only package permitted to touch the filesystem for document
// storage.
package statefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"galley/internal/fileutil"
	"galley/internal/logging"
)

// ErrCorrupt indicates a document that exists but cannot be parsed, and
// whose backup is absent or equally unusable.
var ErrCorrupt = errors.New("state file corrupt")

// TempSuffix and BackupSuffix name the transient siblings a write
// produces next to the target path.
const (
	TempSuffix   = ".tmp"
	BackupSuffix = ".backup"
)

// Store performs atomic reads and writes of JSON documents.
type Store struct {
	logger *slog.Logger
}

// NewStore returns a store that logs recovery events to the given logger.
// A nil logger is replaced with a no-op logger.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{logger: logger}
}

// Write serializes doc and atomically replaces the file at path with it.
// The previous version, if any, survives as a backup until the rename
// lands; on any failure the temp file is removed and the original file is
// left untouched.
func (s *Store) Write(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file %s: %w", path, err)
	}

	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	tempPath := path + TempSuffix
	backupPath := path + BackupSuffix

	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write state file %s: %w", path, err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := fileutil.CopyFile(path, backupPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("write state file %s: back up previous version: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		_ = os.Remove(tempPath)
		return fmt.Errorf("write state file %s: %w", path, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("write state file %s: %w", path, err)
	}

	if err := os.Remove(backupPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		// The write itself landed; a leftover backup is harmless and the
		// next write replaces it.
		s.logger.Warn("remove backup after write", logging.String("path", backupPath), logging.Error(err))
	}

	return nil
}

// Read returns the raw bytes of the document at path, guaranteed to be
// valid JSON. A missing file returns (nil, nil): absence is a signal, not
// an error. An unparsable primary is recovered from its backup sibling
// when possible; the backup's bytes are promoted back over the primary.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file %s: %w", path, err)
	}
	if json.Valid(data) {
		return data, nil
	}

	backupPath := path + BackupSuffix
	backupData, backupErr := os.ReadFile(backupPath)
	if backupErr != nil || !json.Valid(backupData) {
		if backupErr == nil {
			backupErr = errors.New("backup is not valid JSON")
		}
		return nil, fmt.Errorf("%w: %s is not valid JSON and backup %s is unusable: %v", ErrCorrupt, path, backupPath, backupErr)
	}

	s.logger.Warn("state file corrupted, recovered from backup",
		logging.String("path", path),
		logging.String("backup", backupPath),
	)
	if err := os.WriteFile(path, backupData, 0o644); err != nil {
		return nil, fmt.Errorf("restore %s from backup: %w", path, err)
	}
	return backupData, nil
}

// ReadInto reads the document at path into v. The boolean reports whether
// the document existed.
func (s *Store) ReadInto(path string, v any) (bool, error) {
	data, err := s.Read(path)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode state file %s: %w", path, err)
	}
	return true, nil
}

// EnsureDir creates the directory and any missing parents. Idempotent.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", path, err)
	}
	return nil
}

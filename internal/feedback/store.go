// Package feedback stores user reports about dark patterns that were missed
// or wrongly flagged.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyDescription is returned when a report has no description.
var ErrEmptyDescription = errors.New("feedback description is empty")

// Record is a single user report.
type Record struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
}

// Store appends records to a JSON file. Writers in different processes are
// serialized with a lock file next to it.
type Store struct {
	path        string
	lockTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewStore creates a Store backed by path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, lockTimeout: 5 * time.Second, logger: logger, now: time.Now}
}

// Path returns the file the records are stored in.
func (s *Store) Path() string { return s.path }

// Add validates and appends a report for url, returning the stored record.
func (s *Store) Add(ctx context.Context, description, url string) (Record, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Record{}, ErrEmptyDescription
	}
	rec := Record{
		ID:          uuid.NewString(),
		Timestamp:   s.now().UTC(),
		Description: description,
		URL:         url,
	}
	err := s.withLock(ctx, func() error {
		records, err := s.read()
		if err != nil {
			return err
		}
		return s.write(append(records, rec))
	})
	if err != nil {
		return Record{}, err
	}
	s.logger.Info("feedback stored", zap.String("id", rec.ID), zap.String("url", url))
	return rec, nil
}

// List returns all stored records, oldest first. A missing file is empty.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.withLock(ctx, func() error {
		var err error
		records, err = s.read()
		return err
	})
	return records, err
}

func (s *Store) read() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback file: %w", err)
	}
	records := []Record{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse feedback file: %w", err)
	}
	return records, nil
}

// write replaces the file atomically using temp file + rename.
func (s *Store) write(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".feedback-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace feedback file: %w", err)
	}
	return nil
}

// withLock executes fn while holding an exclusive file lock
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create feedback directory: %w", err)
	}
	fileLock := flock.New(s.path + ".lock")

	ctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock within timeout (%v)", s.lockTimeout)
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.Warn("failed to release lock", zap.Error(err))
		}
	}()

	return fn()
}

// Package store is the single shared mutable resource of the pipeline: the
// telemetry producer, the dispatch worker and the gateway all read and write
// through it. Writes are serialized per logical record behind one write lock;
// reads run concurrently and observe pre- or post-write state, never a
// partial record.
package store

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/agrimesh/fieldops/internal/model"
)

var (
	// ErrNotFound indicates an unknown command_id.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID indicates a command_id collision on submit.
	ErrDuplicateID = errors.New("duplicate command id")
	// ErrTerminal indicates a rejected transition out of a terminal status.
	ErrTerminal = errors.New("command already terminal")
	// ErrUnavailable wraps underlying storage I/O failures so callers can
	// degrade to an explicit "unavailable" signal instead of a silent empty
	// result.
	ErrUnavailable = errors.New("store unavailable")
)

// Store wraps the SQLite database holding readings, commands and rovers.
type Store struct {
	db *gorm.DB
	mu sync.Mutex // serializes all writes
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&model.Reading{}, &model.Command{}, &model.Rover{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return &Store{db: db}, nil
}

// PutReading appends one reading. Append-only: readings are never updated or
// deleted.
func (s *Store) PutReading(r model.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Create(&r).Error; err != nil {
		return fmt.Errorf("%w: put reading %s: %v", ErrUnavailable, r.ProbeID, err)
	}
	return nil
}

// LatestReadings returns the maximum-timestamp reading per probe, ordered by
// probe_id. Ties on timestamp resolve to the later insert.
func (s *Store) LatestReadings() ([]model.Reading, error) {
	var out []model.Reading
	err := s.db.Raw(`
		SELECT * FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY probe_id ORDER BY timestamp DESC, id DESC
			) AS rn FROM readings
		) WHERE rn = 1 ORDER BY probe_id`).Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: latest readings: %v", ErrUnavailable, err)
	}
	return out, nil
}

// ReadingHistory returns readings for one probe within the trailing window,
// newest first.
func (s *Store) ReadingHistory(probeID string, since time.Duration) ([]model.Reading, error) {
	cutoff := time.Now().UTC().Add(-since)
	var out []model.Reading
	err := s.db.
		Where("probe_id = ? AND timestamp > ?", probeID, cutoff).
		Order("timestamp DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: history %s: %v", ErrUnavailable, probeID, err)
	}
	return out, nil
}

// SubmitCommand inserts a command with status pending. The command_id must be
// fresh; a collision returns ErrDuplicateID.
func (s *Store) SubmitCommand(c model.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Status = model.StatusPending
	c.ExecutedAt = nil
	c.Result = nil
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Command{}).Where("command_id = ?", c.CommandID).Count(&n).Error; err != nil {
			return fmt.Errorf("%w: submit %s: %v", ErrUnavailable, c.CommandID, err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateID, c.CommandID)
		}
		if err := tx.Create(&c).Error; err != nil {
			return fmt.Errorf("%w: submit %s: %v", ErrUnavailable, c.CommandID, err)
		}
		return nil
	})
	return err
}

// PendingCommands returns all pending commands oldest-first. The claim is
// non-destructive: nothing is marked, the single dispatch worker is the only
// intended caller.
func (s *Store) PendingCommands() ([]model.Command, error) {
	var out []model.Command
	err := s.db.
		Where("status = ?", model.StatusPending).
		Order("submitted_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: pending commands: %v", ErrUnavailable, err)
	}
	return out, nil
}

// CommandHistory returns commands most-recent-first, optionally filtered by
// status, capped at limit.
func (s *Store) CommandHistory(status model.CommandStatus, limit int) ([]model.Command, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.db.Order("submitted_at DESC, id DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []model.Command
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("%w: command history: %v", ErrUnavailable, err)
	}
	return out, nil
}

// GetCommand fetches a single command by command_id.
func (s *Store) GetCommand(commandID string) (model.Command, error) {
	var c model.Command
	err := s.db.Where("command_id = ?", commandID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Command{}, fmt.Errorf("%w: command %s", ErrNotFound, commandID)
	}
	if err != nil {
		return model.Command{}, fmt.Errorf("%w: get command %s: %v", ErrUnavailable, commandID, err)
	}
	return c, nil
}

// UpdateCommandStatus applies the terminal transition pending → completed or
// pending → failed. executed_at and result are set atomically with the status.
// Repeating the same terminal status is a no-op; any other transition out of
// a terminal state, or a transition back to pending, is rejected with
// ErrTerminal. Unknown ids return ErrNotFound.
func (s *Store) UpdateCommandStatus(commandID string, status model.CommandStatus, result string) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: cannot set %s back to %s", ErrTerminal, commandID, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Transaction(func(tx *gorm.DB) error {
		var c model.Command
		err := tx.Where("command_id = ?", commandID).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: command %s", ErrNotFound, commandID)
		}
		if err != nil {
			return fmt.Errorf("%w: update %s: %v", ErrUnavailable, commandID, err)
		}
		if c.Status.Terminal() {
			if c.Status == status {
				return nil // idempotent repeat
			}
			return fmt.Errorf("%w: %s is %s", ErrTerminal, commandID, c.Status)
		}
		now := time.Now().UTC()
		updates := map[string]any{
			"status":      status,
			"executed_at": &now,
			"result":      &result,
		}
		if err := tx.Model(&model.Command{}).Where("command_id = ?", commandID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: update %s: %v", ErrUnavailable, commandID, err)
		}
		return nil
	})
}

// PendingCount returns the number of commands awaiting dispatch.
func (s *Store) PendingCount() (int64, error) {
	var n int64
	if err := s.db.Model(&model.Command{}).Where("status = ?", model.StatusPending).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: pending count: %v", ErrUnavailable, err)
	}
	return n, nil
}

// UpsertRover inserts or refreshes one rover record.
func (s *Store) UpsertRover(r model.Rover) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&r).Error; err != nil {
		return fmt.Errorf("%w: upsert rover %s: %v", ErrUnavailable, r.RoverID, err)
	}
	return nil
}

// Rovers returns the pool ordered by rover_id.
func (s *Store) Rovers() ([]model.Rover, error) {
	var out []model.Rover
	if err := s.db.Order("rover_id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("%w: rovers: %v", ErrUnavailable, err)
	}
	return out, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() {
	sqlDB, err := s.db.DB()
	if err != nil {
		log.Printf("store: close: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("store: close: %v", err)
	}
}

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/models"
)

// Store persists document snapshots and the batch run log.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB { return s.db }

// Close releases the connection.
func (s *Store) Close() error { return Close(s.db) }

// LoadSnapshot returns the snapshot for document, or nil when none exists.
func (s *Store) LoadSnapshot(ctx context.Context, document string) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := s.db.WithContext(ctx).Where("document = ?", document).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %q: %w", document, err)
	}
	return &snap, nil
}

// SaveSnapshot inserts or replaces the snapshot for snap.Document.
func (s *Store) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	if snap.Document == "" {
		return fmt.Errorf("snapshot document key is required")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Snapshot
		err := tx.Where("document = ?", snap.Document).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			snap.Hits = 1
			if err := tx.Create(snap).Error; err != nil {
				return fmt.Errorf("failed to create snapshot: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to load snapshot: %w", err)
		}

		snap.ID = existing.ID
		snap.CreatedAt = existing.CreatedAt
		snap.Hits = existing.Hits + 1
		if err := tx.Save(snap).Error; err != nil {
			return fmt.Errorf("failed to update snapshot: %w", err)
		}
		return nil
	})
}

// DeleteSnapshot forgets document. Missing documents are not an error.
func (s *Store) DeleteSnapshot(ctx context.Context, document string) error {
	err := s.db.WithContext(ctx).Where("document = ?", document).Delete(&models.Snapshot{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", document, err)
	}
	return nil
}

// PrepareRequest fills the previous text and cursor of req from the stored
// snapshot, unless the caller already described its edits. It reports
// whether a snapshot was applied.
func (s *Store) PrepareRequest(ctx context.Context, document string, req *core.Request) (bool, error) {
	if req.Options.PrevText != nil || len(req.Options.Changes) > 0 {
		return false, nil
	}
	snap, err := s.LoadSnapshot(ctx, document)
	if err != nil || snap == nil {
		return false, err
	}

	text := snap.Text
	req.Options.PrevText = &text
	if req.Options.PrevCursorX == nil && req.Options.PrevCursorLine == nil {
		req.Options.PrevCursorX = snap.CursorX
		req.Options.PrevCursorLine = snap.CursorLine
	}
	return true, nil
}

// RememberAnswer stores a successful answer as the document's new snapshot.
// Failed answers leave the previous snapshot in place.
func (s *Store) RememberAnswer(ctx context.Context, document, language string, req core.Request, answer core.Answer) error {
	if !answer.Success {
		return nil
	}
	return s.SaveSnapshot(ctx, &models.Snapshot{
		Document:   document,
		Language:   language,
		Mode:       string(req.Mode),
		Text:       answer.Text,
		CursorX:    answer.CursorX,
		CursorLine: answer.CursorLine,
	})
}

// RecordRun appends run to the run log, stamping its finish time.
func (s *Store) RecordRun(ctx context.Context, run *models.Run) error {
	if run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns lists the latest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.Run
	err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/timmy/vidfeed/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FixtureWriter bulk-loads feed entities. The ranking path never writes;
// this exists for the seeder and tests.
type FixtureWriter struct {
	db        *gorm.DB
	batchSize int
}

// NewFixtureWriter creates a writer that inserts in batches of batchSize.
func NewFixtureWriter(db *gorm.DB, batchSize int) *FixtureWriter {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &FixtureWriter{db: db, batchSize: batchSize}
}

// Fixtures is one consistent set of rows to load.
type Fixtures struct {
	Users    []domain.User
	Hashtags []domain.Hashtag
	Videos   []domain.Video
	Tags     []domain.VideoHashtag
	Follows  []domain.Follow
	Likes    []domain.Like
	Comments []domain.Comment
}

// Write inserts every row in f inside one transaction. Duplicate keys are skipped.
func (w *FixtureWriter) Write(ctx context.Context, f *Fixtures) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx = tx.Clauses(clause.OnConflict{DoNothing: true}).Session(&gorm.Session{})
		if err := createBatch(tx, f.Users, w.batchSize); err != nil {
			return fmt.Errorf("write users: %w", err)
		}
		if err := createBatch(tx, f.Hashtags, w.batchSize); err != nil {
			return fmt.Errorf("write hashtags: %w", err)
		}
		if err := createBatch(tx.Omit("Author", "Hashtags"), f.Videos, w.batchSize); err != nil {
			return fmt.Errorf("write videos: %w", err)
		}
		if err := createBatch(tx, f.Tags, w.batchSize); err != nil {
			return fmt.Errorf("write video hashtags: %w", err)
		}
		if err := createBatch(tx, f.Follows, w.batchSize); err != nil {
			return fmt.Errorf("write follows: %w", err)
		}
		if err := createBatch(tx, f.Likes, w.batchSize); err != nil {
			return fmt.Errorf("write likes: %w", err)
		}
		if err := createBatch(tx, f.Comments, w.batchSize); err != nil {
			return fmt.Errorf("write comments: %w", err)
		}
		return nil
	})
}

func createBatch[T any](tx *gorm.DB, rows []T, size int) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, size).Error
}

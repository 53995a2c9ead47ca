package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kudoslab/kudos-bot/internal/models"
)

// CreateRecognition inserts a new recognition event.
func (d *DB) CreateRecognition(ctx context.Context, rec *models.Recognition) error {
	if _, err := d.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert recognition: %w", err)
	}
	return nil
}

// CountRecognitions counts events created in [start, end).
func (d *DB) CountRecognitions(ctx context.Context, start, end time.Time) (int, error) {
	count, err := d.db.NewSelect().
		Model((*models.Recognition)(nil)).
		Where("created_at >= ?", start).
		Where("created_at < ?", end).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count recognitions: %w", err)
	}
	return count, nil
}

// ListRecognitionsSince returns events created on/after the given instant,
// newest first. Used by the streak look-back.
func (d *DB) ListRecognitionsSince(ctx context.Context, since time.Time) ([]models.Recognition, error) {
	var recs []models.Recognition
	err := d.db.NewSelect().
		Model(&recs).
		Column("id", "created_at").
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recognitions since %s: %w", since.Format(time.RFC3339), err)
	}
	return recs, nil
}

// ListRecognitionsInRange returns events created in [start, end] inclusive,
// oldest first. Used by the weekly digest aggregation.
func (d *DB) ListRecognitionsInRange(ctx context.Context, start, end time.Time) ([]models.Recognition, error) {
	var recs []models.Recognition
	err := d.db.NewSelect().
		Model(&recs).
		Where("created_at >= ?", start).
		Where("created_at <= ?", end).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recognitions in range: %w", err)
	}
	return recs, nil
}

// ListFeed returns recognitions for the feed view, newest first, narrowed by
// the given filters.
func (d *DB) ListFeed(ctx context.Context, filters models.FeedFilters, limit, offset int) ([]models.Recognition, error) {
	var recs []models.Recognition
	q := d.db.NewSelect().
		Model(&recs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)

	now := time.Now().UTC()
	switch filters.Period {
	case "week":
		q = q.Where("created_at >= ?", now.Add(-7*24*time.Hour))
	case "month":
		q = q.Where("created_at >= ?", now.Add(-30*24*time.Hour))
	}

	if filters.PersonID != "" {
		switch filters.PersonMode {
		case "from":
			q = q.Where("from_user_id = ?", filters.PersonID)
		case "to":
			q = q.Where("to_user_id = ?", filters.PersonID)
		default:
			q = q.Where("from_user_id = ? OR to_user_id = ?", filters.PersonID, filters.PersonID)
		}
	}

	if filters.Query != "" {
		q = q.Where("message ILIKE ?", "%"+filters.Query+"%")
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	return recs, nil
}

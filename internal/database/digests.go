package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kudoslab/kudos-bot/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UpsertWeeklyDigest persists a digest keyed by (week_start, week_end).
// An existing digest for the same pair has its stats payload fully replaced.
func (d *DB) UpsertWeeklyDigest(ctx context.Context, digest *models.WeeklyDigest) (*models.WeeklyDigest, error) {
	_, err := d.db.NewInsert().
		Model(digest).
		On("CONFLICT (week_start, week_end) DO UPDATE").
		Set("stats_json = EXCLUDED.stats_json").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert weekly digest %s/%s: %w", digest.WeekStart, digest.WeekEnd, err)
	}
	return digest, nil
}

// GetWeeklyDigest returns the digest whose week starts on the given date key.
func (d *DB) GetWeeklyDigest(ctx context.Context, weekStart string) (*models.WeeklyDigest, error) {
	digest := new(models.WeeklyDigest)
	err := d.db.NewSelect().
		Model(digest).
		Where("week_start = ?", weekStart).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get weekly digest %s: %w", weekStart, err)
	}
	return digest, nil
}

// ListWeeklyDigests returns digests newest week first.
func (d *DB) ListWeeklyDigests(ctx context.Context, limit int) ([]models.WeeklyDigest, error) {
	var digests []models.WeeklyDigest
	err := d.db.NewSelect().
		Model(&digests).
		Order("week_start DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly digests: %w", err)
	}
	return digests, nil
}

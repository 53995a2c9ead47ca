package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kudoslab/kudos-bot/internal/models"
)

// ListBadges returns every badge definition ordered by key.
func (d *DB) ListBadges(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	err := d.db.NewSelect().
		Model(&badges).
		Order("key ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

// GetBadgeByKey returns the badge definition with the given key.
func (d *DB) GetBadgeByKey(ctx context.Context, key string) (*models.Badge, error) {
	badge := new(models.Badge)
	err := d.db.NewSelect().
		Model(badge).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get badge %q: %w", key, err)
	}
	return badge, nil
}

// AssignBadge awards a badge to a user for a specific week.
func (d *DB) AssignBadge(ctx context.Context, userID, badgeID, weekStart string) (*models.UserBadge, error) {
	ub := &models.UserBadge{
		ID:        uuid.NewString(),
		UserID:    userID,
		BadgeID:   badgeID,
		WeekStart: weekStart,
	}

	if _, err := d.db.NewInsert().Model(ub).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to assign badge %s to user %s: %w", badgeID, userID, err)
	}
	return ub, nil
}

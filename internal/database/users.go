package database

import (
	"context"
	"fmt"

	"github.com/kudoslab/kudos-bot/internal/models"
	"github.com/uptrace/bun"
)

// ListUsers returns the whole user directory ordered by name.
func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := d.db.NewSelect().
		Model(&users).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListUsersByIDs returns the users matching the given ids. Missing ids are
// simply absent from the result; resolving that is the caller's concern.
func (d *DB) ListUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []models.User
	err := d.db.NewSelect().
		Model(&users).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by ids: %w", err)
	}
	return users, nil
}

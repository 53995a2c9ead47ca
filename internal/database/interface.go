package database

import (
	"context"
	"time"

	"github.com/kudoslab/kudos-bot/internal/models"
)

// Store defines the contract for all durable-state operations the services
// depend on. Timestamps are absolute UTC instants; calendar interpretation
// is the caller's business.
type Store interface {
	// Recognitions
	CreateRecognition(ctx context.Context, rec *models.Recognition) error
	CountRecognitions(ctx context.Context, start, end time.Time) (int, error)
	ListRecognitionsSince(ctx context.Context, since time.Time) ([]models.Recognition, error)
	ListRecognitionsInRange(ctx context.Context, start, end time.Time) ([]models.Recognition, error)
	ListFeed(ctx context.Context, filters models.FeedFilters, limit, offset int) ([]models.Recognition, error)

	// Users
	ListUsers(ctx context.Context) ([]models.User, error)
	ListUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)

	// Weekly digests
	UpsertWeeklyDigest(ctx context.Context, digest *models.WeeklyDigest) (*models.WeeklyDigest, error)
	GetWeeklyDigest(ctx context.Context, weekStart string) (*models.WeeklyDigest, error)
	ListWeeklyDigests(ctx context.Context, limit int) ([]models.WeeklyDigest, error)

	// Badges
	ListBadges(ctx context.Context) ([]models.Badge, error)
	GetBadgeByKey(ctx context.Context, key string) (*models.Badge, error)
	AssignBadge(ctx context.Context, userID, badgeID, weekStart string) (*models.UserBadge, error)
}

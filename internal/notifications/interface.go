package notifications

import "github.com/kudoslab/kudos-bot/internal/models"

// NotificationInterface defines the contract for digest delivery
type NotificationInterface interface {
	SendDigest(digest *models.WeeklyDigest) error
}

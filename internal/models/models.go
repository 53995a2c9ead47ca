package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a member of the organization who can send and receive kudos.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Dept      string    `bun:"dept" json:"dept,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:now()" json:"created_at"`
}

// Recognition is one praise message from a sender to a recipient.
// CreatedAt is stored in UTC and is immutable once written; it alone
// determines which business-timezone calendar day the event belongs to.
type Recognition struct {
	bun.BaseModel `bun:"table:recognitions"`

	ID         string    `bun:"id,pk" json:"id"`
	FromUserID string    `bun:"from_user_id,notnull" json:"from_user_id"`
	ToUserID   string    `bun:"to_user_id,notnull" json:"to_user_id"`
	Message    string    `bun:"message" json:"message"`
	EffectKey  string    `bun:"effect_key" json:"effect_key"` // "confetti", "sparkle", "clap", "firework", "stamp", "none"
	CreatedAt  time.Time `bun:"created_at,nullzero,default:now()" json:"created_at"`
}

// RankingEntry is one row of a weekly top-3 ranking. The display name is
// resolved at aggregation time and intentionally becomes a stale snapshot.
type RankingEntry struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Count    int    `json:"count"`
}

// WeeklyStats is the statistics payload of a digest.
type WeeklyStats struct {
	TotalRecognitions    int            `json:"total_recognitions"`
	TopReceivers         []RankingEntry `json:"top_receivers"`
	TopGivers            []RankingEntry `json:"top_givers"`
	FeaturedRecognitions []string       `json:"featured_recognitions"`
}

// WeeklyDigest is a persisted per-week statistics snapshot. At most one
// digest exists per (week_start, week_end) pair.
type WeeklyDigest struct {
	bun.BaseModel `bun:"table:weekly_digests"`

	ID        string      `bun:"id,pk" json:"id"`
	WeekStart string      `bun:"week_start,notnull" json:"week_start"` // YYYY-MM-DD
	WeekEnd   string      `bun:"week_end,notnull" json:"week_end"`     // YYYY-MM-DD
	Stats     WeeklyStats `bun:"stats_json,type:jsonb" json:"stats_json"`
	CreatedAt time.Time   `bun:"created_at,nullzero,default:now()" json:"created_at"`
}

// Badge is an awardable badge definition.
type Badge struct {
	bun.BaseModel `bun:"table:badges"`

	ID        string    `bun:"id,pk" json:"id"`
	Key       string    `bun:"key,notnull" json:"key"`
	Label     string    `bun:"label,notnull" json:"label"`
	Emoji     string    `bun:"emoji" json:"emoji"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:now()" json:"created_at"`
}

// UserBadge links a badge to a user for a specific week.
type UserBadge struct {
	bun.BaseModel `bun:"table:user_badges"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id,notnull" json:"user_id"`
	BadgeID   string    `bun:"badge_id,notnull" json:"badge_id"`
	WeekStart string    `bun:"week_start,notnull" json:"week_start"` // YYYY-MM-DD
	CreatedAt time.Time `bun:"created_at,nullzero,default:now()" json:"created_at"`
}

// HypeStats is the result of the daily hype computation.
type HypeStats struct {
	TodayCount int `json:"today_count"`
	StreakDays int `json:"streak_days"`
}

// FeedFilters narrows a feed listing.
type FeedFilters struct {
	Period     string `json:"period"`      // "week", "month" or "all"
	PersonMode string `json:"person_mode"` // "any", "from" or "to"
	PersonID   string `json:"person_id,omitempty"`
	Query      string `json:"query,omitempty"`
}

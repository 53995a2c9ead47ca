// Package hype computes the daily hype widget: today's recognition count,
// the consecutive-day streak and a deterministic daily topic, all bucketed
// in the fixed business timezone.
package hype

import (
	"context"
	"time"

	"github.com/kudoslab/kudos-bot/internal/dates"
	"github.com/kudoslab/kudos-bot/internal/models"
	"github.com/sirupsen/logrus"
)

// streakLookbackDays bounds the history considered for the streak. Events
// older than this never extend the count, even if truly consecutive.
const streakLookbackDays = 60

// Store is the slice of durable state the engine reads.
type Store interface {
	CountRecognitions(ctx context.Context, start, end time.Time) (int, error)
	ListRecognitionsSince(ctx context.Context, since time.Time) ([]models.Recognition, error)
}

// Engine computes hype statistics against the store. It is a best-effort
// display widget: it never returns an error, failures degrade to zeroed
// stats with a logged diagnostic.
type Engine struct {
	store Store
	loc   *time.Location
}

// NewEngine creates a hype engine for the given business-timezone location.
func NewEngine(store Store, loc *time.Location) *Engine {
	return &Engine{store: store, loc: loc}
}

// DailyTopic returns the prompt for the business-timezone date containing
// now. Pure: the same calendar date always yields the same prompt.
func (e *Engine) DailyTopic(now time.Time) string {
	return topicFor(dates.TopicDateKey(now, e.loc))
}

func topicFor(dateKey string) string {
	index := int(abs32(hashString(dateKey))) % len(DailyTopics)
	return DailyTopics[index]
}

// hashString is a polynomial rolling hash with int32 wraparound, matching
// ((h << 5) - h) + c reduced to 32-bit at every step.
func hashString(s string) int32 {
	var h int32
	for _, c := range s {
		h = h*31 + int32(c)
	}
	return h
}

func abs32(v int32) int64 {
	if v < 0 {
		return -int64(v)
	}
	return int64(v)
}

// Stats computes today's count and the current streak relative to now.
func (e *Engine) Stats(ctx context.Context, now time.Time) models.HypeStats {
	dayStart, dayEnd := dates.DayBounds(now, e.loc)

	todayCount, err := e.store.CountRecognitions(ctx, dayStart, dayEnd)
	if err != nil {
		logrus.Errorf("Failed to count today's recognitions: %v", err)
		return models.HypeStats{}
	}

	// A zero day is never active, so no streak survives through it.
	if todayCount == 0 {
		return models.HypeStats{TodayCount: 0, StreakDays: 0}
	}

	since := now.UTC().Add(-streakLookbackDays * 24 * time.Hour)
	history, err := e.store.ListRecognitionsSince(ctx, since)
	if err != nil {
		logrus.Errorf("Failed to fetch streak history: %v", err)
		return models.HypeStats{TodayCount: todayCount, StreakDays: 0}
	}

	activeDays := make(map[string]struct{}, len(history))
	for _, rec := range history {
		activeDays[dates.LocalDateKey(rec.CreatedAt, e.loc)] = struct{}{}
	}

	// Walk backward from today, one local day at a time, stopping at the
	// first inactive day. Today is active per the count above, but the
	// history query is the source of truth for the set.
	streak := 0
	for day := dates.LocalDay(now, e.loc); ; day = day.AddDate(0, 0, -1) {
		if _, ok := activeDays[day.Format(dates.DateKeyLayout)]; !ok {
			break
		}
		streak++
	}

	return models.HypeStats{TodayCount: todayCount, StreakDays: streak}
}

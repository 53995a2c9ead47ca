// Package digest generates persisted weekly statistics snapshots: totals,
// top-3 receivers and givers, and a small featured sample of events.
package digest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kudoslab/kudos-bot/internal/dates"
	"github.com/kudoslab/kudos-bot/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	topN          = 3
	featuredCount = 3

	// MVPBadgeKey is the badge awarded to the week's top receiver by the
	// scheduled digest run.
	MVPBadgeKey = "weekly_mvp"

	// unknownName is shown for user ids that no longer resolve.
	unknownName = "Unknown"
)

// Store is the slice of durable state the aggregator reads and writes.
type Store interface {
	ListRecognitionsInRange(ctx context.Context, start, end time.Time) ([]models.Recognition, error)
	ListUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	UpsertWeeklyDigest(ctx context.Context, digest *models.WeeklyDigest) (*models.WeeklyDigest, error)
	GetBadgeByKey(ctx context.Context, key string) (*models.Badge, error)
	AssignBadge(ctx context.Context, userID, badgeID, weekStart string) (*models.UserBadge, error)
}

// Aggregator computes and persists weekly digests. Unlike the hype engine it
// fails loudly: any read or write error aborts the whole operation with no
// partial persistence.
type Aggregator struct {
	store Store
	loc   *time.Location
}

// NewAggregator creates an aggregator for the given business-timezone
// location.
func NewAggregator(store Store, loc *time.Location) *Aggregator {
	return &Aggregator{store: store, loc: loc}
}

// WeekFor returns the Monday-to-Sunday week window containing the reference
// instant, as UTC instants.
func (a *Aggregator) WeekFor(reference time.Time) (start, end time.Time) {
	return dates.WeekRange(reference, a.loc)
}

// tally counts events per user id while remembering the order in which each
// id was first seen, so ranking ties break deterministically.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(userID string) {
	if _, seen := t.counts[userID]; !seen {
		t.order = append(t.order, userID)
	}
	t.counts[userID]++
}

// top returns the n highest-counted entries: count descending, ties in
// first-seen order.
func (t *tally) top(n int, names map[string]string) []models.RankingEntry {
	ranked := make([]string, len(t.order))
	copy(ranked, t.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return t.counts[ranked[i]] > t.counts[ranked[j]]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	entries := make([]models.RankingEntry, 0, len(ranked))
	for _, id := range ranked {
		name, ok := names[id]
		if !ok {
			name = unknownName
		}
		entries = append(entries, models.RankingEntry{
			UserID:   id,
			UserName: name,
			Count:    t.counts[id],
		})
	}
	return entries
}

// Generate computes the statistics for [weekStart, weekEnd] inclusive and
// upserts the digest keyed by the week's date pair. Regenerating a week
// fully replaces the previous payload.
func (a *Aggregator) Generate(ctx context.Context, weekStart, weekEnd time.Time) (*models.WeeklyDigest, error) {
	recognitions, err := a.store.ListRecognitionsInRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recognitions for digest: %w", err)
	}

	receivers := newTally()
	givers := newTally()
	for _, rec := range recognitions {
		receivers.add(rec.ToUserID)
		givers.add(rec.FromUserID)
	}

	names, err := a.resolveNames(ctx, receivers, givers)
	if err != nil {
		return nil, err
	}

	// Featured events are the first of the range query's ordering
	// (ascending created_at, so the week's earliest).
	featured := make([]string, 0, featuredCount)
	for i := 0; i < len(recognitions) && i < featuredCount; i++ {
		featured = append(featured, recognitions[i].ID)
	}

	digest := &models.WeeklyDigest{
		ID:        uuid.NewString(),
		WeekStart: dates.LocalDateKey(weekStart, a.loc),
		WeekEnd:   dates.LocalDateKey(weekEnd, a.loc),
		Stats: models.WeeklyStats{
			TotalRecognitions:    len(recognitions),
			TopReceivers:         receivers.top(topN, names),
			TopGivers:            givers.top(topN, names),
			FeaturedRecognitions: featured,
		},
	}

	persisted, err := a.store.UpsertWeeklyDigest(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to persist weekly digest: %w", err)
	}

	logrus.Infof("Generated weekly digest %s/%s with %d recognitions",
		persisted.WeekStart, persisted.WeekEnd, persisted.Stats.TotalRecognitions)

	return persisted, nil
}

// resolveNames batches one user lookup for every id referenced by either
// tally. Unresolved ids later render as "Unknown" instead of failing the
// aggregation.
func (a *Aggregator) resolveNames(ctx context.Context, tallies ...*tally) (map[string]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, t := range tallies {
		for _, id := range t.order {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	users, err := a.store.ListUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user names: %w", err)
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// AwardMVPBadge gives the weekly MVP badge to the digest's top receiver.
// Best effort: a missing badge definition or a failed insert is logged and
// never fails the digest itself.
func (a *Aggregator) AwardMVPBadge(ctx context.Context, digest *models.WeeklyDigest) {
	if len(digest.Stats.TopReceivers) == 0 {
		return
	}

	badge, err := a.store.GetBadgeByKey(ctx, MVPBadgeKey)
	if err != nil {
		logrus.Warnf("Skipping MVP badge award: %v", err)
		return
	}

	mvp := digest.Stats.TopReceivers[0]
	if _, err := a.store.AssignBadge(ctx, mvp.UserID, badge.ID, digest.WeekStart); err != nil {
		logrus.Errorf("Failed to award MVP badge to %s: %v", mvp.UserID, err)
		return
	}

	logrus.Infof("Awarded MVP badge to %s (%s) for week %s", mvp.UserName, mvp.UserID, digest.WeekStart)
}

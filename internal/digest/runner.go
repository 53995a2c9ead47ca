package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kudoslab/kudos-bot/internal/archive"
	"github.com/kudoslab/kudos-bot/internal/notifications"
	"github.com/sirupsen/logrus"
)

// Runner orchestrates a full scheduled digest run: generate the previous
// week's snapshot, award the MVP badge, announce it and archive it.
// Notification and archive targets are optional.
type Runner struct {
	aggregator    *Aggregator
	notifications notifications.NotificationInterface
	archive       archive.ArchiveInterface
}

// NewRunner creates a runner. Pass nil for channels that are not configured.
func NewRunner(aggregator *Aggregator, n notifications.NotificationInterface, a archive.ArchiveInterface) *Runner {
	return &Runner{aggregator: aggregator, notifications: n, archive: a}
}

// RunPreviousWeek generates the digest for the week before the one
// containing now. Generation failures are fatal for the run; badge,
// notification and archive failures are logged and swallowed so the
// persisted digest survives.
func (r *Runner) RunPreviousWeek(now time.Time) error {
	start := time.Now()
	logrus.Info("Starting weekly digest run")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	weekStart, weekEnd := r.aggregator.WeekFor(now.AddDate(0, 0, -7))

	digest, err := r.aggregator.Generate(ctx, weekStart, weekEnd)
	if err != nil {
		return fmt.Errorf("weekly digest run failed: %w", err)
	}

	r.aggregator.AwardMVPBadge(ctx, digest)

	if r.notifications != nil {
		if err := r.notifications.SendDigest(digest); err != nil {
			logrus.Errorf("Failed to announce weekly digest: %v", err)
		}
	}

	if r.archive != nil {
		if err := r.archiveDigest(digest.WeekStart, digest); err != nil {
			logrus.Errorf("Failed to archive weekly digest: %v", err)
		}
	}

	logrus.Infof("Weekly digest run completed in %v", time.Since(start))
	return nil
}

func (r *Runner) archiveDigest(weekStart string, digest interface{}) error {
	data, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("failed to marshal digest: %w", err)
	}

	filename := fmt.Sprintf("digest-%s.json", weekStart)
	return r.archive.Store(filename, data)
}

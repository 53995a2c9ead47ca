package scheduler

import (
	"time"

	"github.com/kudoslab/kudos-bot/internal/config"
	"github.com/kudoslab/kudos-bot/internal/digest"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service schedules the weekly digest run in the business timezone
type Service struct {
	config *config.Config
	runner *digest.Runner
	cron   *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, runner *digest.Runner) *Service {
	return &Service{
		config: cfg,
		runner: runner,
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(cfg.Location())),
	}
}

// Start begins the scheduled digest generation
func (s *Service) Start() error {
	if !s.config.DigestScheduleEnabled {
		logrus.Info("Digest schedule disabled, scheduler not started")
		return nil
	}

	// Monday 9 AM business time: generate the digest of the week that just
	// ended.
	_, err := s.cron.AddFunc("0 0 9 * * MON", func() {
		logrus.Info("Starting scheduled weekly digest run")
		if err := s.runner.RunPreviousWeek(time.Now()); err != nil {
			logrus.Errorf("Scheduled weekly digest run failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Info("Scheduler started with weekly digest schedule (Monday 09:00 business time)")
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}

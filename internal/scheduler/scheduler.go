package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/itaybar/barops/internal/config"
)

// EventMaintainer closes events that stayed open past the expiry window.
type EventMaintainer interface {
	CloseExpired(ctx context.Context) (int64, error)
}

// ActualsMaintainer removes actuals whose event is gone or no longer done.
type ActualsMaintainer interface {
	SweepInvalidActuals(ctx context.Context) (int64, error)
}

// Scheduler manages the nightly maintenance job.
type Scheduler struct {
	cron    *cron.Cron
	events  EventMaintainer
	actuals ActualsMaintainer
	cfg     config.MaintenanceConfig
	logger  *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.MaintenanceConfig, events EventMaintainer, actuals ActualsMaintainer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.Local
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:    c,
		events:  events,
		actuals: actuals,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runMaintenance)
	if err != nil {
		s.logger.Error("failed to schedule maintenance job", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runMaintenance() {
	s.logger.Info("running nightly maintenance")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	closed, err := s.events.CloseExpired(ctx)
	if err != nil {
		s.logger.Error("failed to close expired events", zap.Error(err))
	} else if closed > 0 {
		s.logger.Info("closed expired events", zap.Int64("count", closed))
	}

	swept, err := s.actuals.SweepInvalidActuals(ctx)
	if err != nil {
		s.logger.Error("failed to sweep invalid actuals", zap.Error(err))
	} else if swept > 0 {
		s.logger.Info("swept invalid actuals", zap.Int64("count", swept))
	}
}

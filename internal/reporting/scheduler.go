package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler logs the previous day's period summary on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	location *time.Location
	svc      *Service
	logger   *zap.Logger
}

// NewScheduler creates a scheduler for the standard 5-field cron spec.
func NewScheduler(spec string, location *time.Location, svc *Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		spec:     spec,
		location: location,
		svc:      svc,
		logger:   logger,
	}
}

// Start registers the daily report job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runDailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.spec, err)
	}

	s.logger.Info("starting scheduler", zap.String("spec", s.spec), zap.String("location", s.location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	yesterday := time.Now().In(s.location).AddDate(0, 0, -1)
	if _, err := s.DailyReport(ctx, yesterday); err != nil {
		s.logger.Error("failed to generate daily report", zap.Error(err))
	}
}

// DailyReport computes and logs the summary of day.
func (s *Scheduler) DailyReport(ctx context.Context, day time.Time) (PeriodSummary, error) {
	summary, err := s.svc.PeriodSummary(ctx, day, day)
	if err != nil {
		return PeriodSummary{}, err
	}

	s.logger.Info("daily production report",
		zap.String("day", day.Format("2006-01-02")),
		zap.String("totalValue", summary.TotalValue.StringFixed(2)),
		zap.String("totalWeight", summary.TotalWeight.StringFixed(3)),
		zap.String("totalCosts", summary.TotalCosts.StringFixed(2)),
		zap.String("profit", summary.Profit.StringFixed(2)),
		zap.String("profitMargin", summary.ProfitMargin.StringFixed(2)),
		zap.Int("products", len(summary.ByProduct)),
	)

	return summary, nil
}

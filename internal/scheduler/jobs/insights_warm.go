package jobs

import (
	"context"

	"github.com/wonny/fii-advisor/backend/internal/insights"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// ReportBuilder builds (and caches) the yearly overview
type ReportBuilder interface {
	Report(ctx context.Context, year int) (*insights.Report, error)
}

// InsightsWarmJob precomputes yearly reports so the first request hits the cache
type InsightsWarmJob struct {
	reports ReportBuilder
	years   []int
	logger  *logger.Logger
}

// NewInsightsWarmJob creates a new insights warm-up job
func NewInsightsWarmJob(reports ReportBuilder, years []int, log *logger.Logger) *InsightsWarmJob {
	return &InsightsWarmJob{
		reports: reports,
		years:   years,
		logger:  log,
	}
}

// Name returns the job name
func (j *InsightsWarmJob) Name() string {
	return "insights_warm"
}

// Schedule returns the cron schedule (30 minutes after the dataset refresh)
func (j *InsightsWarmJob) Schedule() string {
	return "0 30 6 * * *"
}

// Run builds every configured year; a failing year does not stop the others
func (j *InsightsWarmJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting insights warm-up")

	warmed := 0
	var lastErr error
	for _, year := range j.years {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := j.reports.Report(ctx, year); err != nil {
			j.logger.WithError(err).WithField("year", year).Warn("Failed to build report")
			lastErr = err
			continue
		}
		warmed++
	}

	if warmed > 0 {
		j.logger.WithField("years", warmed).Info("Insights warm-up completed")
	}
	if warmed == 0 && lastErr != nil {
		return lastErr
	}
	return nil
}

package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/dataset"
	"github.com/wonny/fii-advisor/backend/internal/external/cvm"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// DefaultRefreshSchedule runs every day at 6 AM
const DefaultRefreshSchedule = "0 0 6 * * *"

// ArchiveFetcher downloads and extracts one year of the CVM monthly datasets
type ArchiveFetcher interface {
	Fetch(ctx context.Context, year int, root string) ([]string, error)
}

// CacheInvalidator drops cached data derived from year
type CacheInvalidator interface {
	Invalidate(ctx context.Context, year int) error
}

// DatasetRefreshJob refreshes the current year's datasets from CVM
type DatasetRefreshJob struct {
	fetcher     ArchiveFetcher
	root        string
	source      contracts.DatasetProvider
	store       dataset.RowStore
	invalidates []CacheInvalidator
	schedule    string
	logger      *logger.Logger
	now         func() time.Time
}

// NewDatasetRefreshJob creates a new dataset refresh job.
// store may be nil when the datasets are read straight from root.
func NewDatasetRefreshJob(
	fetcher ArchiveFetcher,
	root string,
	store dataset.RowStore,
	schedule string,
	log *logger.Logger,
	invalidates ...CacheInvalidator,
) *DatasetRefreshJob {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	return &DatasetRefreshJob{
		fetcher:     fetcher,
		root:        root,
		source:      dataset.NewFileProvider(root, log),
		store:       store,
		invalidates: invalidates,
		schedule:    schedule,
		logger:      log,
		now:         time.Now,
	}
}

// Name returns the job name
func (j *DatasetRefreshJob) Name() string {
	return "dataset_refresh"
}

// Schedule returns the cron schedule
func (j *DatasetRefreshJob) Schedule() string {
	return j.schedule
}

// Run fetches the current year; early in January CVM has not published it
// yet, so the previous year is fetched instead
func (j *DatasetRefreshJob) Run(ctx context.Context) error {
	year := j.now().Year()

	files, err := j.fetcher.Fetch(ctx, year, j.root)
	if errors.Is(err, cvm.ErrArchiveNotFound) {
		j.logger.WithField("year", year).Warn("Archive not published yet, falling back to previous year")
		year--
		files, err = j.fetcher.Fetch(ctx, year, j.root)
	}
	if err != nil {
		return fmt.Errorf("fetch %d: %w", year, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"year":  year,
		"files": len(files),
	}).Info("Datasets downloaded")

	if j.store != nil {
		counts, err := dataset.ImportYear(ctx, j.source, j.store, year)
		if err != nil {
			return fmt.Errorf("import %d: %w", year, err)
		}
		for kind, n := range counts {
			j.logger.WithFields(map[string]interface{}{
				"kind": kind,
				"year": year,
				"rows": n,
			}).Info("Dataset imported")
		}
	}

	for _, inv := range j.invalidates {
		if err := inv.Invalidate(ctx, year); err != nil {
			j.logger.WithError(err).Warn("Failed to invalidate cache")
		}
	}

	return nil
}

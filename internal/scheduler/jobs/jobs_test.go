package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/dataset"
	"github.com/wonny/fii-advisor/backend/internal/external/cvm"
	"github.com/wonny/fii-advisor/backend/internal/insights"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// fakeFetcher writes a general dataset for every published year
type fakeFetcher struct {
	published map[int]bool
	err       error
	years     []int
}

func (f *fakeFetcher) Fetch(ctx context.Context, year int, root string) ([]string, error) {
	f.years = append(f.years, year)
	if f.err != nil {
		return nil, f.err
	}
	if !f.published[year] {
		return nil, fmt.Errorf("%w: %d", cvm.ErrArchiveNotFound, year)
	}
	path := dataset.FilePath(root, contracts.KindGeneral, year)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	content := "CNPJ_Fundo;Segmento_Atuacao\n11.111.111/0001-11;Shoppings\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

type recordingStore struct {
	stored map[contracts.DatasetKind]int
}

func (s *recordingStore) ReplaceYear(ctx context.Context, kind contracts.DatasetKind, year int, rows []contracts.Row) (int64, error) {
	if s.stored == nil {
		s.stored = map[contracts.DatasetKind]int{}
	}
	s.stored[kind] = year
	return int64(len(rows)), nil
}

type recordingInvalidator struct {
	years []int
	err   error
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, year int) error {
	r.years = append(r.years, year)
	return r.err
}

func fixedNow(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.January, 3, 6, 0, 0, 0, time.UTC) }
}

func TestDatasetRefreshCurrentYear(t *testing.T) {
	fetcher := &fakeFetcher{published: map[int]bool{2024: true}}
	store := &recordingStore{}
	inv := &recordingInvalidator{}

	job := NewDatasetRefreshJob(fetcher, t.TempDir(), store, "", logger.Nop(), inv)
	job.now = fixedNow(2024)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, "dataset_refresh", job.Name())
	assert.Equal(t, DefaultRefreshSchedule, job.Schedule())
	assert.Equal(t, []int{2024}, fetcher.years)
	assert.Equal(t, map[contracts.DatasetKind]int{contracts.KindGeneral: 2024}, store.stored,
		"only kinds present in the archive are imported")
	assert.Equal(t, []int{2024}, inv.years)
}

func TestDatasetRefreshFallsBackToPreviousYear(t *testing.T) {
	fetcher := &fakeFetcher{published: map[int]bool{2024: true}}
	inv := &recordingInvalidator{err: errors.New("redis down")}

	job := NewDatasetRefreshJob(fetcher, t.TempDir(), nil, "0 0 7 * * *", logger.Nop(), inv)
	job.now = fixedNow(2025)

	require.NoError(t, job.Run(context.Background()), "invalidation errors are logged only")
	assert.Equal(t, "0 0 7 * * *", job.Schedule())
	assert.Equal(t, []int{2025, 2024}, fetcher.years)
	assert.Equal(t, []int{2024}, inv.years)
}

func TestDatasetRefreshFetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection reset")}
	inv := &recordingInvalidator{}

	job := NewDatasetRefreshJob(fetcher, t.TempDir(), nil, "", logger.Nop(), inv)
	job.now = fixedNow(2024)

	err := job.Run(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, []int{2024}, fetcher.years, "no fallback for other errors")
	assert.Empty(t, inv.years)
}

type fakeReports struct {
	failing map[int]bool
	built   []int
}

func (f *fakeReports) Report(ctx context.Context, year int) (*insights.Report, error) {
	if f.failing[year] {
		return nil, insights.ErrNoData
	}
	f.built = append(f.built, year)
	return &insights.Report{Year: year}, nil
}

func TestInsightsWarm(t *testing.T) {
	tests := []struct {
		name    string
		failing map[int]bool
		built   []int
		wantErr bool
	}{
		{name: "all years", built: []int{2022, 2023}},
		{name: "one year fails", failing: map[int]bool{2022: true}, built: []int{2023}},
		{name: "every year fails", failing: map[int]bool{2022: true, 2023: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := &fakeReports{failing: tt.failing}
			job := NewInsightsWarmJob(reports, []int{2022, 2023}, logger.Nop())

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, insights.ErrNoData)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.built, reports.built)
		})
	}
}

func TestInsightsWarmCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports := &fakeReports{}
	job := NewInsightsWarmJob(reports, []int{2022}, logger.Nop())
	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
	assert.Empty(t, reports.built)
}

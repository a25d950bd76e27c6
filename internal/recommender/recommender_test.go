package recommender

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/dataset"
	"github.com/wonny/fii-advisor/backend/internal/locale"
	"github.com/wonny/fii-advisor/backend/internal/policy"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

type fakeProvider struct {
	rows map[contracts.DatasetKind][]contracts.Row
	err  error
}

func (f *fakeProvider) Load(_ context.Context, kind contracts.DatasetKind, _ []int) ([]contracts.Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[kind], nil
}

type fakeQuotes struct {
	calls   int
	symbols []string
	prices  map[string]float64
	err     error
}

func (f *fakeQuotes) BatchQuote(_ context.Context, symbols []string) (map[string]float64, error) {
	f.calls++
	f.symbols = symbols
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64)
	for _, s := range symbols {
		if p, ok := f.prices[s]; ok {
			out[s] = p
		}
	}
	return out, nil
}

func cnpjOf(n int) string {
	return fmt.Sprintf("%02d.000.000/0001-%02d", n, n)
}

func complementRow(n int, date, dy, er, pr string) contracts.Row {
	return contracts.Row{
		contracts.ColCNPJ:            cnpjOf(n),
		contracts.ColReferenceDate:   date,
		contracts.ColDividendYield:   dy,
		contracts.ColEffectiveReturn: er,
		contracts.ColEquityReturn:    pr,
		contracts.ColNetEquity:       "1.000.000,00",
	}
}

func generalRow(n int, segment string) contracts.Row {
	return contracts.Row{
		contracts.ColCNPJ:    cnpjOf(n),
		contracts.ColSegment: segment,
	}
}

func registryOf(tickers map[int]string) *dataset.Registry {
	entries := make(map[string]string, len(tickers))
	for n, t := range tickers {
		entries[cnpjOf(n)] = t
	}
	return dataset.NewRegistry(entries)
}

// fiveFunds: percentages chosen so fund 1 leads on DY and fund 3 is balanced
func fiveFunds() (*fakeProvider, *dataset.Registry, *fakeQuotes) {
	provider := &fakeProvider{rows: map[contracts.DatasetKind][]contracts.Row{
		contracts.KindComplement: {
			complementRow(1, "2024-03-01", "0,80", "0,20", "0,10"),
			complementRow(2, "2024-03-01", "0,20", "0,80", "0,10"),
			complementRow(3, "2024-03-01", "0,50", "0,50", "0,50"),
			complementRow(4, "2024-03-01", "0,10", "0,10", "0,90"),
			complementRow(5, "2024-03-01", "0,30", "0,40", "0,30"),
			complementRow(9, "2024-03-01", "9,99", "9,99", "9,99"), // unlisted
		},
		contracts.KindGeneral: {
			generalRow(1, "Logística"),
			generalRow(2, "Shoppings"),
			generalRow(3, "Logística"),
			generalRow(4, ""),
		},
	}}
	registry := registryOf(map[int]string{1: "AAAA11", 2: "BBBB11", 3: "CCCC11", 4: "DDDD11", 5: "EEEE11"})
	quotes := &fakeQuotes{prices: map[string]float64{
		"AAAA11.SA": 85, "BBBB11.SA": 95, "CCCC11.SA": 110, "DDDD11.SA": 130, "EEEE11.SA": 60,
	}}
	return provider, registry, quotes
}

func newPipeline(p contracts.DatasetProvider, r contracts.ListedFundRegistry, q contracts.QuoteService) *Pipeline {
	pl := New(p, r, q, nil, []int{2024}, logger.Nop())
	pl.newID = func() string { return "run-1" }
	return pl
}

func tickers(recs []contracts.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Ticker
	}
	return out
}

func TestRecommendConservativeRanking(t *testing.T) {
	provider, registry, quotes := fiveFunds()
	p := newPipeline(provider, registry, quotes)

	res, err := p.Recommend(context.Background(), contracts.Request{
		Profile:   contracts.ProfileConservative,
		Recency:   contracts.RecencyHistory,
		PriceBand: contracts.BandAny,
		Count:     5,
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Empty(t, res.Warning)
	assert.Equal(t, []string{"AAAA11", "CCCC11", "BBBB11", "EEEE11", "DDDD11"}, tickers(res.Recommendations))

	first := res.Recommendations[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "01000000000101", first.CNPJ)
	assert.Equal(t, "Logística", first.Segment)
	assert.Equal(t, 85.0, first.Price)
	assert.InDelta(t, 64.2857, first.Score, 1e-3)

	assert.Equal(t, "Outros", res.Recommendations[4].Segment, "blank segment gets default")
	assert.Equal(t, "Outros", res.Recommendations[3].Segment, "missing general row gets default")

	assert.Equal(t, 1, quotes.calls)
	assert.Equal(t, 6, res.Stats.Loaded)
	assert.Equal(t, 5, res.Stats.Listed)
	assert.Equal(t, 5, res.Stats.Returned)
}

func TestRecommendPriceBandAndCount(t *testing.T) {
	provider, registry, quotes := fiveFunds()
	p := newPipeline(provider, registry, quotes)

	res, err := p.Recommend(context.Background(), contracts.Request{
		Profile:   contracts.ProfileConservative,
		Recency:   contracts.RecencyHistory,
		PriceBand: contracts.BandLow,
		Count:     5,
	})
	require.NoError(t, err)

	// only AAAA11 (85) and EEEE11 (60) are <= 90; no padding
	assert.Equal(t, []string{"AAAA11", "EEEE11"}, tickers(res.Recommendations))
	assert.Equal(t, 2, res.Recommendations[1].Rank)
}

func TestRecommendSegmentFilter(t *testing.T) {
	provider, registry, quotes := fiveFunds()
	p := newPipeline(provider, registry, quotes)

	res, err := p.Recommend(context.Background(), contracts.Request{
		Profile:   contracts.ProfileAggressive,
		Recency:   contracts.RecencyHistory,
		Segments:  []string{"Logística"},
		PriceBand: contracts.BandAny,
		Count:     10,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"AAAA11", "CCCC11"}, tickers(res.Recommendations))
	assert.Equal(t, 2, res.Stats.AfterSegment)
}

func TestRecommendScalesBeforeFiltering(t *testing.T) {
	provider := &fakeProvider{rows: map[contracts.DatasetKind][]contracts.Row{
		contracts.KindComplement: {
			complementRow(1, "2023-12-01", "0,90", "0,90", "0,90"),
			complementRow(2, "2024-03-01", "0,50", "0,50", "0,50"),
			complementRow(3, "2024-03-01", "0,10", "0,10", "0,10"),
		},
	}}
	registry := registryOf(map[int]string{1: "AAAA11", 2: "BBBB11", 3: "CCCC11"})
	quotes := &fakeQuotes{prices: map[string]float64{"AAAA11.SA": 10, "BBBB11.SA": 10, "CCCC11.SA": 10}}
	p := newPipeline(provider, registry, quotes)

	res, err := p.Recommend(context.Background(), contracts.Request{
		Profile:   contracts.ProfileModerate,
		Recency:   contracts.RecencyMonthly,
		PriceBand: contracts.BandAny,
		Count:     5,
	})
	require.NoError(t, err)

	require.Len(t, res.Recommendations, 2)
	// 2023 fund still sets the max: BBBB11 scales to 50, not 100
	assert.Equal(t, "BBBB11", res.Recommendations[0].Ticker)
	assert.InDelta(t, 50.0, res.Recommendations[0].Score, 1e-9)
	assert.Equal(t, 2, res.Stats.AfterRecency)
}

func TestRecommendDedupKeepsLastFiling(t *testing.T) {
	provider := &fakeProvider{rows: map[contracts.DatasetKind][]contracts.Row{
		contracts.KindComplement: {
			complementRow(1, "2024-03-01", "0,10", "0,10", "0,10"),
			complementRow(2, "2024-03-01", "0,50", "0,50", "0,50"),
			complementRow(1, "2024-03-01", "0,90", "0,90", "0,90"), // resubmission
		},
	}}
	registry := registryOf(map[int]string{1: "AAAA11", 2: "BBBB11"})
	quotes := &fakeQuotes{prices: map[string]float64{"AAAA11.SA": 10, "BBBB11.SA": 10}}
	p := newPipeline(provider, registry, quotes)

	res, err := p.Recommend(context.Background(), contracts.Request{
		Profile: contracts.ProfileConservative,
		Count:   5,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.Listed)
	assert.Equal(t, 2, res.Stats.Deduplicated)
	assert.Equal(t, []string{"AAAA11", "BBBB11"}, tickers(res.Recommendations))
	assert.InDelta(t, 100.0, res.Recommendations[0].Score, 1e-9)
}

func TestRecommendIngestionError(t *testing.T) {
	provider := &fakeProvider{rows: map[contracts.DatasetKind][]contracts.Row{
		contracts.KindComplement: {
			complementRow(9, "2024-03-01", "abc", "0", "0"), // unlisted, never parsed
			complementRow(1, "2024-03-01", "0,10", "0,10", "0,10"),
			complementRow(2, "2024-03-01", "0,10", "n/d", "0,10"),
		},
	}}
	registry := registryOf(map[int]string{1: "AAAA11", 2: "BBBB11"})
	quotes := &fakeQuotes{}
	p := newPipeline(provider, registry, quotes)

	_, err := p.Recommend(context.Background(), contracts.Request{Profile: contracts.ProfileModerate, Count: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, locale.ErrIngestion))

	var ie *locale.IngestionError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 2, ie.Row, "row index refers to the loaded batch")
	assert.Equal(t, contracts.ColEffectiveReturn, ie.Field)
	assert.Zero(t, quotes.calls)
}

func TestRecommendInvalidDate(t *testing.T) {
	provider := &fakeProvider{rows: map[contracts.DatasetKind][]contracts.Row{
		contracts.KindComplement: {complementRow(1, "março", "0,10", "0,10", "0,10")},
	}}
	p := newPipeline(provider, registryOf(map[int]string{1: "AAAA11"}), &fakeQuotes{})

	_, err := p.Recommend(context.Background(), contracts.Request{Profile: contracts.ProfileModerate, Count: 1})
	assert.True(t, errors.Is(err, locale.ErrIngestion))
}

func TestRecommendQuotesUnavailable(t *testing.T) {
	provider, registry, _ := fiveFunds()
	quotes := &fakeQuotes{err: errors.New("upstream 503")}
	p := newPipeline(provider, registry, quotes)

	res, err := p.Recommend(context.Background(), contracts.Request{Profile: contracts.ProfileModerate, Count: 3})
	require.NoError(t, err)

	assert.True(t, res.Empty())
	assert.True(t, res.Degraded())
	assert.Contains(t, res.Warning, "quotes unavailable")
}

func TestRecommendInvalidRequest(t *testing.T) {
	provider, registry, quotes := fiveFunds()
	p := newPipeline(provider, registry, quotes)

	tests := []contracts.Request{
		{Profile: "yolo", Count: 1},
		{Profile: contracts.ProfileModerate, Count: 0},
		{Profile: contracts.ProfileModerate, PriceBand: "cheap", Count: 1},
	}
	for _, req := range tests {
		_, err := p.Recommend(context.Background(), req)
		assert.ErrorIs(t, err, contracts.ErrInvalidRequest)
	}
	assert.Zero(t, quotes.calls)
}

func TestRecommendAcceptsPortugueseLabels(t *testing.T) {
	provider, registry, quotes := fiveFunds()
	p := newPipeline(provider, registry, quotes)

	res, err := p.Recommend(context.Background(), contracts.Request{Profile: "Conservador", Recency: "Mensal", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, contracts.ProfileConservative, res.Request.Profile)
	assert.Equal(t, contracts.RecencyMonthly, res.Request.Recency)
	assert.Equal(t, []string{"AAAA11"}, tickers(res.Recommendations))
}

func TestRecommendCandidateLimit(t *testing.T) {
	provider, registry, quotes := fiveFunds()
	pol := policy.Default()
	pol.Candidates.Limit = 2
	p := New(provider, registry, quotes, pol, []int{2024}, logger.Nop())

	res, err := p.Recommend(context.Background(), contracts.Request{Profile: contracts.ProfileConservative, Count: 5})
	require.NoError(t, err)

	assert.Equal(t, []string{"AAAA11.SA", "CCCC11.SA"}, quotes.symbols)
	assert.Equal(t, 2, res.Stats.Candidates)
	assert.Len(t, res.Recommendations, 2)
}

func TestRecommendEmptyUniverse(t *testing.T) {
	quotes := &fakeQuotes{}
	p := newPipeline(&fakeProvider{}, registryOf(nil), quotes)

	res, err := p.Recommend(context.Background(), contracts.Request{Profile: contracts.ProfileModerate, Count: 5})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.False(t, res.Degraded())
	assert.Zero(t, quotes.calls)
}

func TestRecommendLoadError(t *testing.T) {
	p := newPipeline(&fakeProvider{err: errors.New("disk gone")}, registryOf(nil), &fakeQuotes{})

	_, err := p.Recommend(context.Background(), contracts.Request{Profile: contracts.ProfileModerate, Count: 5})
	assert.ErrorContains(t, err, "load complemento")
}

func TestRecommendDuration(t *testing.T) {
	provider, registry, quotes := fiveFunds()
	p := newPipeline(provider, registry, quotes)

	base := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	p.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * time.Second)
	}

	res, err := p.Recommend(context.Background(), contracts.Request{Profile: contracts.ProfileModerate, Count: 1})
	require.NoError(t, err)
	assert.Equal(t, base, res.GeneratedAt)
	assert.Equal(t, time.Second, res.Duration)
}

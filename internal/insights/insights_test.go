package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/dataset"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
	"github.com/wonny/fii-advisor/backend/pkg/redis"
)

type fakeProvider struct {
	rows  map[contracts.DatasetKind][]contracts.Row
	calls map[contracts.DatasetKind][][]int
}

func (f *fakeProvider) Load(_ context.Context, kind contracts.DatasetKind, years []int) ([]contracts.Row, error) {
	if f.calls == nil {
		f.calls = make(map[contracts.DatasetKind][][]int)
	}
	f.calls[kind] = append(f.calls[kind], years)

	want := make(map[int]bool, len(years))
	for _, y := range years {
		want[y] = true
	}
	var out []contracts.Row
	for _, r := range f.rows[kind] {
		if want[rowYear(r)] {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeQuotes struct {
	prices map[string]float64
	err    error
}

func (f *fakeQuotes) BatchQuote(_ context.Context, symbols []string) (map[string]float64, error) {
	return f.prices, f.err
}

const (
	cnpjA = "11.111.111/0001-11"
	cnpjB = "22.222.222/0001-22"
	cnpjC = "33.333.333/0001-33"
)

func assetRow(cnpj, date, invested, liabilities string) contracts.Row {
	return contracts.Row{
		contracts.ColCNPJ:             cnpj,
		contracts.ColReferenceDate:    date,
		contracts.ColTotalInvested:    invested,
		contracts.ColReceivables:      "100,00",
		contracts.ColTotalLiabilities: liabilities,
	}
}

func dyRow(cnpj, date, dy string) contracts.Row {
	return contracts.Row{
		contracts.ColCNPJ:          cnpj,
		contracts.ColReferenceDate: date,
		contracts.ColDividendYield: dy,
		contracts.ColNetEquity:     "1.000.000,00",
		contracts.ColQuotasIssued:  "10.000",
		contracts.ColHolders:       "2.500",
	}
}

func segRow(cnpj, date, segment string) contracts.Row {
	return contracts.Row{
		contracts.ColCNPJ:          cnpj,
		contracts.ColReferenceDate: date,
		contracts.ColSegment:       segment,
	}
}

func TestTopAssetsLiabilities(t *testing.T) {
	rows := []contracts.Row{
		assetRow(cnpjA, "2024-01-31", "1.000,00", "50,00"),
		assetRow(cnpjA, "2024-02-29", "1.000,00", "50,00"),
		assetRow(cnpjB, "2024-01-31", "5.000,00", "10,00"),
		assetRow(cnpjC, "2024-01-31", "10,00", "900,00"),
		assetRow(cnpjC, "2023-01-31", "99.999,00", "0"),
	}

	assets, liabilities := TopAssetsLiabilities(rows, 2024, 2)

	require.Len(t, assets, 2)
	assert.Equal(t, "22222222000122", assets[0].CNPJ)
	assert.InDelta(t, 5100.0, assets[0].Amount, 1e-9)
	assert.Equal(t, "11111111000111", assets[1].CNPJ)
	assert.InDelta(t, 2200.0, assets[1].Amount, 1e-9, "monthly totals summed per year")

	require.Len(t, liabilities, 2)
	assert.Equal(t, "33333333000133", liabilities[0].CNPJ)
	assert.Equal(t, 2024, liabilities[0].Year)
}

func TestSegmentCounts(t *testing.T) {
	rows := []contracts.Row{
		segRow(cnpjA, "2024-01-31", "Logística"),
		segRow(cnpjA, "2024-02-29", "Logística"),
		segRow(cnpjB, "2024-01-31", "Logística"),
		segRow(cnpjC, "2024-01-31", ""),
		segRow(cnpjC, "2023-01-31", "Shoppings"),
	}

	got := SegmentCounts(rows, 2024, "Outros")
	assert.Equal(t, []SegmentCount{
		{Segment: "Logística", Year: 2024, Funds: 2},
		{Segment: "Outros", Year: 2024, Funds: 1},
	}, got)
}

func TestDividendLeaders(t *testing.T) {
	rows := []contracts.Row{
		dyRow(cnpjA, "2023-01-31", "0,01"),
		dyRow(cnpjA, "2023-02-28", "0,01"),
		dyRow(cnpjA, "2024-01-31", "0,01"),
		dyRow(cnpjB, "2024-01-31", "0,025"),
		dyRow(cnpjC, "2024-01-31", "0,001"),
	}

	got := DividendLeaders(rows, 2)
	require.Len(t, got, 2)

	assert.Equal(t, "11111111000111", got[0].CNPJ)
	assert.InDelta(t, 3.0, got[0].Total, 1e-9)
	assert.InDelta(t, 1.5, got[0].Mean, 1e-9, "mean of the 2023 (2.0) and 2024 (1.0) sums")
	assert.Equal(t, 2, got[0].Years)
	assert.Equal(t, "22222222000122", got[1].CNPJ)
}

func TestSegmentList(t *testing.T) {
	rows := []contracts.Row{
		segRow(cnpjA, "2024-01-31", "Shoppings"),
		segRow(cnpjB, "2024-01-31", ""),
		segRow(cnpjC, "2024-01-31", "Logística"),
		segRow(cnpjA, "2024-02-29", "Shoppings"),
	}
	assert.Equal(t, []string{"Logística", "Outros", "Shoppings"}, SegmentList(rows, "Outros"))
}

func newService(quotes contracts.QuoteService) (*Service, *fakeProvider) {
	provider := &fakeProvider{rows: map[contracts.DatasetKind][]contracts.Row{
		contracts.KindAssetLiability: {
			assetRow(cnpjA, "2024-01-31", "1.000,00", "50,00"),
		},
		contracts.KindGeneral: {
			segRow(cnpjA, "2024-01-31", "Logística"),
			segRow(cnpjB, "2024-01-31", ""),
		},
		contracts.KindComplement: {
			dyRow(cnpjA, "2023-12-31", "0,009"),
			dyRow(cnpjA, "2024-03-31", "0,0085"),
			dyRow(cnpjA, "2024-01-31", "0,011"),
			dyRow(cnpjB, "2024-01-31", "0,02"),
		},
	}}
	registry := dataset.NewRegistry(map[string]string{cnpjA: "AAAA11", cnpjB: "BBBB11", cnpjC: "CCCC11"})
	svc := NewService(provider, registry, quotes, redis.NewCache(redis.Disabled(), "fii"), Config{Years: []int{2023, 2024}}, logger.Nop())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return svc, provider
}

func TestServiceReport(t *testing.T) {
	svc, provider := newService(nil)

	report, err := svc.Report(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, 2024, report.Year)
	require.Len(t, report.TopAssets, 1)
	assert.Equal(t, "AAAA11", report.TopAssets[0].Ticker)
	assert.Len(t, report.Segments, 2)

	require.Len(t, report.DividendLeaders, 2)
	assert.Equal(t, "AAAA11", report.DividendLeaders[0].Ticker)
	assert.Equal(t, [][]int{{2023, 2024}}, provider.calls[contracts.KindComplement])
}

func TestServiceReportNoData(t *testing.T) {
	svc, _ := newService(nil)

	_, err := svc.Report(context.Background(), 2019)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestServiceSegments(t *testing.T) {
	svc, _ := newService(nil)

	got, err := svc.Segments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Logística", "Outros"}, got)
}

func TestServiceFundProfile(t *testing.T) {
	svc, _ := newService(&fakeQuotes{prices: map[string]float64{"AAAA11.SA": 101.5}})

	p, err := svc.FundProfile(context.Background(), "aaaa11")
	require.NoError(t, err)

	assert.Equal(t, "AAAA11", p.Ticker)
	assert.Equal(t, "11111111000111", p.CNPJ)
	assert.Equal(t, "Logística", p.Segment)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), p.ReferenceDate)
	assert.InDelta(t, 0.85, p.DividendYield, 1e-9)
	assert.InDelta(t, 1000000.0, p.NetEquity, 1e-9)
	assert.InDelta(t, 100.0, p.BookValuePerQuota, 1e-9)
	assert.InDelta(t, 2500.0, p.Holders, 1e-9)
	assert.Equal(t, 101.5, p.Price)

	require.Len(t, p.History, 3)
	assert.True(t, p.History[0].ReferenceDate.Before(p.History[2].ReferenceDate))
}

func TestServiceFundProfileDefaults(t *testing.T) {
	svc, _ := newService(&fakeQuotes{err: errors.New("timeout")})

	p, err := svc.FundProfile(context.Background(), "BBBB11")
	require.NoError(t, err)
	assert.Equal(t, "Outros", p.Segment)
	assert.Zero(t, p.Price)
}

func TestServiceFundProfileNotFound(t *testing.T) {
	svc, _ := newService(nil)

	_, err := svc.FundProfile(context.Background(), "ZZZZ11")
	assert.ErrorIs(t, err, ErrFundNotFound)

	_, err = svc.FundProfile(context.Background(), "CCCC11")
	assert.ErrorIs(t, err, ErrFundNotFound, "listed but without filings")
}

package insights

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/locale"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
	"github.com/wonny/fii-advisor/backend/pkg/redis"
)

var (
	// ErrFundNotFound is returned for tickers outside the registry or without filings
	ErrFundNotFound = errors.New("fund not found")
	// ErrNoData is returned when a year has no rows
	ErrNoData = errors.New("no data for year")
)

// DefaultTopN is the size of every ranking in a Report
const DefaultTopN = 5

// FundRegistry resolves tickers in both directions
type FundRegistry interface {
	contracts.ListedFundRegistry
	CNPJFor(ticker string) (string, bool)
}

// Config holds Service settings
type Config struct {
	Years        []int
	TopN         int
	DefaultLabel string
	MarketSuffix string
	QuoteTimeout time.Duration
	CacheTTL     time.Duration
}

// Service computes dataset overviews and fund profiles
type Service struct {
	provider contracts.DatasetProvider
	registry FundRegistry
	quotes   contracts.QuoteService // optional
	cache    *redis.Cache           // optional
	cfg      Config
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates an insights service. quotes and cache may be nil.
func NewService(
	provider contracts.DatasetProvider,
	registry FundRegistry,
	quotes contracts.QuoteService,
	cache *redis.Cache,
	cfg Config,
	log *logger.Logger,
) *Service {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.DefaultLabel == "" {
		cfg.DefaultLabel = contracts.DefaultSegment
	}
	if cfg.MarketSuffix == "" {
		cfg.MarketSuffix = ".SA"
	}
	if cfg.QuoteTimeout <= 0 {
		cfg.QuoteTimeout = 15 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = redis.TTLMedium
	}
	return &Service{
		provider: provider,
		registry: registry,
		quotes:   quotes,
		cache:    cache,
		cfg:      cfg,
		logger:   log.WithComponent("insights"),
		now:      time.Now,
	}
}

// Report returns the overview of year, cached when Redis is enabled
func (s *Service) Report(ctx context.Context, year int) (*Report, error) {
	if s.cache == nil {
		return s.buildReport(ctx, year)
	}

	var report Report
	err := s.cache.GetOrSet(ctx, redis.InsightsKey(year), &report, s.cfg.CacheTTL, func() (interface{}, error) {
		return s.buildReport(ctx, year)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Invalidate drops cached reports (0 = every year)
func (s *Service) Invalidate(ctx context.Context, year int) error {
	if s.cache == nil {
		return nil
	}
	if year > 0 {
		return s.cache.Delete(ctx, redis.InsightsKey(year))
	}
	_, err := s.cache.DeletePattern(ctx, "insights:*")
	return err
}

func (s *Service) buildReport(ctx context.Context, year int) (*Report, error) {
	assetRows, err := s.provider.Load(ctx, contracts.KindAssetLiability, []int{year})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", contracts.KindAssetLiability, err)
	}
	generalRows, err := s.provider.Load(ctx, contracts.KindGeneral, []int{year})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", contracts.KindGeneral, err)
	}
	complementRows, err := s.provider.Load(ctx, contracts.KindComplement, s.yearsUpTo(year))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", contracts.KindComplement, err)
	}

	if len(assetRows) == 0 && len(generalRows) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoData, year)
	}

	assets, liabilities := TopAssetsLiabilities(assetRows, year, s.cfg.TopN)
	s.attachTickers(assets)
	s.attachTickers(liabilities)

	leaders := DividendLeaders(complementRows, s.cfg.TopN)
	for i := range leaders {
		leaders[i].Ticker, _ = s.registry.TickerFor(leaders[i].CNPJ)
	}

	report := &Report{
		Year:            year,
		TopAssets:       assets,
		TopLiabilities:  liabilities,
		Segments:        SegmentCounts(generalRows, year, s.cfg.DefaultLabel),
		DividendLeaders: leaders,
		GeneratedAt:     s.now(),
	}

	s.logger.WithFields(map[string]interface{}{
		"year":     year,
		"segments": len(report.Segments),
		"leaders":  len(leaders),
	}).Debug("Insights report built")

	return report, nil
}

// yearsUpTo returns the configured years <= year (year itself when none)
func (s *Service) yearsUpTo(year int) []int {
	var out []int
	for _, y := range s.cfg.Years {
		if y <= year {
			out = append(out, y)
		}
	}
	if len(out) == 0 {
		out = []int{year}
	}
	return out
}

func (s *Service) attachTickers(amounts []FundAmount) {
	for i := range amounts {
		amounts[i].Ticker, _ = s.registry.TickerFor(amounts[i].CNPJ)
	}
}

// Segments lists the distinct segments across the configured years
func (s *Service) Segments(ctx context.Context) ([]string, error) {
	rows, err := s.provider.Load(ctx, contracts.KindGeneral, s.cfg.Years)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", contracts.KindGeneral, err)
	}
	return SegmentList(rows, s.cfg.DefaultLabel), nil
}

// FundProfile returns the latest filing of ticker: latest year first, then
// the latest month inside it. The price is filled when quotes respond.
func (s *Service) FundProfile(ctx context.Context, ticker string) (*FundProfile, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	cnpj, ok := s.registry.CNPJFor(ticker)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFundNotFound, ticker)
	}

	complement, err := s.provider.Load(ctx, contracts.KindComplement, s.cfg.Years)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", contracts.KindComplement, err)
	}

	var history []MonthlyPoint
	var latest contracts.Row
	var latestDate time.Time
	for _, row := range complement {
		if locale.NormalizeCNPJ(row.Get(contracts.ColCNPJ)) != cnpj {
			continue
		}
		date, err := locale.ParseDate(row.Get(contracts.ColReferenceDate))
		if err != nil {
			continue
		}
		history = append(history, MonthlyPoint{
			ReferenceDate: date,
			DividendYield: locale.MustFloat(row.Get(contracts.ColDividendYield)) * 100,
			NetEquity:     locale.MustFloat(row.Get(contracts.ColNetEquity)),
			Holders:       locale.MustFloat(row.Get(contracts.ColHolders)),
		})
		// (year, month) comparison; the first row of the latest month wins
		if latest == nil || date.After(latestDate) {
			latest, latestDate = row, date
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: %s has no filings", ErrFundNotFound, ticker)
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].ReferenceDate.Before(history[j].ReferenceDate)
	})

	profile := &FundProfile{
		Ticker:        ticker,
		CNPJ:          cnpj,
		Segment:       s.cfg.DefaultLabel,
		ReferenceDate: latestDate,
		DividendYield: locale.MustFloat(latest.Get(contracts.ColDividendYield)) * 100,
		NetEquity:     locale.MustFloat(latest.Get(contracts.ColNetEquity)),
		QuotasIssued:  locale.MustFloat(latest.Get(contracts.ColQuotasIssued)),
		Holders:       locale.MustFloat(latest.Get(contracts.ColHolders)),
		History:       history,
	}
	if profile.QuotasIssued > 0 {
		profile.BookValuePerQuota = profile.NetEquity / profile.QuotasIssued
	}

	if segment, err := s.segmentOf(ctx, cnpj); err == nil && segment != "" {
		profile.Segment = segment
	}

	profile.Price = s.latestPrice(ctx, ticker)
	return profile, nil
}

func (s *Service) segmentOf(ctx context.Context, cnpj string) (string, error) {
	rows, err := s.provider.Load(ctx, contracts.KindGeneral, s.cfg.Years)
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		if locale.NormalizeCNPJ(row.Get(contracts.ColCNPJ)) == cnpj {
			return strings.TrimSpace(row.Get(contracts.ColSegment)), nil
		}
	}
	return "", nil
}

func (s *Service) latestPrice(ctx context.Context, ticker string) float64 {
	if s.quotes == nil {
		return 0
	}

	qctx, cancel := context.WithTimeout(ctx, s.cfg.QuoteTimeout)
	defer cancel()

	symbol := ticker + s.cfg.MarketSuffix
	prices, err := s.quotes.BatchQuote(qctx, []string{symbol})
	if err != nil {
		s.logger.WithError(err).WithField("symbol", symbol).Warn("Quote lookup failed")
		return 0
	}
	return prices[symbol]
}

package recommender

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/locale"
	"github.com/wonny/fii-advisor/backend/internal/policy"
	"github.com/wonny/fii-advisor/backend/internal/quotes"
	"github.com/wonny/fii-advisor/backend/internal/selection"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// Pipeline runs one recommendation request end to end
// ⭐ SSOT: 추천 파이프라인 조율은 여기서만
//
// Stage order is fixed:
//
//	load → registry join → dedup → parse → min-max → score/segment/sort
//	→ recency → segment → candidate limit → quotes → band/count/dedup
//
// Min-max scaling runs on the whole listed universe before any filter, so
// a fund's score depends on every year and segment loaded for the run.
type Pipeline struct {
	provider contracts.DatasetProvider
	registry contracts.ListedFundRegistry
	scorer   *selection.Scorer
	enricher *quotes.Enricher
	policy   *policy.Config
	years    []int
	logger   *logger.Logger

	now   func() time.Time
	newID func() string
}

var _ contracts.Recommender = (*Pipeline)(nil)

// New creates a pipeline; a nil policy uses policy.Default()
func New(
	provider contracts.DatasetProvider,
	registry contracts.ListedFundRegistry,
	quoteService contracts.QuoteService,
	pol *policy.Config,
	years []int,
	log *logger.Logger,
) *Pipeline {
	if pol == nil {
		pol = policy.Default()
	}
	log = log.WithComponent("recommender")

	return &Pipeline{
		provider: provider,
		registry: registry,
		scorer:   selection.NewScorer(log),
		enricher: quotes.NewEnricher(quoteService, pol.Quotes.MarketSuffix, pol.Quotes.TimeoutDuration(), log),
		policy:   pol,
		years:    append([]int(nil), years...),
		logger:   log,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Recommend executes the pipeline for req.
//
// Errors are returned for invalid requests (contracts.ErrInvalidRequest),
// dataset load failures and unparseable fundamentals (locale.ErrIngestion).
// Unavailable quotes are not an error: the result is empty with Warning set.
func (p *Pipeline) Recommend(ctx context.Context, req contracts.Request) (*contracts.Result, error) {
	start := p.now()

	req, err := req.Normalized()
	if err != nil {
		return nil, err
	}

	result := &contracts.Result{
		RunID:           p.newID(),
		Request:         req,
		Recommendations: []contracts.Recommendation{},
		GeneratedAt:     start,
	}
	log := p.logger.WithField("run_id", result.RunID)

	log.WithFields(map[string]interface{}{
		"profile":    req.Profile,
		"recency":    req.Recency,
		"segments":   len(req.Segments),
		"price_band": req.PriceBand,
		"count":      req.Count,
	}).Info("Starting recommendation run")

	// 1. Load
	complement, err := p.provider.Load(ctx, contracts.KindComplement, p.years)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", contracts.KindComplement, err)
	}
	general, err := p.provider.Load(ctx, contracts.KindGeneral, p.years)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", contracts.KindGeneral, err)
	}
	result.Stats.Loaded = len(complement)

	// 2. Registry join
	listed := p.joinRegistry(complement)
	result.Stats.Listed = len(listed)

	// 3. Dedup (CNPJ, reference date), last filing wins
	listed = dedupLastFiling(listed)
	result.Stats.Deduplicated = len(listed)

	// 4. Parse fundamentals
	records, err := p.buildRecords(listed, segmentsByCNPJ(general, p.policy.Segments.DefaultLabel))
	if err != nil {
		return nil, err
	}

	// 5. Min-max over the listed universe (before any filter)
	selection.NormalizeMetrics(records)

	// 6-8. Score, keep the requested profile, stable sort
	scored, err := p.scorer.Score(records, req.Profile)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 9-10. Recency and segment
	scored = selection.FilterRecency(scored, req.Recency)
	result.Stats.AfterRecency = len(scored)
	scored = selection.FilterSegments(scored, req.Segments)
	result.Stats.AfterSegment = len(scored)

	// 11. Candidate pool
	candidates := selection.Head(scored, p.policy.Candidates.Limit)
	result.Stats.Candidates = len(candidates)

	log.WithFields(map[string]interface{}{
		"loaded":        result.Stats.Loaded,
		"listed":        result.Stats.Listed,
		"deduplicated":  result.Stats.Deduplicated,
		"after_recency": result.Stats.AfterRecency,
		"after_segment": result.Stats.AfterSegment,
		"candidates":    result.Stats.Candidates,
	}).Debug("Candidates selected")

	// 12. Quotes
	priced, warning := p.enricher.Enrich(ctx, candidates)
	result.Stats.Quoted = len(priced)
	result.Warning = warning

	// 13. Band → head N → ticker dedup
	final := selection.ApplyBandAndCount(priced, req.PriceBand, req.Count, p.policy.PriceBands)
	result.Recommendations = toRecommendations(final)
	result.Stats.Returned = len(result.Recommendations)
	result.Duration = p.now().Sub(start)

	entry := log.WithFields(map[string]interface{}{
		"returned": result.Stats.Returned,
		"quoted":   result.Stats.Quoted,
		"duration": result.Duration,
	})
	if result.Degraded() {
		entry.WithField("warning", result.Warning).Warn("Recommendation run completed without quotes")
	} else {
		entry.Info("Recommendation run completed")
	}

	return result, nil
}

// listedRow is a complement row that matched the registry
type listedRow struct {
	index  int // position in the loaded batch
	cnpj   string
	ticker string
	date   string
	row    contracts.Row
}

func (p *Pipeline) joinRegistry(rows []contracts.Row) []listedRow {
	out := make([]listedRow, 0, len(rows))
	for i, row := range rows {
		cnpj := locale.NormalizeCNPJ(row.Get(contracts.ColCNPJ))
		if cnpj == "" {
			continue
		}
		ticker, ok := p.registry.TickerFor(cnpj)
		if !ok {
			continue
		}
		out = append(out, listedRow{
			index:  i,
			cnpj:   cnpj,
			ticker: ticker,
			date:   strings.TrimSpace(row.Get(contracts.ColReferenceDate)),
			row:    row,
		})
	}
	return out
}

// dedupLastFiling keeps the last row of each (CNPJ, reference date) at the
// position of that last row
func dedupLastFiling(rows []listedRow) []listedRow {
	last := make(map[string]int, len(rows))
	for i, r := range rows {
		last[r.cnpj+"|"+r.date] = i
	}
	if len(last) == len(rows) {
		return rows
	}

	out := make([]listedRow, 0, len(last))
	for i, r := range rows {
		if last[r.cnpj+"|"+r.date] == i {
			out = append(out, r)
		}
	}
	return out
}

// segmentsByCNPJ maps each CNPJ to the segment of its first general row
func segmentsByCNPJ(rows []contracts.Row, defaultLabel string) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		cnpj := locale.NormalizeCNPJ(row.Get(contracts.ColCNPJ))
		if cnpj == "" {
			continue
		}
		if _, ok := out[cnpj]; ok {
			continue
		}
		segment := strings.TrimSpace(row.Get(contracts.ColSegment))
		if segment == "" {
			segment = defaultLabel
		}
		out[cnpj] = segment
	}
	return out
}

var scoredColumns = []string{
	contracts.ColDividendYield,
	contracts.ColEffectiveReturn,
	contracts.ColEquityReturn,
}

func (p *Pipeline) buildRecords(listed []listedRow, segments map[string]string) ([]contracts.FundRecord, error) {
	rows := make([]contracts.Row, len(listed))
	for i, l := range listed {
		rows[i] = l.row
	}

	values, err := locale.NormalizeBatch(rows, scoredColumns...)
	if err != nil {
		var ie *locale.IngestionError
		if errors.As(err, &ie) {
			ie.Row = listed[ie.Row].index
		}
		return nil, err
	}

	records := make([]contracts.FundRecord, len(listed))
	for i, l := range listed {
		date, err := locale.ParseDate(l.date)
		if err != nil {
			return nil, &locale.IngestionError{
				Row:   l.index,
				Field: contracts.ColReferenceDate,
				Value: l.date,
				Err:   err,
			}
		}

		segment, ok := segments[l.cnpj]
		if !ok {
			segment = p.policy.Segments.DefaultLabel
		}

		records[i] = contracts.FundRecord{
			CNPJ:          l.cnpj,
			Ticker:        l.ticker,
			ReferenceDate: date,
			Segment:       segment,
			Raw: contracts.RawMetrics{
				DividendYield:   values[i][0],
				EffectiveReturn: values[i][1],
				EquityReturn:    values[i][2],
				NetEquity:       locale.MustFloat(l.row.Get(contracts.ColNetEquity)),
				QuotasIssued:    locale.MustFloat(l.row.Get(contracts.ColQuotasIssued)),
				Holders:         locale.MustFloat(l.row.Get(contracts.ColHolders)),
			},
		}
	}
	return records, nil
}

func toRecommendations(funds []contracts.PricedFund) []contracts.Recommendation {
	out := make([]contracts.Recommendation, len(funds))
	for i, f := range funds {
		out[i] = contracts.Recommendation{
			Rank:          i + 1,
			CNPJ:          f.CNPJ,
			Ticker:        f.Ticker,
			ReferenceDate: f.ReferenceDate,
			Segment:       f.Segment,
			Score:         f.Score,
			Price:         f.Price,
		}
	}
	return out
}

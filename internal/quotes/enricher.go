package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// Defaults for B3 listed funds
const (
	DefaultSuffix  = ".SA"
	DefaultTimeout = 15 * time.Second
)

// Enricher joins scored funds with their latest close
// ⭐ SSOT: 파이프라인에서 유일하게 외부 서비스를 기다리는 단계
type Enricher struct {
	service contracts.QuoteService
	suffix  string
	timeout time.Duration
	logger  *logger.Logger
}

// NewEnricher creates an enricher; empty suffix / zero timeout use defaults
func NewEnricher(service contracts.QuoteService, suffix string, timeout time.Duration, log *logger.Logger) *Enricher {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Enricher{
		service: service,
		suffix:  suffix,
		timeout: timeout,
		logger:  log.WithComponent("quotes"),
	}
}

// Symbol maps a ticker to its exchange symbol (HGLG11 → HGLG11.SA)
func (e *Enricher) Symbol(ticker string) string {
	return ticker + e.suffix
}

// Symbols returns the deduplicated exchange symbols in first-seen order
func (e *Enricher) Symbols(funds []contracts.ScoredFund) []string {
	seen := make(map[string]struct{}, len(funds))
	symbols := make([]string, 0, len(funds))
	for _, f := range funds {
		s := e.Symbol(f.Ticker)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		symbols = append(symbols, s)
	}
	return symbols
}

// Enrich issues exactly one batched quote request for funds and joins the
// closes back by ticker. Rows without a quote are dropped.
//
// Service failure or timeout is not an error: the result is empty and the
// returned warning explains why.
func (e *Enricher) Enrich(ctx context.Context, funds []contracts.ScoredFund) ([]contracts.PricedFund, string) {
	if len(funds) == 0 {
		return []contracts.PricedFund{}, ""
	}

	symbols := e.Symbols(funds)

	qctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	quotes, err := e.service.BatchQuote(qctx, symbols)
	if err != nil {
		warning := "quotes unavailable: " + err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			warning = fmt.Sprintf("quotes unavailable: no response within %s", e.timeout)
		}
		e.logger.WithError(err).WithFields(map[string]interface{}{
			"symbols":  len(symbols),
			"duration": time.Since(start),
		}).Warn("Quote lookup failed, returning no priced funds")
		return []contracts.PricedFund{}, warning
	}

	priced := make([]contracts.PricedFund, 0, len(funds))
	for _, f := range funds {
		price, ok := quotes[e.Symbol(f.Ticker)]
		if !ok {
			continue
		}
		priced = append(priced, contracts.PricedFund{ScoredFund: f, Price: price})
	}

	var warning string
	if len(quotes) == 0 {
		warning = fmt.Sprintf("quotes unavailable: none of %d symbols returned a price", len(symbols))
	}

	e.logger.WithFields(map[string]interface{}{
		"symbols":  len(symbols),
		"resolved": len(quotes),
		"rows":     len(priced),
		"duration": time.Since(start),
	}).Debug("Quotes joined")

	return priced, warning
}

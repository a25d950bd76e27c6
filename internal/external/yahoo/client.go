package yahoo

import (
	"context"
	"fmt"
	"math"

	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/multi"

	"github.com/wonny/fii-advisor/backend/pkg/logger"
	"github.com/wonny/fii-advisor/backend/pkg/redis"
)

// fetchFunc downloads daily bars for symbols and returns the last close per symbol
type fetchFunc func(symbols []string) (closes map[string]float64, failures map[string]error, err error)

// Client resolves latest closes from Yahoo Finance in one batched download
// ⭐ SSOT: 시세 조회는 여기서만 (B3 종목은 ".SA" 접미사)
type Client struct {
	fetch   fetchFunc
	limiter *redis.RateLimiter
	logger  *logger.Logger
}

// NewClient creates a Yahoo Finance client. limiter may be nil.
func NewClient(limiter *redis.RateLimiter, log *logger.Logger) *Client {
	return &Client{
		fetch:   download,
		limiter: limiter,
		logger:  log.WithComponent("yahoo"),
	}
}

// download performs the multi-symbol request
func download(symbols []string) (map[string]float64, map[string]error, error) {
	params := models.DefaultDownloadParams()
	params.Symbols = symbols
	params.Period = "5d" // 휴장일 대비 최근 5영업일
	params.Interval = "1d"

	result, err := multi.Download(symbols, &params)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download batch quotes: %w", err)
	}

	closes := make(map[string]float64, len(symbols))
	failures := make(map[string]error)
	for _, symbol := range symbols {
		if bars, ok := result.Data[symbol]; ok && len(bars) > 0 {
			closes[symbol] = bars[len(bars)-1].Close
		} else if err, ok := result.Errors[symbol]; ok {
			failures[symbol] = err
		}
	}
	return closes, failures, nil
}

// BatchQuote returns the latest close for each symbol it could resolve.
// Symbols without a usable price are absent from the map.
func (c *Client) BatchQuote(ctx context.Context, symbols []string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, redis.YahooRateLimit); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	type outcome struct {
		closes   map[string]float64
		failures map[string]error
		err      error
	}

	// multi.Download는 context를 받지 않으므로 goroutine + select로 타임아웃 처리
	done := make(chan outcome, 1)
	go func() {
		closes, failures, err := c.fetch(symbols)
		done <- outcome{closes, failures, err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("batch quote for %d symbols: %w", len(symbols), ctx.Err())
	case out = <-done:
	}

	if out.err != nil {
		return nil, out.err
	}

	for symbol, err := range out.failures {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to get quote for symbol")
	}

	quotes := make(map[string]float64, len(out.closes))
	for symbol, price := range out.closes {
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			continue
		}
		quotes[symbol] = price
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(symbols),
		"resolved":  len(quotes),
	}).Debug("Batch quote completed")

	return quotes, nil
}

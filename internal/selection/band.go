package selection

import (
	"github.com/wonny/fii-advisor/backend/internal/contracts"
)

// BandLimits are the price thresholds in BRL
// 120 < p <= 121 구간은 어느 밴드에도 속하지 않음 (기존 동작 유지)
type BandLimits struct {
	LowMax  float64 `yaml:"low_max" json:"low_max"`   // low: p <= LowMax
	MidMax  float64 `yaml:"mid_max" json:"mid_max"`   // mid: LowMax < p <= MidMax
	HighMin float64 `yaml:"high_min" json:"high_min"` // high: p > HighMin
}

// DefaultBandLimits returns the R$90 / R$120 / R$121 thresholds
func DefaultBandLimits() BandLimits {
	return BandLimits{LowMax: 90, MidMax: 120, HighMin: 121}
}

// Contains reports whether price falls in band
func (l BandLimits) Contains(band contracts.PriceBand, price float64) bool {
	switch band {
	case contracts.BandLow:
		return price <= l.LowMax
	case contracts.BandMid:
		return price > l.LowMax && price <= l.MidMax
	case contracts.BandHigh:
		return price > l.HighMin
	case contracts.BandAny, "":
		return true
	}
	return false
}

// FilterPriceBand keeps funds priced inside band
func FilterPriceBand(funds []contracts.PricedFund, band contracts.PriceBand, limits BandLimits) []contracts.PricedFund {
	out := make([]contracts.PricedFund, 0, len(funds))
	for _, f := range funds {
		if limits.Contains(band, f.Price) {
			out = append(out, f)
		}
	}
	return out
}

// DedupTicker keeps the first (highest scoring) row of each ticker
func DedupTicker(funds []contracts.PricedFund) []contracts.PricedFund {
	seen := make(map[string]struct{}, len(funds))
	out := make([]contracts.PricedFund, 0, len(funds))
	for _, f := range funds {
		if _, ok := seen[f.Ticker]; ok {
			continue
		}
		seen[f.Ticker] = struct{}{}
		out = append(out, f)
	}
	return out
}

// ApplyBandAndCount filters by price, takes the top n, then dedups by
// ticker. Fewer than n survivors is a valid outcome.
func ApplyBandAndCount(funds []contracts.PricedFund, band contracts.PriceBand, n int, limits BandLimits) []contracts.PricedFund {
	if n < 1 {
		return []contracts.PricedFund{}
	}
	inBand := FilterPriceBand(funds, band, limits)
	return DedupTicker(Head(inBand, n))
}

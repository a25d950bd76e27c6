package selection

import (
	"time"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
)

// FilterRecency keeps the reporting periods selected by r.
//   - history: everything
//   - annual:  rows in the latest year
//   - monthly: rows in the latest month of the latest year
//
// Empty input returns an empty slice.
func FilterRecency(funds []contracts.ScoredFund, r contracts.Recency) []contracts.ScoredFund {
	if len(funds) == 0 {
		return []contracts.ScoredFund{}
	}
	if r == contracts.RecencyHistory || r == "" {
		return funds
	}

	latestYear := funds[0].Year()
	for _, f := range funds[1:] {
		if y := f.Year(); y > latestYear {
			latestYear = y
		}
	}

	var latestMonth time.Month
	for _, f := range funds {
		if f.Year() == latestYear && f.Month() > latestMonth {
			latestMonth = f.Month()
		}
	}

	out := make([]contracts.ScoredFund, 0, len(funds))
	for _, f := range funds {
		if f.Year() != latestYear {
			continue
		}
		if r == contracts.RecencyMonthly && f.Month() != latestMonth {
			continue
		}
		out = append(out, f)
	}
	return out
}

// FilterSegments keeps funds whose segment is selected.
// An empty selection means no restriction (identity), not "exclude all".
func FilterSegments(funds []contracts.ScoredFund, segments []string) []contracts.ScoredFund {
	if len(segments) == 0 {
		return funds
	}

	allowed := make(map[string]struct{}, len(segments))
	for _, s := range segments {
		allowed[s] = struct{}{}
	}

	out := make([]contracts.ScoredFund, 0, len(funds))
	for _, f := range funds {
		if _, ok := allowed[f.Segment]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Head returns the first n funds; n <= 0 means unlimited
func Head[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

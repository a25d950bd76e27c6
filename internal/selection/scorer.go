package selection

import (
	"fmt"
	"sort"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// Profile weights (DY, ER, PR). Policy constants, not runtime config.
const (
	ConservativeDY = 0.6
	ConservativeER = 0.3
	ConservativePR = 0.1

	ModerateDY = 0.4
	ModerateER = 0.4
	ModeratePR = 0.2

	AggressiveDY = 0.2
	AggressiveER = 0.5
	AggressivePR = 0.3
)

// Weights is the weight triple of one profile
type Weights struct {
	DividendYield   float64
	EffectiveReturn float64
	EquityReturn    float64
}

// WeightsFor returns the fixed weights of profile
func WeightsFor(p contracts.Profile) (Weights, error) {
	switch p {
	case contracts.ProfileConservative:
		return Weights{ConservativeDY, ConservativeER, ConservativePR}, nil
	case contracts.ProfileModerate:
		return Weights{ModerateDY, ModerateER, ModeratePR}, nil
	case contracts.ProfileAggressive:
		return Weights{AggressiveDY, AggressiveER, AggressivePR}, nil
	}
	return Weights{}, fmt.Errorf("%w: unknown profile %q", contracts.ErrInvalidRequest, p)
}

// Apply computes the weighted sum of m
func (w Weights) Apply(m contracts.NormalizedMetrics) float64 {
	return w.DividendYield*m.DividendYield +
		w.EffectiveReturn*m.EffectiveReturn +
		w.EquityReturn*m.EquityReturn
}

// Valid checks that weights are non-negative and sum to 1.0
func (w Weights) Valid() bool {
	if w.DividendYield < 0 || w.EffectiveReturn < 0 || w.EquityReturn < 0 {
		return false
	}
	sum := w.DividendYield + w.EffectiveReturn + w.EquityReturn
	return sum >= 0.999 && sum <= 1.001
}

// ScoreMetrics computes all three profile scores for m
func ScoreMetrics(m contracts.NormalizedMetrics) contracts.ProfileScore {
	return contracts.ProfileScore{
		Conservative: Weights{ConservativeDY, ConservativeER, ConservativePR}.Apply(m),
		Moderate:     Weights{ModerateDY, ModerateER, ModeratePR}.Apply(m),
		Aggressive:   Weights{AggressiveDY, AggressiveER, AggressivePR}.Apply(m),
	}
}

// Scorer attaches profile scores and orders records
// ⭐ SSOT: 프로파일 점수 계산은 여기서만
type Scorer struct {
	logger *logger.Logger
}

// NewScorer creates a new scorer
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{logger: log}
}

// Score computes profile scores for normalized records, keeps the one
// matching profile and returns them sorted by score descending (stable)
func (s *Scorer) Score(records []contracts.FundRecord, profile contracts.Profile) ([]contracts.ScoredFund, error) {
	if _, err := WeightsFor(profile); err != nil {
		return nil, err
	}

	scored := make([]contracts.ScoredFund, len(records))
	for i, r := range records {
		scores := ScoreMetrics(r.Metrics)
		scored[i] = contracts.ScoredFund{
			FundRecord: r,
			Scores:     scores,
			Score:      scores.For(profile),
		}
	}

	SortByScore(scored)

	if len(scored) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"profile":    profile,
			"records":    len(scored),
			"top_score":  scored[0].Score,
			"top_ticker": scored[0].Ticker,
		}).Debug("Scoring completed")
	}

	return scored, nil
}

// SortByScore sorts descending by numeric score, preserving input order on ties
func SortByScore(funds []contracts.ScoredFund) {
	sort.SliceStable(funds, func(i, j int) bool {
		return funds[i].Score > funds[j].Score
	})
}

package policy

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	if cfg.Meta.PolicyID == "" {
		return ValidationError{"meta.policy_id", "required"}
	}

	if cfg.Candidates.Limit < 0 {
		return ValidationError{"candidates.limit", "must be >= 0"}
	}

	if !strings.HasPrefix(cfg.Quotes.MarketSuffix, ".") || len(cfg.Quotes.MarketSuffix) < 2 {
		return ValidationError{"quotes.market_suffix", "must look like \".SA\""}
	}
	d, err := time.ParseDuration(cfg.Quotes.Timeout)
	if err != nil {
		return ValidationError{"quotes.timeout", err.Error()}
	}
	if d <= 0 || d > 2*time.Minute {
		return ValidationError{"quotes.timeout", "must be in (0, 2m]"}
	}

	b := cfg.PriceBands
	if b.LowMax <= 0 {
		return ValidationError{"price_bands.low_max", "must be > 0"}
	}
	if b.MidMax <= b.LowMax {
		return ValidationError{"price_bands.mid_max", "must be > low_max"}
	}
	if b.HighMin < b.MidMax {
		return ValidationError{"price_bands.high_min", "must be >= mid_max"}
	}

	if strings.TrimSpace(cfg.Segments.DefaultLabel) == "" {
		return ValidationError{"segments.default_label", "required"}
	}

	return nil
}

package policy

import (
	"time"

	"github.com/wonny/fii-advisor/backend/internal/selection"
)

// Config is the recommendation policy (config/policy/fii_default.yaml)
type Config struct {
	Meta       Meta                 `yaml:"meta" json:"meta"`
	Candidates Candidates           `yaml:"candidates" json:"candidates"`
	Quotes     Quotes               `yaml:"quotes" json:"quotes"`
	PriceBands selection.BandLimits `yaml:"price_bands" json:"price_bands"`
	Segments   Segments             `yaml:"segments" json:"segments"`
}

// Meta 메타 정보
type Meta struct {
	PolicyID string `yaml:"policy_id" json:"policy_id"`
	Version  string `yaml:"version" json:"version"`
}

// Candidates bounds the pool sent to the quote service
type Candidates struct {
	Limit int `yaml:"limit" json:"limit"` // 0 = 제한 없음
}

// Quotes configures the single batched quote lookup
type Quotes struct {
	MarketSuffix string `yaml:"market_suffix" json:"market_suffix"`
	Timeout      string `yaml:"timeout" json:"timeout"` // Go duration ("15s")
}

// Segments configures segment attachment
type Segments struct {
	DefaultLabel string `yaml:"default_label" json:"default_label"`
}

// TimeoutDuration parses Quotes.Timeout (validated by Validate)
func (q Quotes) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(q.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Default returns the built-in policy
func Default() *Config {
	return &Config{
		Meta: Meta{
			PolicyID: "fii_default",
			Version:  "1",
		},
		Candidates: Candidates{Limit: 300},
		Quotes: Quotes{
			MarketSuffix: ".SA",
			Timeout:      "15s",
		},
		PriceBands: selection.DefaultBandLimits(),
		Segments:   Segments{DefaultLabel: "Outros"},
	}
}

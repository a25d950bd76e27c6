package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 300, cfg.Candidates.Limit)
	assert.Equal(t, ".SA", cfg.Quotes.MarketSuffix)
	assert.Equal(t, 15*time.Second, cfg.Quotes.TimeoutDuration())
	assert.Equal(t, 90.0, cfg.PriceBands.LowMax)
	assert.Equal(t, 121.0, cfg.PriceBands.HighMin)
	assert.Equal(t, "Outros", cfg.Segments.DefaultLabel)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRepoPolicy(t *testing.T) {
	path := "../../config/policy/fii_default.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("policy file not found")
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fii_default", cfg.Meta.PolicyID)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
meta:
  policy_id: tight
  version: "2"
candidates:
  limit: 50
quotes:
  timeout: 5s
`))
	require.NoError(t, err)

	assert.Equal(t, "tight", cfg.Meta.PolicyID)
	assert.Equal(t, 50, cfg.Candidates.Limit)
	assert.Equal(t, 5*time.Second, cfg.Quotes.TimeoutDuration())
	assert.Equal(t, ".SA", cfg.Quotes.MarketSuffix, "unspecified fields keep defaults")
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("candidates:\n  limt: 10\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"policy id", func(c *Config) { c.Meta.PolicyID = "" }, "meta.policy_id"},
		{"negative limit", func(c *Config) { c.Candidates.Limit = -1 }, "candidates.limit"},
		{"suffix", func(c *Config) { c.Quotes.MarketSuffix = "SA" }, "quotes.market_suffix"},
		{"timeout", func(c *Config) { c.Quotes.Timeout = "soon" }, "quotes.timeout"},
		{"timeout too long", func(c *Config) { c.Quotes.Timeout = "10m" }, "quotes.timeout"},
		{"bands order", func(c *Config) { c.PriceBands.MidMax = 80 }, "price_bands.mid_max"},
		{"high below mid", func(c *Config) { c.PriceBands.HighMin = 100 }, "price_bands.high_min"},
		{"default label", func(c *Config) { c.Segments.DefaultLabel = " " }, "segments.default_label"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var vErr ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, _ := Hash(Default())
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)

	other := Default()
	other.Candidates.Limit = 10
	h3, _ := Hash(other)
	assert.NotEqual(t, h1, h3)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte("candidates:\n  limit: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Candidates.Limit)
}

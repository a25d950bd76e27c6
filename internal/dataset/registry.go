package dataset

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/wonny/fii-advisor/backend/internal/locale"
)

// Registry columns of cnpj_fundos.csv
const (
	RegistryColTicker = "TICKER"
	RegistryColCNPJ   = "CNPJ"
)

// Registry maps listed fund CNPJs to B3 tickers
// ⭐ SSOT: 상장 FII 목록 (cnpj_fundos.csv)
type Registry struct {
	byCNPJ   map[string]string
	byTicker map[string]string
}

// NewRegistry builds a registry from a CNPJ → ticker mapping
func NewRegistry(entries map[string]string) *Registry {
	r := &Registry{
		byCNPJ:   make(map[string]string, len(entries)),
		byTicker: make(map[string]string, len(entries)),
	}
	for cnpj, ticker := range entries {
		r.add(cnpj, ticker)
	}
	return r
}

func (r *Registry) add(cnpj, ticker string) bool {
	key := locale.NormalizeCNPJ(cnpj)
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if key == "" || ticker == "" {
		return false
	}
	if _, exists := r.byCNPJ[key]; exists {
		return false
	}
	r.byCNPJ[key] = ticker
	if _, exists := r.byTicker[ticker]; !exists {
		r.byTicker[ticker] = key
	}
	return true
}

// LoadRegistry reads a ';'-separated TICKER/CNPJ file.
// When a CNPJ appears more than once the first ticker wins.
func LoadRegistry(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	rows, err := ReadUTF8CSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}

	r := NewRegistry(nil)
	for _, row := range rows {
		r.add(row.Get(RegistryColCNPJ), row.Get(RegistryColTicker))
	}
	if len(r.byCNPJ) == 0 {
		return nil, fmt.Errorf("registry %s has no TICKER/CNPJ rows", path)
	}
	return r, nil
}

// TickerFor returns the ticker of a CNPJ (any formatting)
func (r *Registry) TickerFor(cnpj string) (string, bool) {
	t, ok := r.byCNPJ[locale.NormalizeCNPJ(cnpj)]
	return t, ok
}

// CNPJFor returns the normalized CNPJ of a ticker
func (r *Registry) CNPJFor(ticker string) (string, bool) {
	c, ok := r.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	return c, ok
}

// Len returns the number of listed funds
func (r *Registry) Len() int {
	return len(r.byCNPJ)
}

// Tickers returns every ticker, sorted
func (r *Registry) Tickers() []string {
	out := make([]string, 0, len(r.byTicker))
	for t := range r.byTicker {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

package dataset

import (
	"context"
	"fmt"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/locale"
)

// cnpjFinder is implemented by stores with a CNPJ index (Postgres)
type cnpjFinder interface {
	FindByCNPJ(ctx context.Context, kind contracts.DatasetKind, cnpj string) ([]contracts.Row, error)
}

// Lookup answers per-fund queries over the configured years
type Lookup struct {
	provider contracts.DatasetProvider
	years    []int
}

// NewLookup creates a lookup over provider for years
func NewLookup(provider contracts.DatasetProvider, years []int) *Lookup {
	return &Lookup{provider: provider, years: years}
}

// Find returns every row of kind whose CNPJ matches (formatting ignored).
// ErrNotFound when the fund has no rows.
func (l *Lookup) Find(ctx context.Context, kind contracts.DatasetKind, cnpj string) ([]contracts.Row, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	key := locale.NormalizeCNPJ(cnpj)
	if key == "" {
		return nil, ErrNotFound
	}

	if finder, ok := l.provider.(cnpjFinder); ok {
		return finder.FindByCNPJ(ctx, kind, key)
	}

	rows, err := l.provider.Load(ctx, kind, l.years)
	if err != nil {
		return nil, err
	}

	var matched []contracts.Row
	for _, row := range rows {
		if locale.NormalizeCNPJ(row.Get(contracts.ColCNPJ)) == key {
			matched = append(matched, row)
		}
	}
	if len(matched) == 0 {
		return nil, ErrNotFound
	}
	return matched, nil
}

// Years returns the configured year range
func (l *Lookup) Years() []int {
	return l.years
}

// Provider returns the underlying dataset provider
func (l *Lookup) Provider() contracts.DatasetProvider {
	return l.provider
}

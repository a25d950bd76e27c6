package dataset

import (
	"context"
	"fmt"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
)

// RowStore persists the rows of one (kind, year) slice
type RowStore interface {
	ReplaceYear(ctx context.Context, kind contracts.DatasetKind, year int, rows []contracts.Row) (int64, error)
}

// ImportYear copies every kind of year from src into dst.
// A kind without rows is skipped so a partial archive never wipes stored data.
func ImportYear(ctx context.Context, src contracts.DatasetProvider, dst RowStore, year int) (map[contracts.DatasetKind]int64, error) {
	counts := make(map[contracts.DatasetKind]int64, len(contracts.AllKinds))
	for _, kind := range contracts.AllKinds {
		rows, err := src.Load(ctx, kind, []int{year})
		if err != nil {
			return counts, fmt.Errorf("read %s %d: %w", kind, year, err)
		}
		if len(rows) == 0 {
			continue
		}

		n, err := dst.ReplaceYear(ctx, kind, year, rows)
		if err != nil {
			return counts, fmt.Errorf("store %s %d: %w", kind, year, err)
		}
		counts[kind] = n
	}
	return counts, nil
}

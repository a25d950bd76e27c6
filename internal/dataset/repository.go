package dataset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/locale"
	"github.com/wonny/fii-advisor/backend/pkg/database"
)

// Schema creates the raw monthly rows table
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS fii_monthly_rows (
		kind            TEXT        NOT NULL,
		year            INT         NOT NULL,
		row_no          INT         NOT NULL,
		cnpj            TEXT        NOT NULL,
		reference_date  TEXT        NOT NULL,
		data            JSONB       NOT NULL,
		loaded_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (kind, year, row_no)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fii_monthly_rows_cnpj ON fii_monthly_rows (kind, cnpj)`,
}

// Repository stores CVM rows in Postgres and serves them as a DatasetProvider
type Repository struct {
	db *database.DB
}

// NewRepository creates a new Repository instance
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the table and index when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	return r.db.EnsureSchema(ctx, Schema...)
}

// ReplaceYear atomically swaps every row of (kind, year) for rows
func (r *Repository) ReplaceYear(ctx context.Context, kind contracts.DatasetKind, year int, rows []contracts.Row) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var copied int64
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM fii_monthly_rows WHERE kind = $1 AND year = $2`, string(kind), year); err != nil {
			return fmt.Errorf("delete %s %d: %w", kind, year, err)
		}

		source := make([][]interface{}, 0, len(rows))
		for i, row := range rows {
			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("marshal row %d: %w", i, err)
			}
			source = append(source, []interface{}{
				string(kind),
				year,
				i,
				locale.NormalizeCNPJ(row.Get(contracts.ColCNPJ)),
				row.Get(contracts.ColReferenceDate),
				data,
			})
		}

		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"fii_monthly_rows"},
			[]string{"kind", "year", "row_no", "cnpj", "reference_date", "data"},
			pgx.CopyFromRows(source),
		)
		if err != nil {
			return fmt.Errorf("copy %s %d: %w", kind, year, err)
		}
		copied = n
		return nil
	})
	return copied, err
}

// Load returns rows of kind for years in (year, file order)
func (r *Repository) Load(ctx context.Context, kind contracts.DatasetKind, years []int) ([]contracts.Row, error) {
	query := `
		SELECT data
		FROM fii_monthly_rows
		WHERE kind = $1 AND year = ANY($2)
		ORDER BY array_position($2, year), row_no
	`

	yrs := make([]int32, len(years))
	for i, y := range years {
		yrs[i] = int32(y)
	}

	return r.queryRows(ctx, query, string(kind), yrs)
}

// FindByCNPJ returns every row of kind for a fund
func (r *Repository) FindByCNPJ(ctx context.Context, kind contracts.DatasetKind, cnpj string) ([]contracts.Row, error) {
	query := `
		SELECT data
		FROM fii_monthly_rows
		WHERE kind = $1 AND cnpj = $2
		ORDER BY year, row_no
	`

	rows, err := r.queryRows(ctx, query, string(kind), locale.NormalizeCNPJ(cnpj))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows, nil
}

// Years lists the years loaded for kind
func (r *Repository) Years(ctx context.Context, kind contracts.DatasetKind) ([]int, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT year FROM fii_monthly_rows WHERE kind = $1 ORDER BY year`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int32
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, int(y))
	}
	return years, rows.Err()
}

func (r *Repository) queryRows(ctx context.Context, query string, args ...interface{}) ([]contracts.Row, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	out := []contracts.Row{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var row contracts.Row
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, fmt.Errorf("unmarshal row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

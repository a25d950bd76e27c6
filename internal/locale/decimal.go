package locale

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrIngestion marks a data-quality failure in source fundamentals
var ErrIngestion = errors.New("ingestion error")

var hundred = decimal.NewFromInt(100)

// IngestionError reports the first unparseable value of a batch
type IngestionError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion error: row %d field %s: cannot parse %q: %v", e.Row, e.Field, e.Value, e.Err)
}

// Is makes errors.Is(err, ErrIngestion) hold for every IngestionError
func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// normalizeText converts "1.234,56" into "1234.56"; blank becomes "0"
func normalizeText(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return "0"
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return s
}

func parse(text string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(normalizeText(text))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid pt-BR number %q", text)
	}
	return d, nil
}

// ParseDecimal parses a pt-BR formatted number ("1.234,56" → 1234.56, "" → 0)
func ParseDecimal(text string) (float64, error) {
	d, err := parse(text)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ParsePercent parses a fraction ("0,015") into percent points (1.5).
// Negative values are clamped to zero.
func ParsePercent(text string) (float64, error) {
	d, err := parse(text)
	if err != nil {
		return 0, err
	}
	d = d.Mul(hundred)
	if d.IsNegative() {
		return 0, nil
	}
	return d.InexactFloat64(), nil
}

// MustFloat parses without failing; unparseable values become 0.
// 표시/집계 전용 (추천 파이프라인에서는 사용 금지)
func MustFloat(text string) float64 {
	v, err := ParseDecimal(text)
	if err != nil {
		return 0
	}
	return v
}

// NormalizeBatch parses the named columns of every row as percentages.
// The first unparseable value fails the whole batch.
func NormalizeBatch[R ~map[string]string](rows []R, fields ...string) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		vals := make([]float64, len(fields))
		for j, field := range fields {
			v, err := ParsePercent(row[field])
			if err != nil {
				return nil, &IngestionError{Row: i, Field: field, Value: row[field], Err: err}
			}
			vals[j] = v
		}
		out[i] = vals
	}
	return out, nil
}

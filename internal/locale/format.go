package locale

import (
	"strconv"
	"strings"
	"time"
)

// FormatNumber renders v with two decimals using pt-BR separators ("1.234,56")
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatCompact abbreviates large amounts ("1,23 bilhões", "4,56 milhões", "7,89 mil")
func FormatCompact(v float64) string {
	switch {
	case v >= 1e9:
		return FormatNumber(v/1e9) + " bilhões"
	case v >= 1e6:
		return FormatNumber(v/1e6) + " milhões"
	case v >= 1e3:
		return FormatNumber(v/1e3) + " mil"
	default:
		return FormatNumber(v)
	}
}

// FormatScore renders a score for display; ordering always uses the float
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatBRL renders a currency amount ("R$ 1.234,56")
func FormatBRL(v float64) string {
	return "R$ " + FormatNumber(v)
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01",
}

// ParseDate accepts the reference-date layouts found in CVM files
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

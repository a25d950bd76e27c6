package locale

import "strings"

const cnpjDigits = 14

// NormalizeCNPJ keeps digits only and left-pads to 14 digits, so
// "08.693.497/0001-82", "08693497000182" and 8693497000182 compare equal
func NormalizeCNPJ(s string) string {
	var b strings.Builder
	b.Grow(cnpjDigits)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if len(digits) < cnpjDigits {
		digits = strings.Repeat("0", cnpjDigits-len(digits)) + digits
	}
	return digits
}

// FormatCNPJ renders 14 digits as "00.000.000/0000-00"; other input is returned as-is
func FormatCNPJ(s string) string {
	d := NormalizeCNPJ(s)
	if len(d) != cnpjDigits {
		return s
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCNPJ(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"08.693.497/0001-82", "08693497000182"},
		{"08693497000182", "08693497000182"},
		{"8693497000182", "08693497000182"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCNPJ(tt.input), tt.input)
	}
}

func TestFormatCNPJ(t *testing.T) {
	assert.Equal(t, "08.693.497/0001-82", FormatCNPJ("8693497000182"))
	assert.Equal(t, "00.000.000/0001-23", FormatCNPJ("123"))
	assert.Equal(t, "1234567890123456", FormatCNPJ("1234567890123456"))
}

package locale

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"1.234,56", 1234.56, false},
		{"", 0, false},
		{"   ", 0, false},
		{"0,015", 0.015, false},
		{"-0,5", -0.5, false},
		{"1.000.000", 1000000, false},
		{"12", 12, false},
		{"abc", 0, true},
		{"1,2,3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDecimal(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"0,015", 1.5},
		{"0,0075", 0.75},
		{"", 0},
		{"-0,02", 0},
		{"1,1", 110},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePercent(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeBatch(t *testing.T) {
	rows := []map[string]string{
		{"dy": "0,01", "er": "-0,03"},
		{"dy": "", "er": "0,02"},
	}

	got, err := NormalizeBatch(rows, "dy", "er")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 2}}, got)
}

func TestNormalizeBatchFailsWholeBatch(t *testing.T) {
	rows := []map[string]string{
		{"dy": "0,01"},
		{"dy": "n/d"},
		{"dy": "0,02"},
	}

	got, err := NormalizeBatch(rows, "dy")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIngestion))

	var ingestErr *IngestionError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, 1, ingestErr.Row)
	assert.Equal(t, "dy", ingestErr.Field)
	assert.Equal(t, "n/d", ingestErr.Value)
}

func TestMustFloat(t *testing.T) {
	assert.Equal(t, 1234.5, MustFloat("1.234,5"))
	assert.Equal(t, 0.0, MustFloat("garbage"))
}

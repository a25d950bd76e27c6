package commands

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearsFromArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []int
		wantErr bool
	}{
		{name: "fallback", args: nil, want: []int{2023, 2024}},
		{name: "sorted", args: []string{"2024", "2022"}, want: []int{2022, 2024}},
		{name: "not a number", args: []string{"abc"}, wantErr: true},
		{name: "out of range", args: []string{"24"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := yearsFromArgs(tt.args, []int{2023, 2024})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"api", "recommend", "fetcher", "lookup", "insights", "scheduler"} {
		assert.True(t, names[want], want)
	}
}

func TestApplyGlobalFlags(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/test.env"
	require.NoError(t, os.WriteFile(path, []byte("DATASET_YEARS=2020\n"), 0o644))

	t.Setenv("DATASET_YEARS", "")
	t.Setenv("LOG_LEVEL", "info")

	configFile, verbose = path, true
	defer func() { configFile, verbose = "", false }()

	require.NoError(t, applyGlobalFlags(rootCmd))
	assert.Equal(t, "2020", os.Getenv("DATASET_YEARS"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
}

func TestApplyGlobalFlagsMissingFile(t *testing.T) {
	configFile = "/nonexistent/.env"
	defer func() { configFile = "" }()

	assert.Error(t, applyGlobalFlags(rootCmd))
}

package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
	"github.com/wonny/fii-advisor/backend/pkg/redis"
)

func writeYear(t *testing.T, root string, kind contracts.DatasetKind, year int, content string) {
	t.Helper()
	path := FilePath(root, kind, year)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, latin1(t, content), 0o644))
}

func TestFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("data", "inf_mensal_fii_2024", "inf_mensal_fii_complemento_2024.csv"),
		FilePath("data", contracts.KindComplement, 2024))
}

func TestFileProviderLoad(t *testing.T) {
	root := t.TempDir()
	writeYear(t, root, contracts.KindGeneral, 2022, "CNPJ_Fundo;Segmento_Atuacao\n1;Logística\n")
	writeYear(t, root, contracts.KindGeneral, 2023, "CNPJ_Fundo;Segmento_Atuacao\n2;Shoppings\n3;Híbrido\n")

	p := NewFileProvider(root, logger.Nop())

	rows, err := p.Load(context.Background(), contracts.KindGeneral, []int{2023, 2021, 2022})
	require.NoError(t, err)
	require.Len(t, rows, 3, "missing 2021 is skipped")
	assert.Equal(t, "2", rows[0].Get("CNPJ_Fundo"), "year order follows the request")
	assert.Equal(t, "1", rows[2].Get("CNPJ_Fundo"))
}

func TestFileProviderUnknownKind(t *testing.T) {
	p := NewFileProvider(t.TempDir(), logger.Nop())
	_, err := p.Load(context.Background(), "balanço", []int{2024})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestFileProviderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileProvider(t.TempDir(), logger.Nop()).Load(ctx, contracts.KindGeneral, []int{2024})
	assert.ErrorIs(t, err, context.Canceled)
}

type countingProvider struct {
	calls int
	rows  map[int][]contracts.Row
}

func (c *countingProvider) Load(ctx context.Context, kind contracts.DatasetKind, years []int) ([]contracts.Row, error) {
	c.calls++
	var out []contracts.Row
	for _, y := range years {
		out = append(out, c.rows[y]...)
	}
	return out, nil
}

func TestCachedProviderPassThroughWhenDisabled(t *testing.T) {
	next := &countingProvider{rows: map[int][]contracts.Row{
		2023: {{"CNPJ_Fundo": "1"}},
		2024: {{"CNPJ_Fundo": "2"}},
	}}
	p := NewCachedProvider(next, redis.NewCache(redis.Disabled(), "test"), 0, logger.Nop())

	rows, err := p.Load(context.Background(), contracts.KindComplement, []int{2023, 2024})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 2, next.calls, "one underlying load per year")

	assert.NoError(t, p.Invalidate(context.Background(), 2024))
}

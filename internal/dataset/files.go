package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// YearDir returns the extraction directory of a year (data/inf_mensal_fii_2024)
func YearDir(root string, year int) string {
	return filepath.Join(root, fmt.Sprintf("inf_mensal_fii_%d", year))
}

// FilePath returns the CSV path of kind for year
func FilePath(root string, kind contracts.DatasetKind, year int) string {
	return filepath.Join(YearDir(root, year), fmt.Sprintf("inf_mensal_fii_%s_%d.csv", kind, year))
}

// FileProvider reads the extracted CVM CSVs from disk
type FileProvider struct {
	root   string
	logger *logger.Logger
}

// NewFileProvider creates a provider rooted at dir
func NewFileProvider(dir string, log *logger.Logger) *FileProvider {
	return &FileProvider{root: dir, logger: log.WithComponent("dataset")}
}

// Load concatenates the rows of kind for years, in the given year order.
// Years without a file are skipped with a warning.
func (p *FileProvider) Load(ctx context.Context, kind contracts.DatasetKind, years []int) ([]contracts.Row, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var all []contracts.Row
	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := p.loadYear(kind, year)
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.WithFields(map[string]interface{}{
				"kind": kind,
				"year": year,
			}).Warn("Dataset file missing, skipping year")
			continue
		}
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}

	if all == nil {
		all = []contracts.Row{}
	}
	return all, nil
}

func (p *FileProvider) loadYear(kind contracts.DatasetKind, year int) ([]contracts.Row, error) {
	path := FilePath(p.root, kind, year)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p.logger.WithFields(map[string]interface{}{
		"kind": kind,
		"year": year,
		"rows": len(rows),
	}).Debug("Dataset file loaded")

	return rows, nil
}

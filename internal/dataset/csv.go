package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
)

// Separator used by every CVM open-data CSV
const Separator = ';'

// ReadCSV parses a CVM CSV file (ISO-8859-1, ';'-separated) into rows keyed by header
func ReadCSV(r io.Reader) ([]contracts.Row, error) {
	return readCSV(charmap.ISO8859_1.NewDecoder().Reader(r))
}

// ReadUTF8CSV parses a ';'-separated UTF-8 file (the listed-fund registry)
func ReadUTF8CSV(r io.Reader) ([]contracts.Row, error) {
	return readCSV(r)
}

func readCSV(r io.Reader) ([]contracts.Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = Separator
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []contracts.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []contracts.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", len(rows)+2, err)
		}

		row := make(contracts.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	if rows == nil {
		rows = []contracts.Row{}
	}
	return rows, nil
}

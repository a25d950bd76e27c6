package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/locale"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup [cnpj]",
	Short: "CNPJ별 월간 보고서 조회",
	Long: `CNPJ로 펀드의 월간 보고서 행을 조회합니다 (형식 무관).

Kinds: ativo_passivo, complemento, geral

Example:
  go run ./cmd/fii lookup 11.728.688/0001-47
  go run ./cmd/fii lookup 11728688000147 --kind geral --json`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

var (
	lookupKind string
	lookupJSON bool
)

func init() {
	rootCmd.AddCommand(lookupCmd)

	// Flags
	lookupCmd.Flags().StringVar(&lookupKind, "kind", string(contracts.KindComplement), "데이터셋 종류")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "JSON 출력")
}

func runLookup(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	cnpj := locale.FormatCNPJ(args[0])
	rows, err := a.lookup().Find(cmd.Context(), contracts.DatasetKind(lookupKind), cnpj)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", cnpj, err)
	}

	if lookupJSON {
		return PrintJSON(rows)
	}

	ticker, _ := a.registry.TickerFor(cnpj)
	PrintRunHeader(RunHeader{
		Title: "Dataset Lookup",
		Tag:   "Lookup",
		Fields: [][2]string{
			{"CNPJ", cnpj},
			{"Ticker", ticker},
			{"Kind", lookupKind},
			{"Rows", fmt.Sprint(len(rows))},
		},
	})

	for i, row := range rows {
		fmt.Printf("\n[%d] %s\n", i+1, row.Get(contracts.ColReferenceDate))
		cols := make([]string, 0, len(row))
		for col := range row {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			PrintKeyValue(col, row[col], 40)
		}
	}
	return nil
}

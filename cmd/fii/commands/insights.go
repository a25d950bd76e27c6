package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fii-advisor/backend/internal/insights"
	"github.com/wonny/fii-advisor/backend/internal/locale"
)

// insightsCmd represents the insights command
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "연간 개요 및 펀드 분석",
	Long: `CVM 데이터 기반 개요와 펀드별 분석을 조회합니다.

Subcommands:
  report [year]   - 연간 개요 (총자산/부채 상위, 세그먼트, 배당 상위)
  fund [ticker]   - 펀드 프로필
  analyze [ticker] - LLM 펀드 분석 (LLM_PROVIDER 필요)

Example:
  go run ./cmd/fii insights report 2024
  go run ./cmd/fii insights fund HGLG11
  go run ./cmd/fii insights analyze HGLG11`,
}

var (
	insightsReportCmd = &cobra.Command{
		Use:   "report [year]",
		Short: "연간 개요",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInsightsReport,
	}

	insightsFundCmd = &cobra.Command{
		Use:   "fund [ticker]",
		Short: "펀드 프로필",
		Args:  cobra.ExactArgs(1),
		RunE:  runInsightsFund,
	}

	insightsAnalyzeCmd = &cobra.Command{
		Use:   "analyze [ticker]",
		Short: "LLM 펀드 분석",
		Args:  cobra.ExactArgs(1),
		RunE:  runInsightsAnalyze,
	}

	insightsJSON bool
)

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.AddCommand(insightsReportCmd)
	insightsCmd.AddCommand(insightsFundCmd)
	insightsCmd.AddCommand(insightsAnalyzeCmd)

	// Flags
	insightsCmd.PersistentFlags().BoolVar(&insightsJSON, "json", false, "JSON 출력")
}

func runInsightsReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	// Default: latest configured year
	year := time.Now().Year()
	if n := len(a.cfg.Dataset.Years); n > 0 {
		year = a.cfg.Dataset.Years[n-1]
	}
	if len(args) == 1 {
		if year, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("invalid year %q", args[0])
		}
	}

	report, err := a.insightsService().Report(cmd.Context(), year)
	if err != nil {
		return fmt.Errorf("report %d: %w", year, err)
	}

	if insightsJSON {
		return PrintJSON(report)
	}

	PrintRunHeader(RunHeader{
		Title:  fmt.Sprintf("FII Overview %d", year),
		Tag:    "Insights",
		Fields: [][2]string{{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05")}},
	})

	printAmounts("Top assets", report.TopAssets)
	printAmounts("Top liabilities", report.TopLiabilities)

	fmt.Println("\nSegments")
	widths := []int{24, 6}
	PrintTableHeader([]string{"Segment", "Funds"}, widths)
	for _, s := range report.Segments {
		PrintTableRow([]string{s.Segment, strconv.Itoa(s.Funds)}, widths)
	}

	fmt.Println("\nDividend leaders")
	widths = []int{8, 20, 8, 8, 5}
	PrintTableHeader([]string{"Ticker", "CNPJ", "Total", "Mean", "Years"}, widths)
	for _, d := range report.DividendLeaders {
		PrintTableRow([]string{
			d.Ticker, d.CNPJ, locale.FormatNumber(d.Total), locale.FormatNumber(d.Mean), strconv.Itoa(d.Years),
		}, widths)
	}
	return nil
}

func printAmounts(title string, amounts []insights.FundAmount) {
	fmt.Printf("\n%s\n", title)
	widths := []int{8, 20, 18}
	PrintTableHeader([]string{"Ticker", "CNPJ", "Amount"}, widths)
	for _, f := range amounts {
		PrintTableRow([]string{f.Ticker, f.CNPJ, locale.FormatCompact(f.Amount)}, widths)
	}
}

func runInsightsFund(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.insightsService().FundProfile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fund %s: %w", args[0], err)
	}

	if insightsJSON {
		return PrintJSON(profile)
	}

	PrintRunHeader(RunHeader{
		Title: profile.Ticker,
		Tag:   "Insights",
		Fields: [][2]string{
			{"CNPJ", profile.CNPJ},
			{"Segment", profile.Segment},
			{"Reference", profile.ReferenceDate.Format("2006-01")},
		},
	})
	PrintKeyValue("Dividend yield", locale.FormatNumber(profile.DividendYield)+"%", 16)
	PrintKeyValue("Net equity", locale.FormatBRL(profile.NetEquity), 16)
	PrintKeyValue("Book value/quota", locale.FormatBRL(profile.BookValuePerQuota), 16)
	PrintKeyValue("Holders", locale.FormatNumber(profile.Holders), 16)
	if profile.Price > 0 {
		PrintKeyValue("Price", locale.FormatBRL(profile.Price), 16)
	}
	return nil
}

func runInsightsAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	asst, err := a.newAssistant()
	if err != nil {
		return err
	}
	if !asst.Enabled() {
		return fmt.Errorf("LLM provider is not configured")
	}

	profile, err := a.insightsService().FundProfile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fund %s: %w", args[0], err)
	}

	analysis, err := asst.AnalyzeFund(cmd.Context(), *profile)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", profile.Ticker, err)
	}

	fmt.Println(analysis)
	return nil
}

package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/fii-advisor/backend/internal/dataset"
)

// fetcherCmd represents the fetcher command
var fetcherCmd = &cobra.Command{
	Use:   "fetcher",
	Short: "데이터 수집 도구",
	Long: `CVM 공개 데이터 포털에서 FII 월간 보고서를 수집합니다.

Subcommands:
  list      - 게시된 연도별 아카이브 목록
  download  - 아카이브 다운로드 및 압축 해제 (DATA_DIR)
  load      - 압축 해제된 CSV를 Postgres에 적재 (DATABASE_URL 필요)

Example:
  go run ./cmd/fii fetcher list
  go run ./cmd/fii fetcher download 2023 2024
  go run ./cmd/fii fetcher load 2024`,
}

var (
	fetcherListCmd = &cobra.Command{
		Use:   "list",
		Short: "게시된 아카이브 목록",
		Args:  cobra.NoArgs,
		RunE:  runFetcherList,
	}

	fetcherDownloadCmd = &cobra.Command{
		Use:   "download [year...]",
		Short: "아카이브 다운로드 (기본: DATASET_YEARS)",
		RunE:  runFetcherDownload,
	}

	fetcherLoadCmd = &cobra.Command{
		Use:   "load [year...]",
		Short: "CSV → Postgres 적재 (기본: DATASET_YEARS)",
		RunE:  runFetcherLoad,
	}
)

func init() {
	rootCmd.AddCommand(fetcherCmd)
	fetcherCmd.AddCommand(fetcherListCmd)
	fetcherCmd.AddCommand(fetcherDownloadCmd)
	fetcherCmd.AddCommand(fetcherLoadCmd)
}

func runFetcherList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	archives, err := a.cvmClient().ListArchives(cmd.Context())
	if err != nil {
		return fmt.Errorf("list archives: %w", err)
	}

	widths := []int{6, 28, 40}
	PrintTableHeader([]string{"Year", "Archive", "URL"}, widths)
	for _, archive := range archives {
		PrintTableRow([]string{strconv.Itoa(archive.Year), archive.Name, archive.URL}, widths)
	}
	return nil
}

func runFetcherDownload(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	years, err := yearsFromArgs(args, a.cfg.Dataset.Years)
	if err != nil {
		return err
	}

	PrintRunHeader(RunHeader{
		Title: "CVM Dataset Download",
		Tag:   "Fetcher",
		Fields: [][2]string{
			{"Source", a.cfg.Dataset.CVMBaseURL},
			{"Target", a.cfg.Dataset.DataDir},
			{"Years", fmt.Sprint(years)},
		},
	})

	client := a.cvmClient()
	for i, year := range years {
		files, err := client.Fetch(cmd.Context(), year, a.cfg.Dataset.DataDir)
		if err != nil {
			return fmt.Errorf("fetch %d: %w", year, err)
		}
		PrintProgress("Fetcher", fmt.Sprintf("%d: extracted %d files", year, len(files)), i+1, len(years))
	}

	PrintSuccess("Download completed")
	return nil
}

func runFetcherLoad(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.repo == nil {
		return fmt.Errorf("DATABASE_URL is required to load datasets")
	}

	years, err := yearsFromArgs(args, a.cfg.Dataset.Years)
	if err != nil {
		return err
	}

	for i, year := range years {
		counts, err := dataset.ImportYear(cmd.Context(), a.files, a.repo, year)
		if err != nil {
			return fmt.Errorf("import %d: %w", year, err)
		}
		if len(counts) == 0 {
			PrintWarning(fmt.Sprintf("%d: no CSV files under %s", year, dataset.YearDir(a.cfg.Dataset.DataDir, year)))
			continue
		}
		PrintProgress("Loader", fmt.Sprintf("%d: %v", year, counts), i+1, len(years))
	}

	if cached, ok := a.provider.(*dataset.CachedProvider); ok {
		for _, year := range years {
			if err := cached.Invalidate(cmd.Context(), year); err != nil {
				a.logger.WithError(err).Warn("Failed to invalidate dataset cache")
			}
		}
	}

	PrintSuccess("Load completed")
	return nil
}

// yearsFromArgs parses the positional years, falling back to the configured range
func yearsFromArgs(args []string, fallback []int) ([]int, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	years := make([]int, 0, len(args))
	for _, arg := range args {
		y, err := strconv.Atoi(arg)
		if err != nil || y < 1990 || y > 2100 {
			return nil, fmt.Errorf("invalid year %q", arg)
		}
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/locale"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "FII 추천 실행",
	Long: `투자 성향과 필터로 FII 추천 목록을 생성합니다.

Profiles:  conservative (conservador), moderate (moderado), aggressive (arrojado)
Recency:   history, annual, monthly
Bands:     low (≤ R$90), mid (R$90 ~ R$120), high (> R$121), any

Example:
  go run ./cmd/fii recommend --profile conservador --count 5
  go run ./cmd/fii recommend --profile aggressive --recency annual --segment Logística --band low
  go run ./cmd/fii recommend --profile moderate --json`,
	RunE: runRecommend,
}

var (
	recProfile  string
	recRecency  string
	recSegments []string
	recBand     string
	recCount    int
	recJSON     bool
)

func init() {
	rootCmd.AddCommand(recommendCmd)

	// Flags
	recommendCmd.Flags().StringVar(&recProfile, "profile", "conservative", "투자 성향")
	recommendCmd.Flags().StringVar(&recRecency, "recency", "history", "기간 필터")
	recommendCmd.Flags().StringSliceVar(&recSegments, "segment", nil, "세그먼트 필터 (반복 가능)")
	recommendCmd.Flags().StringVar(&recBand, "band", "any", "가격대 필터")
	recommendCmd.Flags().IntVar(&recCount, "count", 5, "추천 개수")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "JSON 출력")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	req := contracts.Request{
		Profile:   contracts.Profile(recProfile),
		Recency:   contracts.Recency(recRecency),
		Segments:  recSegments,
		PriceBand: contracts.PriceBand(recBand),
		Count:     recCount,
	}

	result, err := a.pipeline().Recommend(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if recJSON {
		return PrintJSON(result)
	}

	segments := "all"
	if len(result.Request.Segments) > 0 {
		segments = strings.Join(result.Request.Segments, ", ")
	}
	PrintRunHeader(RunHeader{
		Title: "FII Recommendation",
		Tag:   "Recommend",
		Fields: [][2]string{
			{"Run ID", result.RunID},
			{"Profile", string(result.Request.Profile)},
			{"Recency", string(result.Request.Recency)},
			{"Segments", segments},
			{"Band", string(result.Request.PriceBand)},
			{"Count", strconv.Itoa(result.Request.Count)},
		},
	})

	if result.Degraded() {
		PrintWarning(result.Warning)
		return nil
	}
	if result.Empty() {
		PrintInfo("조건에 맞는 펀드가 없습니다")
		return nil
	}

	widths := []int{4, 8, 20, 10, 22, 8, 10}
	PrintTableHeader([]string{"#", "Ticker", "CNPJ", "Ref.", "Segment", "Score", "Price"}, widths)
	for _, r := range result.Recommendations {
		PrintTableRow([]string{
			strconv.Itoa(r.Rank),
			r.Ticker,
			r.CNPJ,
			r.ReferenceDate.Format("2006-01"),
			r.Segment,
			locale.FormatScore(r.Score),
			locale.FormatBRL(r.Price),
		}, widths)
	}

	fmt.Println()
	s := result.Stats
	PrintKeyValue("Pipeline", fmt.Sprintf("loaded %d → listed %d → dedup %d → recency %d → segment %d → candidates %d → quoted %d → returned %d",
		s.Loaded, s.Listed, s.Deduplicated, s.AfterRecency, s.AfterSegment, s.Candidates, s.Quoted, s.Returned), 8)
	PrintSuccess(fmt.Sprintf("Completed in %.2fs", result.Duration.Seconds()))
	return nil
}

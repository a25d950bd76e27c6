package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fii-advisor/backend/internal/api"
	"github.com/wonny/fii-advisor/backend/internal/api/handlers"
	"github.com/wonny/fii-advisor/backend/internal/scheduler"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                              - Health check
  POST /api/recommendations                 - 투자 성향별 FII 추천
  GET  /api/datasets/{kind}/{cnpj}          - CNPJ별 월간 보고서 조회
  GET  /api/segments                        - 세그먼트 목록
  GET  /api/insights/{year}                 - 연간 개요 (자산/부채/세그먼트/배당)
  GET  /api/funds/{ticker}                  - 펀드 프로필
  POST /api/funds/{ticker}/analysis         - LLM 펀드 분석
  POST /api/funds/{ticker}/report-summary   - 관리 보고서 PDF 요약
  POST /api/chat                            - 챗봇
  GET  /ws/chat                             - 챗봇 (websocket)

Example:
  go run ./cmd/fii api
  go run ./cmd/fii api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "데이터 갱신 스케줄러 동시 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FII Advisor API Server ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.logger

	asst, err := a.newAssistant()
	if err != nil {
		return err
	}
	svc := a.insightsService()

	deps := map[string]handlers.Pinger{}
	if a.db != nil {
		deps["postgres"] = a.db
	}
	if a.redis.Enabled() {
		deps["redis"] = a.redis
	}

	router := api.NewRouter(api.Handlers{
		Health:         handlers.NewHealthHandler(deps),
		Recommendation: handlers.NewRecommendationHandler(a.pipeline(), log),
		Dataset:        handlers.NewDatasetHandler(a.lookup(), log),
		Fund:           handlers.NewFundHandler(svc, asst, a.cfg.Dataset.ReportsDir, log),
		Chat:           handlers.NewChatHandler(asst, log),
	}, log)

	server := api.New(a.cfg, log, router)

	var sched *scheduler.Scheduler
	if apiWithScheduler {
		sched, err = buildScheduler(a, svc)
		if err != nil {
			return err
		}
		sched.Start()
	}

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")
	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

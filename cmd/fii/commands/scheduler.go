package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fii-advisor/backend/internal/dataset"
	"github.com/wonny/fii-advisor/backend/internal/insights"
	"github.com/wonny/fii-advisor/backend/internal/scheduler"
	"github.com/wonny/fii-advisor/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/fii scheduler start
  go run ./cmd/fii scheduler list
  go run ./cmd/fii scheduler run dataset_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- dataset_refresh: 매일 오전 6시 (REFRESH_SCHEDULE, CVM 월간 보고서 갱신)
- insights_warm: 매일 오전 6시 30분 (연간 개요 캐시 생성)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Print("=== FII Advisor Scheduler ===\n\n")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a, a.insightsService())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	PrintList(sched.GetAllJobs())
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a, a.insightsService())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		PrintKeyValue(jobName, stats[jobName].Schedule, 16)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a, a.insightsService())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunNow(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %d attempt(s): %s", jobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(fmt.Sprintf("%s completed in %.2fs", jobName, result.Duration.Seconds()))
	return nil
}

// buildScheduler registers the refresh and warm-up jobs
func buildScheduler(a *app, svc *insights.Service) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.logger)

	invalidators := []jobs.CacheInvalidator{svc}
	if cached, ok := a.provider.(*dataset.CachedProvider); ok {
		invalidators = append(invalidators, cached)
	}

	// store stays a nil interface without Postgres
	var store dataset.RowStore
	if a.repo != nil {
		store = a.repo
	}

	refresh := jobs.NewDatasetRefreshJob(a.cvmClient(), a.cfg.Dataset.DataDir, store, a.cfg.RefreshSchedule, a.logger, invalidators...)
	if err := sched.AddJob(refresh); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewInsightsWarmJob(svc, a.cfg.Dataset.Years, a.logger)); err != nil {
		return nil, err
	}

	return sched, nil
}

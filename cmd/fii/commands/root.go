package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fii",
	Short: "FII Advisor - 브라질 부동산 펀드 추천 시스템",
	Long: `FII Advisor Unified CLI

CVM 월간 보고서(inf_mensal_fii) 기반 FII 추천 백엔드.
투자 성향별 점수 → 기간/세그먼트 필터 → 시세 조회 → 가격대 필터.

Usage:
  go run ./cmd/fii [command]

Examples:
  go run ./cmd/fii api
  go run ./cmd/fii recommend --profile conservative --count 5
  go run ./cmd/fii fetcher download 2024
  go run ./cmd/fii lookup 11.728.688/0001-47`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyGlobalFlags(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// applyGlobalFlags feeds the global flags into the environment read by config.Load
func applyGlobalFlags(cmd *cobra.Command) error {
	if configFile != "" {
		if err := godotenv.Overload(configFile); err != nil {
			return fmt.Errorf("load config file %s: %w", configFile, err)
		}
	}
	if cmd.Flags().Changed("env") {
		if err := os.Setenv("ENV", env); err != nil {
			return err
		}
	}
	if verbose {
		return os.Setenv("LOG_LEVEL", "debug")
	}
	return nil
}

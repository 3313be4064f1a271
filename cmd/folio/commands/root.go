package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose   bool
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Folio - 포트폴리오 평가 및 지표 엔진",
	Long: `Folio CLI

거래 내역으로 일별 평가 시계열을 만들고
수익/위험/분산/회복 지표를 계산합니다.

Usage:
  go run ./cmd/folio [command]

Examples:
  go run ./cmd/folio api
  go run ./cmd/folio compute --file portfolio.json
  go run ./cmd/folio compute --file portfolio.json --prices prices.csv --json
  go run ./cmd/folio price AAPL 2024-01-02
  go run ./cmd/folio scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug 로그 출력")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "로그 포맷 (json|console), 기본값은 LOG_FORMAT")
}

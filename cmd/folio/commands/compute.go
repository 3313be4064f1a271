package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/api/handlers"
	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine"
	"github.com/wonny/folio/internal/pricing"
	"github.com/wonny/folio/pkg/logger"
)

// computeCmd represents the compute command
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "포트폴리오 평가 + 지표 계산",
	Long: `거래 내역 파일로 일별 평가 시계열과 성과/위험 지표를 계산합니다.

파일 형식 (JSON):
  {"transactions": [{"symbol": "AAPL", "quantity": "10", "buy_date": "2024-01-02", "buy_price": "185.5"}],
   "start_date": "2024-01-02", "end_date": "2024-06-28"}
  또는 transactions 배열만

가격 소스:
  기본은 PRICE_SOURCE 설정 (yahoo | store | chain)
  --prices 로 "symbol,date,close" CSV를 지정하면 네트워크 없이 계산

Example:
  go run ./cmd/folio compute --file portfolio.json
  go run ./cmd/folio compute --file portfolio.json --prices closes.csv --json`,
	RunE: runCompute,
}

var (
	computeFile   string
	computePrices string
	computeStart  string
	computeEnd    string
	computeJSON   bool
)

func init() {
	rootCmd.AddCommand(computeCmd)

	computeCmd.Flags().StringVarP(&computeFile, "file", "f", "", "거래 내역 JSON 파일 (필수)")
	computeCmd.Flags().StringVar(&computePrices, "prices", "", "종가 CSV 파일 (symbol,date,close)")
	computeCmd.Flags().StringVar(&computeStart, "start", "", "시작일 YYYY-MM-DD (파일 값 덮어씀)")
	computeCmd.Flags().StringVar(&computeEnd, "end", "", "종료일 YYYY-MM-DD (파일 값 덮어씀)")
	computeCmd.Flags().BoolVar(&computeJSON, "json", false, "API 응답과 같은 JSON으로 출력")
	_ = computeCmd.MarkFlagRequired("file")
}

func runCompute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	body, err := readPortfolioFile(computeFile)
	if err != nil {
		return err
	}
	if computeStart != "" {
		body.StartDate = computeStart
	}
	if computeEnd != "" {
		body.EndDate = computeEnd
	}
	req, err := body.ToEngine()
	if err != nil {
		return err
	}

	var (
		source contracts.PriceSource
		log    *logger.Logger
		opts   engine.Options
	)
	if computePrices != "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log = logger.New(cfg)
		opts = engine.OptionsFromConfig(cfg)

		f, err := os.Open(computePrices)
		if err != nil {
			return fmt.Errorf("open prices: %w", err)
		}
		defer f.Close()
		mem, err := pricing.LoadCSV(f, cfg.Pricing.BenchmarkSymbol)
		if err != nil {
			return fmt.Errorf("load prices: %w", err)
		}
		source = mem
	} else {
		d, err := loadDeps(ctx)
		if err != nil {
			return err
		}
		defer d.Close()
		source, log, opts = d.source, d.log, engine.OptionsFromConfig(d.cfg)
	}

	res, err := engine.New(source, log, opts).Compute(ctx, req)
	if err != nil {
		return err
	}

	if computeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(handlers.NewValueResponse(res))
	}

	printResult(res)
	return nil
}

// readPortfolioFile accepts a full request object or a bare transactions array
func readPortfolioFile(path string) (handlers.ValueRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return handlers.ValueRequest{}, fmt.Errorf("read portfolio: %w", err)
	}

	var body handlers.ValueRequest
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &body.Transactions)
	} else {
		err = json.Unmarshal(trimmed, &body)
	}
	if err != nil {
		return handlers.ValueRequest{}, fmt.Errorf("parse portfolio %s: %w", path, err)
	}
	return body, nil
}

func printResult(res *engine.Result) {
	PrintHeader("📊 Portfolio Valuation",
		fmt.Sprintf("Request  : %s", res.RequestID),
		fmt.Sprintf("Period   : %s ~ %s", contracts.FormatDate(res.StartDate), contracts.FormatDate(res.EndDate)),
		fmt.Sprintf("Symbols  : %d", len(res.Valuation.Symbols)),
		fmt.Sprintf("Points   : %d", res.Valuation.Len()),
	)

	if res.Valuation.Len() > 0 {
		first := res.Valuation.Points[0]
		last := res.Valuation.Last()
		PrintKeyValue("시작 평가액", fmt.Sprintf("%.2f", first.Total), 12)
		PrintKeyValue("최종 평가액", fmt.Sprintf("%.2f", last.Total), 12)
		for _, sym := range res.Valuation.Symbols {
			PrintKeyValue(sym, fmt.Sprintf("%.2f", last.Values[sym]), 12)
		}
	}

	PrintIndicators(res.Indicators)
	PrintWarnings(res.Warnings)

	fmt.Println()
	PrintSuccess(fmt.Sprintf("완료 (%s)", res.Duration.Round(time.Millisecond)))
}

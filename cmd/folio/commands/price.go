package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/folio/internal/contracts"
)

// priceCmd represents the price command
var priceCmd = &cobra.Command{
	Use:   "price SYMBOL [DATE]",
	Short: "종목 종가 조회",
	Long: `설정된 가격 소스에서 지정일(기본 오늘) 이전 가장 최근 종가를 조회합니다.

Example:
  go run ./cmd/folio price AAPL
  go run ./cmd/folio price ^GSPC 2024-03-15`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	symbol := args[0]
	date := contracts.Day(time.Now())
	if len(args) == 2 {
		parsed, err := contracts.ParseDate(args[1])
		if err != nil {
			return err
		}
		date = parsed
	}

	d, err := loadDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	quote, err := d.source.GetPrice(cmd.Context(), symbol, date)
	if err != nil {
		if errors.Is(err, contracts.ErrPriceNotFound) || errors.Is(err, contracts.ErrDataUnavailable) {
			PrintWarning(fmt.Sprintf("%s: %s 이전 종가 없음", symbol, contracts.FormatDate(date)))
			return nil
		}
		return fmt.Errorf("get price: %w", err)
	}

	PrintKeyValue("Symbol", quote.Symbol, 8)
	PrintKeyValue("Date", contracts.FormatDate(quote.Date), 8)
	PrintKeyValue("Close", fmt.Sprintf("%.4f", quote.Close), 8)
	return nil
}

package contracts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single purchase of a holding
// ⭐ SSOT: 거래 입력 형식
type Transaction struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	BuyPrice decimal.Decimal `json:"buy_price"`
	BuyDate  time.Time       `json:"buy_date"`
}

// Validate checks a single transaction
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if t.Symbol == KeyDate || t.Symbol == KeyTotalValue {
		return fmt.Errorf("%w: symbol %q is reserved", ErrInvalidInput, t.Symbol)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: %s quantity must be > 0, got %s", ErrInvalidInput, t.Symbol, t.Quantity)
	}
	if !t.BuyPrice.IsPositive() {
		return fmt.Errorf("%w: %s buy price must be > 0, got %s", ErrInvalidInput, t.Symbol, t.BuyPrice)
	}
	if t.BuyDate.IsZero() {
		return fmt.Errorf("%w: %s buy date is required", ErrInvalidInput, t.Symbol)
	}
	return nil
}

// Cost is quantity × buy price
func (t Transaction) Cost() decimal.Decimal {
	return t.Quantity.Mul(t.BuyPrice)
}

// ValidateTransactions validates a non-empty transaction list
func ValidateTransactions(txs []Transaction) error {
	if len(txs) == 0 {
		return fmt.Errorf("%w: at least one transaction is required", ErrInvalidInput)
	}
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return nil
}

// TotalInvested sums quantity × buy price over all transactions
func TotalInvested(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Cost())
	}
	return total
}

// Symbols returns the distinct symbols in sorted order
func Symbols(txs []Transaction) []string {
	seen := make(map[string]struct{}, len(txs))
	var out []string
	for _, tx := range txs {
		if _, ok := seen[tx.Symbol]; ok {
			continue
		}
		seen[tx.Symbol] = struct{}{}
		out = append(out, tx.Symbol)
	}
	sort.Strings(out)
	return out
}

// EarliestBuyDate returns the first buy date across transactions
func EarliestBuyDate(txs []Transaction) time.Time {
	var earliest time.Time
	for i, tx := range txs {
		d := Day(tx.BuyDate)
		if i == 0 || d.Before(earliest) {
			earliest = d
		}
	}
	return earliest
}

package contracts

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func tx(symbol string, qty, price float64, buy string) Transaction {
	return Transaction{
		Symbol:   symbol,
		Quantity: decimal.NewFromFloat(qty),
		BuyPrice: decimal.NewFromFloat(price),
		BuyDate:  date(buy),
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
	}{
		{"valid", tx("AAPL", 10, 150, "2024-01-02"), false},
		{"fractional quantity", tx("AAPL", 0.5, 150, "2024-01-02"), false},
		{"empty symbol", tx(" ", 10, 150, "2024-01-02"), true},
		// 평가 레코드의 고정 키와 충돌
		{"reserved Date", tx("Date", 10, 150, "2024-01-02"), true},
		{"reserved TotalValue", tx("TotalValue", 10, 150, "2024-01-02"), true},
		{"lowercase date is a symbol", tx("date", 10, 150, "2024-01-02"), false},
		{"zero quantity", tx("AAPL", 0, 150, "2024-01-02"), true},
		{"negative quantity", tx("AAPL", -1, 150, "2024-01-02"), true},
		{"zero price", tx("AAPL", 10, 0, "2024-01-02"), true},
		{"missing date", Transaction{Symbol: "AAPL", Quantity: decimal.NewFromInt(1), BuyPrice: decimal.NewFromInt(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidInput))
				assert.True(t, IsClientError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTransactions(t *testing.T) {
	err := ValidateTransactions(nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = ValidateTransactions([]Transaction{tx("A", 1, 1, "2024-01-02"), tx("B", -1, 1, "2024-01-02")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction 1")
}

func TestTransactionAggregates(t *testing.T) {
	txs := []Transaction{
		tx("MSFT", 5, 300, "2024-02-01"),
		tx("AAPL", 10, 150, "2024-01-05"),
		tx("AAPL", 2, 160, "2024-01-03"),
	}

	assert.True(t, decimal.NewFromInt(3320).Equal(TotalInvested(txs)))
	assert.Equal(t, []string{"AAPL", "MSFT"}, Symbols(txs))
	assert.Equal(t, date("2024-01-03"), EarliestBuyDate(txs))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", FormatDate(d))

	_, err = ParseDate("15/03/2024")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestDayAndDaysBetween(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	ts := time.Date(2024, 1, 2, 23, 30, 0, 0, loc)
	assert.Equal(t, date("2024-01-02"), Day(ts))
	assert.Equal(t, 31, DaysBetween(date("2024-01-01"), date("2024-02-01")))
}

func TestValuationPoint_MarshalJSON(t *testing.T) {
	p := ValuationPoint{
		Date:   date("2024-01-02"),
		Values: map[string]float64{"AAPL": 1500},
		Total:  1500,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "2024-01-02", rec["Date"])
	assert.Equal(t, 1500.0, rec["TotalValue"])
	assert.Equal(t, 1500.0, rec["AAPL"])

	var back ValuationPoint
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Date.Equal(p.Date))
	assert.Equal(t, p.Total, back.Total)
	assert.Equal(t, p.Values, back.Values)

	assert.Error(t, json.Unmarshal([]byte(`{"Date":"02/01/2024"}`), &back))
}

func TestValuationSeries_Accessors(t *testing.T) {
	s := ValuationSeries{
		Symbols: []string{"A", "B"},
		Points: []ValuationPoint{
			{Date: date("2024-01-01"), Values: map[string]float64{"A": 10, "B": 0}, Total: 10},
			{Date: date("2024-01-02"), Values: map[string]float64{"A": 11, "B": 5}, Total: 16},
		},
	}

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []float64{10, 16}, s.Totals())
	assert.Equal(t, []float64{0, 5}, s.SymbolValues("B"))
	assert.Equal(t, 16.0, s.Last().Total)
	assert.Equal(t, []time.Time{date("2024-01-01"), date("2024-01-02")}, s.Dates())
}

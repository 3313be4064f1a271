package handlers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/engine"
	"github.com/wonny/folio/internal/indicators"
)

// TransactionRequest is one transaction as sent by the UI.
// Quantity and buy price accept JSON numbers or strings.
type TransactionRequest struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	BuyDate  string          `json:"buy_date"`
	BuyPrice decimal.Decimal `json:"buy_price"`
}

// ValueRequest is the body of POST /api/portfolio/value
type ValueRequest struct {
	Transactions []TransactionRequest `json:"transactions"`
	StartDate    string               `json:"start_date,omitempty"`
	EndDate      string               `json:"end_date,omitempty"`
}

// ToEngine parses dates and converts the body into an engine request
func (v ValueRequest) ToEngine() (engine.Request, error) {
	req := engine.Request{Transactions: make([]contracts.Transaction, 0, len(v.Transactions))}

	for i, t := range v.Transactions {
		buyDate, err := contracts.ParseDate(t.BuyDate)
		if err != nil {
			return engine.Request{}, fmt.Errorf("transactions[%d]: %w", i, err)
		}
		req.Transactions = append(req.Transactions, contracts.Transaction{
			Symbol:   t.Symbol,
			Name:     t.Name,
			Quantity: t.Quantity,
			BuyPrice: t.BuyPrice,
			BuyDate:  buyDate,
		})
	}

	var err error
	if req.StartDate, err = optionalDate(v.StartDate); err != nil {
		return engine.Request{}, fmt.Errorf("start_date: %w", err)
	}
	if req.EndDate, err = optionalDate(v.EndDate); err != nil {
		return engine.Request{}, fmt.Errorf("end_date: %w", err)
	}
	return req, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := contracts.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ValueResponse is the body returned for a computation
type ValueResponse struct {
	RequestID        string                     `json:"request_id"`
	StartDate        string                     `json:"start_date"`
	EndDate          string                     `json:"end_date"`
	PortfolioValue   []contracts.ValuationPoint `json:"portfolio_value"`
	Indicators       map[string]interface{}     `json:"indicators"`
	IndicatorDetails *indicators.Indicators     `json:"indicator_details"`
	Warnings         engine.Warnings            `json:"warnings"`
	DurationMs       int64                      `json:"duration_ms"`
}

// NewValueResponse renders an engine result
func NewValueResponse(res *engine.Result) ValueResponse {
	points := res.Valuation.Points
	if points == nil {
		points = []contracts.ValuationPoint{}
	}
	return ValueResponse{
		RequestID:        res.RequestID,
		StartDate:        contracts.FormatDate(res.StartDate),
		EndDate:          contracts.FormatDate(res.EndDate),
		PortfolioValue:   points,
		Indicators:       res.Indicators.Labeled(),
		IndicatorDetails: res.Indicators,
		Warnings:         res.Warnings,
		DurationMs:       res.Duration.Milliseconds(),
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/pkg/logger"
)

// PriceHandler serves single close lookups
type PriceHandler struct {
	source contracts.PriceSource
	logger *logger.Logger
	now    func() time.Time
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(source contracts.PriceSource, log *logger.Logger) *PriceHandler {
	return &PriceHandler{
		source: source,
		logger: log,
		now:    time.Now,
	}
}

// GetPrice returns the close on or before date
// GET /api/stock/price?symbol=AAPL&date=2024-01-02
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	date := contracts.Day(h.now())
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := contracts.ParseDate(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		date = parsed
	}

	quote, err := h.source.GetPrice(r.Context(), symbol, date)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, contracts.ErrPriceNotFound) || errors.Is(err, contracts.ErrDataUnavailable) {
			status = http.StatusNotFound
		} else {
			h.logger.WithError(err).WithField("symbol", symbol).Error("Price lookup failed")
		}
		respondJSON(w, status, map[string]interface{}{
			"symbol": symbol,
			"price":  nil,
			"error":  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": quote.Symbol,
		"date":   contracts.FormatDate(quote.Date),
		"price":  quote.Close,
	})
}

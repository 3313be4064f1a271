package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/folio/internal/engine"
	"github.com/wonny/folio/pkg/logger"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// PortfolioHandler serves portfolio valuation
// ⭐ SSOT: 포트폴리오 평가 API 핸들러
type PortfolioHandler struct {
	engine *engine.Engine
	logger *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(eng *engine.Engine, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		engine: eng,
		logger: log,
	}
}

// Value values the posted transactions and computes indicators
// POST /api/portfolio/value
func (h *PortfolioHandler) Value(w http.ResponseWriter, r *http.Request) {
	var body ValueRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	req, err := body.ToEngine()
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	res, err := h.engine.Compute(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).Error("Portfolio computation failed")
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, NewValueResponse(res))
}

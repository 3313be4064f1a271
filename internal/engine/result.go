package engine

import (
	"time"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/indicators"
	"github.com/wonny/folio/internal/valuation"
)

// Request is one portfolio computation
type Request struct {
	Transactions []contracts.Transaction
	StartDate    *time.Time // nil = 최초 매수일
	EndDate      *time.Time // nil = 오늘
}

// GroupWarning records an indicator group that was left out
type GroupWarning struct {
	Group  indicators.GroupKind `json:"group"`
	Window int                  `json:"window,omitempty"`
	Reason string               `json:"reason"`
}

// Warnings lists everything that degraded the result without failing it
type Warnings struct {
	// unresolved (합계 제외) + partial (가격 전 보유일 0 처리)
	UnresolvedSymbols []valuation.SymbolStatus `json:"unresolved_symbols"`
	OmittedGroups     []GroupWarning           `json:"omitted_groups"`
	Messages          []string                 `json:"messages"`
}

func newWarnings() Warnings {
	return Warnings{
		UnresolvedSymbols: []valuation.SymbolStatus{},
		OmittedGroups:     []GroupWarning{},
		Messages:          []string{},
	}
}

// Empty reports whether nothing was degraded
func (w Warnings) Empty() bool {
	return len(w.UnresolvedSymbols) == 0 && len(w.OmittedGroups) == 0 && len(w.Messages) == 0
}

// Result is the output of one computation
type Result struct {
	RequestID  string                    `json:"request_id"`
	StartDate  time.Time                 `json:"start_date"`
	EndDate    time.Time                 `json:"end_date"`
	Valuation  contracts.ValuationSeries `json:"valuation"`
	Returns    contracts.ReturnSeries    `json:"-"`
	Indicators *indicators.Indicators    `json:"indicators"`
	Warnings   Warnings                  `json:"warnings"`
	Duration   time.Duration             `json:"-"`
}

// Stage marks progress of a running computation
type Stage string

const (
	StageValuationBuilt Stage = "valuation_built"
	StageBenchmark      Stage = "benchmark_loaded"
	StageGroupDone      Stage = "group_done"
	StageCompleted      Stage = "completed"
)

// Event is one progress notification
type Event struct {
	Stage   Stage                `json:"stage"`
	Group   indicators.GroupKind `json:"group,omitempty"`
	Status  indicators.Status    `json:"status,omitempty"`
	Message string               `json:"message,omitempty"`
}

// ProgressFunc receives progress events. Calls are serialized.
type ProgressFunc func(Event)

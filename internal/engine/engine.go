package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/indicators"
	"github.com/wonny/folio/internal/pricing"
	"github.com/wonny/folio/internal/returns"
	"github.com/wonny/folio/internal/valuation"
	"github.com/wonny/folio/pkg/logger"
)

// ErrorInsufficientPoints is reported instead of any indicator when the
// valuation has fewer than two points
const ErrorInsufficientPoints = "数据点不足，无法计算指标"

// Engine values portfolios and computes their indicators
// ⭐ SSOT: compute() 진입점
type Engine struct {
	source contracts.PriceSource
	logger *logger.Logger
	opts   Options
}

// New creates an engine over source
func New(source contracts.PriceSource, log *logger.Logger, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ReturnType == "" {
		opts.ReturnType = contracts.ReturnSimple
	}
	return &Engine{
		source: source,
		logger: log,
		opts:   opts,
	}
}

// Compute runs one computation
func (e *Engine) Compute(ctx context.Context, req Request) (*Result, error) {
	return e.ComputeWithProgress(ctx, req, nil)
}

// ComputeWithProgress runs one computation and reports stages to fn.
// Only invalid input, an empty date range or cancellation return an error.
func (e *Engine) ComputeWithProgress(ctx context.Context, req Request, fn ProgressFunc) (*Result, error) {
	started := time.Now()
	requestID := uuid.New().String()
	reqLog := e.logger.Request(requestID)
	log := reqLog.Component("engine")
	emit := serialize(fn)

	// 요청 단위 캐시: 같은 계산 안에서만 공유
	cache := pricing.NewRequestCache(e.source)

	builder := valuation.NewBuilder(cache, reqLog, e.opts.FetchWorkers, e.opts.Now)
	built, err := builder.Build(ctx, req.Transactions, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	emit(Event{Stage: StageValuationBuilt, Message: fmt.Sprintf("%d points", built.Series.Len())})

	result := &Result{
		RequestID: requestID,
		StartDate: built.Start,
		EndDate:   built.End,
		Valuation: built.Series,
		Returns:   returns.Derive(built.Series, e.opts.ReturnType),
		Warnings:  newWarnings(),
	}
	// partial 종목도 같은 목록에 포함 (status 로 구분)
	result.Warnings.UnresolvedSymbols = append(result.Warnings.UnresolvedSymbols, built.Flagged()...)

	if len(result.Returns.Total) == 0 {
		result.Indicators = &indicators.Indicators{Error: ErrorInsufficientPoints}
		result.Warnings.Messages = append(result.Warnings.Messages, ErrorInsufficientPoints)
		return e.finish(result, started, log, emit), nil
	}

	bench, benchErr := e.benchmark(ctx, cache, built, log)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	emit(Event{Stage: StageBenchmark, Message: benchErr})

	excluded := make(map[string]bool)
	for _, st := range built.Unresolved() {
		excluded[st.Symbol] = true
	}

	in := indicators.Input{
		Valuation:    built.Series,
		Returns:      result.Returns.Total,
		Benchmark:    bench,
		BenchmarkErr: benchErr,
		Transactions: req.Transactions,
		Flows:        built.Flows,
		Excluded:     excluded,
		Params:       e.opts.params(),
	}

	result.Indicators = e.computeGroups(in, log, emit)
	result.Warnings.OmittedGroups = omittedGroups(result.Indicators)

	return e.finish(result, started, log, emit), nil
}

// benchmark aligns benchmark closes to the valuation calendar and derives its returns.
// The second value is the reason when no benchmark returns are available.
func (e *Engine) benchmark(ctx context.Context, source contracts.PriceSource, built *valuation.Result, log *logger.Logger) ([]contracts.ReturnPoint, string) {
	quotes, err := source.GetBenchmarkSeries(ctx, built.Start, built.End)
	if err != nil {
		log.WithError(err).Warn("Benchmark series unavailable")
		reason := err.Error()
		if errors.Is(err, contracts.ErrBenchmarkUnavailable) {
			reason = ""
		}
		return nil, reason
	}
	if len(quotes) == 0 {
		return nil, ""
	}

	dates := built.Series.Dates()
	filled := valuation.ForwardFill(dates, quotes)
	points := returns.FromValues(dates, filled, e.opts.ReturnType)
	if len(points) == 0 {
		return nil, ""
	}
	return points, ""
}

// computeGroups runs every indicator group concurrently.
// A panicking group is replaced by an omitted group and never affects its siblings.
func (e *Engine) computeGroups(in indicators.Input, log *logger.Logger, emit ProgressFunc) *indicators.Indicators {
	calcs := indicators.Calculators()
	groups := make([]indicators.Group, len(calcs))

	var g errgroup.Group
	for i, calc := range calcs {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					groups[i] = indicators.OmittedGroup(calc.Kind, fmt.Sprintf("计算失败: %v", r))
					log.WithFields(map[string]interface{}{
						"group": calc.Kind,
						"panic": fmt.Sprint(r),
					}).Error("Indicator group panicked")
				}
				emit(Event{Stage: StageGroupDone, Group: calc.Kind, Status: groups[i].Status})
			}()

			groups[i] = calc.Compute(in)
			log.WithField("group", calc.Kind).Debug("Indicator group computed")
			return nil
		})
	}
	_ = g.Wait()

	return &indicators.Indicators{Groups: groups}
}

func (e *Engine) finish(result *Result, started time.Time, log *logger.Logger, emit ProgressFunc) *Result {
	result.Duration = time.Since(started)

	for _, w := range result.Warnings.OmittedGroups {
		log.WithFields(map[string]interface{}{
			"group":  w.Group,
			"window": w.Window,
			"reason": w.Reason,
		}).Warn("Indicator group omitted")
	}

	log.WithFields(map[string]interface{}{
		"points":      result.Valuation.Len(),
		"unresolved":  len(result.Warnings.UnresolvedSymbols),
		"omitted":     len(result.Warnings.OmittedGroups),
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("Portfolio computed")

	emit(Event{Stage: StageCompleted})
	return result
}

// omittedGroups lists omitted top-level groups and omitted rolling windows
func omittedGroups(ind *indicators.Indicators) []GroupWarning {
	out := []GroupWarning{}
	for _, g := range ind.Groups {
		if g.Status == indicators.StatusOmitted {
			out = append(out, GroupWarning{Group: g.Kind, Reason: g.Reason})
			continue
		}
		for _, c := range g.Children {
			if c.Kind == indicators.GroupRollingWindow && c.Status == indicators.StatusOmitted {
				out = append(out, GroupWarning{Group: c.Kind, Window: c.Window, Reason: c.Reason})
			}
		}
	}
	return out
}

// serialize makes fn safe to call from several goroutines
func serialize(fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return func(Event) {}
	}
	var mu sync.Mutex
	return func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		fn(ev)
	}
}

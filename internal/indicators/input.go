package indicators

import (
	"github.com/wonny/folio/internal/contracts"
)

// User-visible reasons for undefined or omitted results
const (
	ReasonInsufficient     = "数据点不足"
	ReasonBenchmark        = "基准数据不可用"
	reasonNoVolatility     = "无波动性"
	reasonNoDrawdown       = "无回撤"
	reasonNoDownside       = "无下行风险"
	reasonZeroInitial      = "初始投资为零"
	reasonShortPeriod      = "投资天数不足"
	reasonZeroBeta         = "贝塔为零"
	reasonFlatBenchmark    = "基准无波动"
	reasonNoTrackingError  = "无跟踪误差"
	reasonNoLoss           = "无亏损日"
	reasonNoGain           = "无盈利日"
	reasonZeroValue        = "投资组合价值为0"
	reasonSingleHolding    = "单一投资"
	reasonNoSignChange     = "无法求解(无符号变化)"
	reasonNoRecovery       = "尚未恢复到峰值"
	reasonSmallSample      = "样本不足30天"
	reasonNoDefinedWindows = "所有窗口无波动性"
	reasonOverflow         = "数值溢出"
)

// Params are the tunable inputs of the indicator groups
type Params struct {
	RiskFreeRate      float64 // 연율, 기본 0
	RollingWindows    []int
	DrawdownThreshold float64 // 0.05 = 5%
}

// DefaultParams mirrors the documented defaults
func DefaultParams() Params {
	return Params{
		RiskFreeRate:      0,
		RollingWindows:    []int{20, 60},
		DrawdownThreshold: 0.05,
	}
}

// Input is the shared read-only input of every group
type Input struct {
	Valuation    contracts.ValuationSeries
	Returns      []contracts.ReturnPoint // total-value returns
	Benchmark    []contracts.ReturnPoint // nil when unavailable
	BenchmarkErr string                  // why Benchmark is nil
	Transactions []contracts.Transaction
	Flows        []contracts.CashFlow
	Excluded     map[string]bool // fully unresolved symbols
	Params       Params
}

func (in Input) values() []float64 {
	return contracts.Values(in.Returns)
}

func (in Input) benchmarkReason() string {
	if in.BenchmarkErr != "" {
		return ReasonBenchmark + ": " + in.BenchmarkErr
	}
	return ReasonBenchmark
}

// Calculator computes one top-level group
type Calculator struct {
	Kind    GroupKind
	Compute func(Input) Group
}

// Calculators lists the groups in result order
// ⭐ SSOT: 지표 그룹 목록
func Calculators() []Calculator {
	return []Calculator{
		{GroupReturn, ReturnGroup},
		{GroupRisk, RiskGroup},
		{GroupAlphaBeta, AlphaBetaGroup},
		{GroupWinLoss, WinLossGroup},
		{GroupRolling, RollingGroup},
		{GroupDiversification, DiversificationGroup},
		{GroupDrawdown, DrawdownGroup},
	}
}

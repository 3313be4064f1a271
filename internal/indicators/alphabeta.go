package indicators

import (
	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/returns"
)

// AlphaBetaGroup compares the portfolio with the benchmark.
// The whole group is omitted when no benchmark series is available.
func AlphaBetaGroup(in Input) Group {
	if in.Benchmark == nil {
		return OmittedGroup(GroupAlphaBeta, in.benchmarkReason())
	}

	ra, rb, _ := returns.Align(in.Returns, in.Benchmark)
	if len(ra) < 2 {
		return OmittedGroup(GroupAlphaBeta, ReasonInsufficient)
	}

	g := newGroup(GroupAlphaBeta)

	beta, defined := Beta(ra, rb)
	if defined {
		g.add(ok(MetricBeta, beta))
		g.add(ok(MetricAlpha, Mean(ra)*TradingDays-beta*Mean(rb)*TradingDays))
	} else {
		g.add(undefined(MetricBeta, reasonFlatBenchmark))
		g.add(undefined(MetricAlpha, reasonFlatBenchmark))
	}

	excess := make([]float64, len(ra))
	for i := range ra {
		excess[i] = ra[i] - rb[i]
	}
	te := StdDev(excess) * sqrtTradingDays
	g.add(ok(MetricTrackingError, te))
	if isZero(te) {
		g.add(undefined(MetricInformationRatio, reasonNoTrackingError))
	} else {
		g.add(ok(MetricInformationRatio, Mean(excess)*TradingDays/te))
	}

	growth := 1.0
	for _, v := range contracts.Values(in.Benchmark) {
		growth *= 1 + v
	}
	g.add(ok(MetricBenchmarkReturn, growth-1))

	return g
}

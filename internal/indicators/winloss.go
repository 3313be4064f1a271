package indicators

import "math"

// zScoreMinSample is the sample size above which the z-score is reported
const zScoreMinSample = 30

// WinLossGroup partitions daily returns into winning and losing days
func WinLossGroup(in Input) Group {
	r := in.values()
	n := len(r)
	if n == 0 {
		return OmittedGroup(GroupWinLoss, ReasonInsufficient)
	}

	g := newGroup(GroupWinLoss)

	wins := filter(r, func(v float64) bool { return v > 0 })
	losses := filter(r, func(v float64) bool { return v < 0 })
	winRate := float64(len(wins)) / float64(n)
	lossRate := float64(len(losses)) / float64(n)

	g.add(ok(MetricWinRate, winRate), ok(MetricLossRate, lossRate))

	avgGain, avgLoss := Mean(wins), Mean(losses)
	if len(wins) > 0 {
		g.add(ok(MetricAverageGain, avgGain))
	} else {
		g.add(undefined(MetricAverageGain, reasonNoGain))
	}
	if len(losses) > 0 {
		g.add(ok(MetricAverageLoss, avgLoss))
	} else {
		g.add(undefined(MetricAverageLoss, reasonNoLoss))
	}

	switch {
	case len(losses) == 0 || isZero(avgLoss):
		g.add(undefined(MetricGainLossRatio, reasonNoLoss))
	case len(wins) == 0:
		g.add(undefined(MetricGainLossRatio, reasonNoGain))
	default:
		g.add(ok(MetricGainLossRatio, avgGain/math.Abs(avgLoss)))
	}

	lo, hi := MinMax(r)
	g.add(ok(MetricMaxDailyGain, hi), ok(MetricMaxDailyLoss, lo))

	winRuns := streaks(r, func(v float64) bool { return v > 0 })
	lossRuns := streaks(r, func(v float64) bool { return v < 0 })
	g.add(
		ok(MetricMaxWinStreak, float64(maxInt(winRuns))),
		ok(MetricMaxLossStreak, float64(maxInt(lossRuns))),
		ok(MetricAvgWinStreak, meanInt(winRuns)),
		ok(MetricAvgLossStreak, meanInt(lossRuns)),
	)

	// empty subsets contribute 0 since their rate is 0
	g.add(ok(MetricExpectedDaily, winRate*avgGain+lossRate*avgLoss))

	switch sigma := StdDev(r); {
	case n <= zScoreMinSample:
		g.add(omitted(MetricReturnZScore, reasonSmallSample))
	case isZero(sigma):
		g.add(undefined(MetricReturnZScore, reasonNoVolatility))
	default:
		g.add(ok(MetricReturnZScore, Mean(r)/sigma))
	}

	return g
}

func maxInt(xs []int) int {
	best := 0
	for _, x := range xs {
		if x > best {
			best = x
		}
	}
	return best
}

func meanInt(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

package indicators

type windowStats struct {
	annReturn float64
	annVol    float64
	sharpe    float64
	sharpeOK  bool
	winRate   float64
}

// RollingGroup slides each configured window over the daily returns.
// A series shorter than a window yields an omitted child for that window.
func RollingGroup(in Input) Group {
	g := newGroup(GroupRolling)
	r := in.values()
	for _, w := range in.Params.RollingWindows {
		g.Children = append(g.Children, rollingWindow(r, w, in.Params.RiskFreeRate))
	}
	return g
}

func rollingWindow(r []float64, window int, rf float64) Group {
	if window < 2 || len(r) < window {
		child := OmittedGroup(GroupRollingWindow, ReasonInsufficient)
		child.Window = window
		return child
	}

	g := newGroup(GroupRollingWindow)
	g.Window = window

	stats := make([]windowStats, 0, len(r)-window+1)
	for end := window; end <= len(r); end++ {
		slice := r[end-window : end]
		sigma := StdDev(slice)
		ws := windowStats{
			annReturn: Mean(slice) * TradingDays,
			annVol:    sigma * sqrtTradingDays,
			winRate:   float64(len(filter(slice, func(v float64) bool { return v > 0 }))) / float64(window),
		}
		if !isZero(ws.annVol) {
			ws.sharpe = (ws.annReturn - rf) / ws.annVol
			ws.sharpeOK = true
		}
		stats = append(stats, ws)
	}

	rets := make([]float64, len(stats))
	vols := make([]float64, len(stats))
	wins := make([]float64, len(stats))
	var sharpes, positiveVols []float64
	for i, ws := range stats {
		rets[i], vols[i], wins[i] = ws.annReturn, ws.annVol, ws.winRate
		if ws.sharpeOK {
			sharpes = append(sharpes, ws.sharpe)
		}
		if ws.annVol > eps {
			positiveVols = append(positiveVols, ws.annVol)
		}
	}

	g.add(ok(MetricRollingReturn, Median(rets)))
	g.add(ok(MetricRollingVolatility, Median(vols)))
	if len(sharpes) > 0 {
		g.add(ok(MetricRollingSharpe, Median(sharpes)))
	} else {
		g.add(undefined(MetricRollingSharpe, reasonNoDefinedWindows))
	}
	g.add(ok(MetricRollingWinRate, Median(wins)))

	latest := stats[len(stats)-1]
	g.add(ok(MetricRollingLatestReturn, latest.annReturn))
	g.add(ok(MetricRollingLatestVolatility, latest.annVol))
	if latest.sharpeOK {
		g.add(ok(MetricRollingLatestSharpe, latest.sharpe))
	} else {
		g.add(undefined(MetricRollingLatestSharpe, reasonNoVolatility))
	}
	g.add(ok(MetricRollingLatestWinRate, latest.winRate))

	minRet, maxRet := MinMax(rets)
	_, maxVol := MinMax(vols)
	g.add(ok(MetricRollingMaxReturn, maxRet), ok(MetricRollingMinReturn, minRet))
	g.add(ok(MetricRollingMaxVolatility, maxVol))
	if len(positiveVols) > 0 {
		minVol, _ := MinMax(positiveVols)
		g.add(ok(MetricRollingMinVolatility, minVol))
	} else {
		g.add(ok(MetricRollingMinVolatility, 0))
	}
	g.add(ok(MetricRollingWindowCount, float64(len(stats))))

	return g
}

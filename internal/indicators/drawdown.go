package indicators

import (
	"time"

	"github.com/wonny/folio/internal/contracts"
)

// Episode is one peak → trough → recovery cycle of the valuation series
type Episode struct {
	PeakDate     time.Time
	TroughDate   time.Time
	RecoveryDate time.Time // zero while ongoing
	Depth        float64   // <= 0
	Recovered    bool
}

// Duration is calendar days from peak to trough
func (e Episode) Duration() int {
	return contracts.DaysBetween(e.PeakDate, e.TroughDate)
}

// RecoveryDays is calendar days from trough to recovery
func (e Episode) RecoveryDays() int {
	if !e.Recovered {
		return 0
	}
	return contracts.DaysBetween(e.TroughDate, e.RecoveryDate)
}

// Episodes scans values once with a running peak. An episode starts on the
// first value below the peak and ends on the first value back at or above it.
func Episodes(dates []time.Time, values []float64) []Episode {
	var out []Episode
	var cur *Episode
	peak, peakIdx := 0.0, -1

	for i, v := range values {
		if peakIdx < 0 || v >= peak {
			if cur != nil {
				cur.RecoveryDate = dates[i]
				cur.Recovered = true
				out = append(out, *cur)
				cur = nil
			}
			if v > 0 {
				peak, peakIdx = v, i
			}
			continue
		}

		dd := v/peak - 1
		if cur == nil {
			cur = &Episode{PeakDate: dates[peakIdx], TroughDate: dates[i], Depth: dd}
			continue
		}
		if dd < cur.Depth {
			cur.Depth = dd
			cur.TroughDate = dates[i]
		}
	}

	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

// DrawdownGroup reports every drawdown episode deeper than the threshold
func DrawdownGroup(in Input) Group {
	g := newGroup(GroupDrawdown)
	threshold := in.Params.DrawdownThreshold
	g.Threshold = threshold
	if in.Valuation.Len() == 0 {
		g.Status, g.Reason = StatusOmitted, ReasonInsufficient
		return g
	}

	dates := in.Valuation.Dates()
	episodes := Episodes(dates, in.Valuation.Totals())

	var material []Episode
	var depthSum float64
	for _, e := range episodes {
		depthSum += e.Depth
		if e.Depth <= -threshold {
			material = append(material, e)
		}
	}

	if len(episodes) > 0 {
		g.add(ok(MetricMeanDrawdown, depthSum/float64(len(episodes))))
	} else {
		g.add(undefined(MetricMeanDrawdown, reasonNoDrawdown))
	}
	g.add(ok(MetricMaterialDrawdowns, float64(len(material))))

	if len(material) > 0 {
		var durSum, longest int
		for _, e := range material {
			durSum += e.Duration()
			if e.Duration() > longest {
				longest = e.Duration()
			}
		}
		g.add(ok(MetricMeanDrawdownDuration, float64(durSum)/float64(len(material))))
		g.add(ok(MetricLongestDrawdownDuration, float64(longest)))
	} else {
		g.add(undefined(MetricMeanDrawdownDuration, reasonNoDrawdown))
		g.add(undefined(MetricLongestDrawdownDuration, reasonNoDrawdown))
	}

	if len(episodes) > 0 {
		deepest := episodes[0]
		for _, e := range episodes[1:] {
			if e.Depth < deepest.Depth {
				deepest = e
			}
		}
		g.add(okDate(MetricMaxDrawdownStart, contracts.FormatDate(deepest.PeakDate)))
		g.add(okDate(MetricMaxDrawdownTrough, contracts.FormatDate(deepest.TroughDate)))
		g.add(ok(MetricMaxDrawdownDuration, float64(deepest.Duration())))
		if deepest.Recovered {
			g.add(okDate(MetricMaxDrawdownRecovery, contracts.FormatDate(deepest.RecoveryDate)))
			g.add(ok(MetricMaxDrawdownRecoveryDays, float64(deepest.RecoveryDays())))
		} else {
			g.add(undefined(MetricMaxDrawdownRecovery, reasonNoRecovery))
			g.add(undefined(MetricMaxDrawdownRecoveryDays, reasonNoRecovery))
		}
	}

	if span := contracts.DaysBetween(dates[0], dates[len(dates)-1]); span > 0 {
		g.add(ok(MetricDrawdownFrequency, float64(len(material))/(float64(span)/365)))
	} else {
		g.add(undefined(MetricDrawdownFrequency, reasonShortPeriod))
	}

	for i, e := range material {
		child := newGroup(GroupEpisode)
		child.Ordinal = i + 1
		child.add(
			okDate(MetricEpisodePeak, contracts.FormatDate(e.PeakDate)),
			okDate(MetricEpisodeTrough, contracts.FormatDate(e.TroughDate)),
			ok(MetricEpisodeDepth, e.Depth),
			ok(MetricEpisodeDuration, float64(e.Duration())),
		)
		if e.Recovered {
			child.add(
				okDate(MetricEpisodeRecovery, contracts.FormatDate(e.RecoveryDate)),
				ok(MetricEpisodeRecoveryDays, float64(e.RecoveryDays())),
			)
		} else {
			child.add(
				undefined(MetricEpisodeRecovery, reasonNoRecovery),
				undefined(MetricEpisodeRecoveryDays, reasonNoRecovery),
			)
		}
		g.Children = append(g.Children, child)
	}

	return g
}

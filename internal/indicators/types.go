package indicators

import "math"

// Status marks whether a metric or group produced a value
type Status string

const (
	StatusOK        Status = "ok"
	StatusUndefined Status = "undefined" // 분모 0 등 수치적으로 정의 불가
	StatusOmitted   Status = "omitted"   // 입력 부족으로 계산 생략
)

// GroupKind identifies an indicator group
type GroupKind string

const (
	GroupReturn          GroupKind = "return"
	GroupRisk            GroupKind = "risk"
	GroupAlphaBeta       GroupKind = "alpha_beta"
	GroupWinLoss         GroupKind = "win_loss"
	GroupRolling         GroupKind = "rolling"
	GroupRollingWindow   GroupKind = "rolling_window"
	GroupDiversification GroupKind = "diversification"
	GroupWeights         GroupKind = "weights"
	GroupDrawdown        GroupKind = "drawdown"
	GroupEpisode         GroupKind = "drawdown_episode"
)

// Metric is a single computed indicator
type Metric struct {
	Kind   MetricKind `json:"kind"`
	Status Status     `json:"status"`
	Value  float64    `json:"value"`
	Symbol string     `json:"symbol,omitempty"`
	Date   string     `json:"date,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

// OK reports whether the metric carries a value
func (m Metric) OK() bool {
	return m.Status == StatusOK
}

func ok(kind MetricKind, v float64) Metric {
	return Metric{Kind: kind, Status: StatusOK, Value: v}
}

func okDate(kind MetricKind, date string) Metric {
	return Metric{Kind: kind, Status: StatusOK, Date: date}
}

func okSymbol(kind MetricKind, symbol string, v float64) Metric {
	return Metric{Kind: kind, Status: StatusOK, Symbol: symbol, Value: v}
}

func undefined(kind MetricKind, reason string) Metric {
	return Metric{Kind: kind, Status: StatusUndefined, Reason: reason}
}

func omitted(kind MetricKind, reason string) Metric {
	return Metric{Kind: kind, Status: StatusOmitted, Reason: reason}
}

// Group is a set of related metrics with optional nested groups
type Group struct {
	Kind      GroupKind `json:"kind"`
	Status    Status    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Window    int       `json:"window,omitempty"`    // rolling window size
	Threshold float64   `json:"threshold,omitempty"` // drawdown materiality
	Ordinal   int       `json:"ordinal,omitempty"`   // episode number
	Metrics   []Metric  `json:"metrics"`
	Children  []Group   `json:"children,omitempty"`
}

func newGroup(kind GroupKind) Group {
	return Group{Kind: kind, Status: StatusOK, Metrics: []Metric{}}
}

// OmittedGroup builds a group skipped entirely for reason
func OmittedGroup(kind GroupKind, reason string) Group {
	return Group{Kind: kind, Status: StatusOmitted, Reason: reason, Metrics: []Metric{}}
}

// add appends metrics. A non-finite value becomes undefined.
func (g *Group) add(m ...Metric) {
	for _, metric := range m {
		if metric.OK() && (math.IsNaN(metric.Value) || math.IsInf(metric.Value, 0)) {
			metric = undefined(metric.Kind, reasonOverflow)
		}
		g.Metrics = append(g.Metrics, metric)
	}
}

// Metric finds a metric of kind in this group or its children
func (g Group) Metric(kind MetricKind) (Metric, bool) {
	for _, m := range g.Metrics {
		if m.Kind == kind {
			return m, true
		}
	}
	for _, c := range g.Children {
		if m, found := c.Metric(kind); found {
			return m, true
		}
	}
	return Metric{}, false
}

// Indicators is the assembled indicator result
type Indicators struct {
	Groups []Group `json:"groups"`
	Error  string  `json:"error,omitempty"` // 수익률 시계열이 비었을 때만 설정
}

// Group returns the top-level group of kind
func (ind *Indicators) Group(kind GroupKind) (Group, bool) {
	for _, g := range ind.Groups {
		if g.Kind == kind {
			return g, true
		}
	}
	return Group{}, false
}

// Lookup finds the first metric of kind across all groups
func (ind *Indicators) Lookup(kind MetricKind) (Metric, bool) {
	for _, g := range ind.Groups {
		if m, found := g.Metric(kind); found {
			return m, true
		}
	}
	return Metric{}, false
}

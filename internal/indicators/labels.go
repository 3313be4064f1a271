package indicators

import (
	"fmt"
	"math"
	"strconv"
)

// MetricKind identifies a metric. The string value is its stable API key.
type MetricKind string

const (
	// return group
	MetricAbsoluteReturn   MetricKind = "absolute_return"
	MetricTotalReturn      MetricKind = "total_return"
	MetricAnnualizedReturn MetricKind = "annualized_return"
	MetricCAGR             MetricKind = "cagr"
	MetricROI              MetricKind = "roi"
	MetricTWR              MetricKind = "time_weighted_return"
	MetricMWR              MetricKind = "money_weighted_return"
	MetricMeanDailyReturn  MetricKind = "mean_daily_return"

	// risk group
	MetricDailyVolatility      MetricKind = "daily_volatility"
	MetricAnnualizedVolatility MetricKind = "annualized_volatility"
	MetricMaxDrawdown          MetricKind = "max_drawdown"
	MetricSharpe               MetricKind = "sharpe_ratio"
	MetricSortino              MetricKind = "sortino_ratio"
	MetricCalmar               MetricKind = "calmar_ratio"
	MetricTreynor              MetricKind = "treynor_ratio"
	MetricVaR95                MetricKind = "var_95"
	MetricCVaR95               MetricKind = "cvar_95"
	MetricDownsideRisk         MetricKind = "downside_risk"
	MetricDownsideDeviation    MetricKind = "downside_deviation"
	MetricReturnRiskRatio      MetricKind = "return_risk_ratio"

	// alpha/beta group
	MetricBeta             MetricKind = "beta"
	MetricAlpha            MetricKind = "alpha"
	MetricInformationRatio MetricKind = "information_ratio"
	MetricTrackingError    MetricKind = "tracking_error"
	MetricBenchmarkReturn  MetricKind = "benchmark_return"

	// win/loss group
	MetricWinRate       MetricKind = "win_rate"
	MetricLossRate      MetricKind = "loss_rate"
	MetricAverageGain   MetricKind = "average_gain"
	MetricAverageLoss   MetricKind = "average_loss"
	MetricGainLossRatio MetricKind = "gain_loss_ratio"
	MetricMaxDailyGain  MetricKind = "max_daily_gain"
	MetricMaxDailyLoss  MetricKind = "max_daily_loss"
	MetricMaxWinStreak  MetricKind = "max_win_streak"
	MetricMaxLossStreak MetricKind = "max_loss_streak"
	MetricAvgWinStreak  MetricKind = "avg_win_streak"
	MetricAvgLossStreak MetricKind = "avg_loss_streak"
	MetricExpectedDaily MetricKind = "expected_daily_return"
	MetricReturnZScore  MetricKind = "return_z_score"

	// rolling window group (label carries the window size)
	MetricRollingReturn           MetricKind = "rolling_return"
	MetricRollingVolatility       MetricKind = "rolling_volatility"
	MetricRollingSharpe           MetricKind = "rolling_sharpe"
	MetricRollingWinRate          MetricKind = "rolling_win_rate"
	MetricRollingLatestReturn     MetricKind = "rolling_latest_return"
	MetricRollingLatestVolatility MetricKind = "rolling_latest_volatility"
	MetricRollingLatestSharpe     MetricKind = "rolling_latest_sharpe"
	MetricRollingLatestWinRate    MetricKind = "rolling_latest_win_rate"
	MetricRollingMaxReturn        MetricKind = "rolling_max_return"
	MetricRollingMinReturn        MetricKind = "rolling_min_return"
	MetricRollingMaxVolatility    MetricKind = "rolling_max_volatility"
	MetricRollingMinVolatility    MetricKind = "rolling_min_volatility"
	MetricRollingWindowCount      MetricKind = "rolling_window_count"

	// diversification group
	MetricWeight            MetricKind = "weight"
	MetricHHI               MetricKind = "hhi"
	MetricGini              MetricKind = "gini"
	MetricEntropy           MetricKind = "entropy"
	MetricNormalizedEntropy MetricKind = "normalized_entropy"
	MetricEffectiveHoldings MetricKind = "effective_holdings"
	MetricMaxContribution   MetricKind = "max_contribution"

	// drawdown detail group
	MetricMeanDrawdown            MetricKind = "mean_drawdown"
	MetricMaterialDrawdowns       MetricKind = "material_drawdowns"
	MetricMeanDrawdownDuration    MetricKind = "mean_drawdown_duration"
	MetricLongestDrawdownDuration MetricKind = "longest_drawdown_duration"
	MetricMaxDrawdownStart        MetricKind = "max_drawdown_start"
	MetricMaxDrawdownTrough       MetricKind = "max_drawdown_trough"
	MetricMaxDrawdownDuration     MetricKind = "max_drawdown_duration"
	MetricMaxDrawdownRecovery     MetricKind = "max_drawdown_recovery"
	MetricMaxDrawdownRecoveryDays MetricKind = "max_drawdown_recovery_days"
	MetricDrawdownFrequency       MetricKind = "drawdown_frequency"

	// drawdown episode
	MetricEpisodePeak         MetricKind = "episode_peak"
	MetricEpisodeTrough       MetricKind = "episode_trough"
	MetricEpisodeRecovery     MetricKind = "episode_recovery"
	MetricEpisodeDepth        MetricKind = "episode_depth"
	MetricEpisodeDuration     MetricKind = "episode_duration"
	MetricEpisodeRecoveryDays MetricKind = "episode_recovery_days"
)

// valueFormat controls how a metric value is rendered for display
type valueFormat int

const (
	fmtPercent  valueFormat = iota // 12.34%
	fmtPercent4                    // 0.1234%
	fmtRatio                       // 1.23
	fmtAmount                      // 1234.56
	fmtDays                        // 5天
	fmtDays1                       // 5.5天
	fmtCount                       // 3
	fmtDate                        // 2024-01-02
	fmtFrequency                   // 1.50次/年
	fmtSymbolWeight                // AAPL (45.00%)
)

type metricInfo struct {
	label  string // %d = rolling window
	format valueFormat
}

// ⭐ SSOT: 표시용 라벨과 포맷은 여기서만
var metricInfos = map[MetricKind]metricInfo{
	MetricAbsoluteReturn:   {"绝对收益", fmtAmount},
	MetricTotalReturn:      {"总收益率", fmtPercent},
	MetricAnnualizedReturn: {"年化收益率", fmtPercent},
	MetricCAGR:             {"复合年增长率(CAGR)", fmtPercent},
	MetricROI:              {"ROI", fmtPercent},
	MetricTWR:              {"时间加权收益率", fmtPercent},
	MetricMWR:              {"资金加权收益率", fmtPercent},
	MetricMeanDailyReturn:  {"平均每日收益", fmtPercent4},

	MetricDailyVolatility:      {"日波动率", fmtPercent4},
	MetricAnnualizedVolatility: {"年化波动率", fmtPercent},
	MetricMaxDrawdown:          {"最大回撤", fmtPercent},
	MetricSharpe:               {"夏普比率", fmtRatio},
	MetricSortino:              {"索提诺比率", fmtRatio},
	MetricCalmar:               {"卡尔玛比率", fmtRatio},
	MetricTreynor:              {"特雷诺比率", fmtRatio},
	MetricVaR95:                {"风险值(VaR 95%)", fmtPercent},
	MetricCVaR95:               {"条件风险值(CVaR 95%)", fmtPercent},
	MetricDownsideRisk:         {"下行风险", fmtPercent},
	MetricDownsideDeviation:    {"下行偏差", fmtPercent},
	MetricReturnRiskRatio:      {"收益风险比", fmtRatio},

	MetricBeta:             {"贝塔", fmtRatio},
	MetricAlpha:            {"阿尔法", fmtPercent},
	MetricInformationRatio: {"信息比率", fmtRatio},
	MetricTrackingError:    {"跟踪误差", fmtPercent},
	MetricBenchmarkReturn:  {"基准收益率", fmtPercent},

	MetricWinRate:       {"胜率", fmtPercent},
	MetricLossRate:      {"败率", fmtPercent},
	MetricAverageGain:   {"平均收益(盈利日)", fmtPercent4},
	MetricAverageLoss:   {"平均损失(亏损日)", fmtPercent4},
	MetricGainLossRatio: {"收益/损失比", fmtRatio},
	MetricMaxDailyGain:  {"最大单日收益", fmtPercent4},
	MetricMaxDailyLoss:  {"最大单日损失", fmtPercent4},
	MetricMaxWinStreak:  {"最大连续盈利天数", fmtDays},
	MetricMaxLossStreak: {"最大连续亏损天数", fmtDays},
	MetricAvgWinStreak:  {"平均连续盈利天数", fmtDays1},
	MetricAvgLossStreak: {"平均连续亏损天数", fmtDays1},
	MetricExpectedDaily: {"每日期望收益", fmtPercent4},
	MetricReturnZScore:  {"收益Z分数", fmtRatio},

	MetricRollingReturn:           {"%d日滚动年化收益", fmtPercent},
	MetricRollingVolatility:       {"%d日滚动年化波动率", fmtPercent},
	MetricRollingSharpe:           {"%d日滚动夏普比率", fmtRatio},
	MetricRollingWinRate:          {"%d日滚动胜率", fmtPercent},
	MetricRollingLatestReturn:     {"%d日最新滚动年化收益", fmtPercent},
	MetricRollingLatestVolatility: {"%d日最新滚动年化波动率", fmtPercent},
	MetricRollingLatestSharpe:     {"%d日最新滚动夏普比率", fmtRatio},
	MetricRollingLatestWinRate:    {"%d日最新滚动胜率", fmtPercent},
	MetricRollingMaxReturn:        {"%d日最高历史收益", fmtPercent},
	MetricRollingMinReturn:        {"%d日最低历史收益", fmtPercent},
	MetricRollingMaxVolatility:    {"%d日最高历史波动率", fmtPercent},
	MetricRollingMinVolatility:    {"%d日最低历史波动率", fmtPercent},
	MetricRollingWindowCount:      {"%d日滚动窗口数", fmtCount},

	MetricHHI:               {"权重集中度(HHI)", fmtRatio},
	MetricGini:              {"投资集中度(基尼系数)", fmtRatio},
	MetricEntropy:           {"投资多样性(熵值)", fmtRatio},
	MetricNormalizedEntropy: {"标准化熵值", fmtRatio},
	MetricEffectiveHoldings: {"有效持仓数", fmtRatio},
	MetricMaxContribution:   {"最大贡献", fmtSymbolWeight},

	MetricMeanDrawdown:            {"平均回撤", fmtPercent},
	MetricMaterialDrawdowns:       {"显著回撤次数", fmtCount},
	MetricMeanDrawdownDuration:    {"平均回撤持续时间", fmtDays1},
	MetricLongestDrawdownDuration: {"最长回撤持续时间", fmtDays},
	MetricMaxDrawdownStart:        {"最大回撤开始日期", fmtDate},
	MetricMaxDrawdownTrough:       {"最大回撤结束日期", fmtDate},
	MetricMaxDrawdownDuration:     {"最大回撤持续时间", fmtDays},
	MetricMaxDrawdownRecovery:     {"回撤恢复日期", fmtDate},
	MetricMaxDrawdownRecoveryDays: {"回撤恢复时间", fmtDays},
	MetricDrawdownFrequency:       {"年化显著回撤频率", fmtFrequency},

	MetricEpisodePeak:         {"峰值日期", fmtDate},
	MetricEpisodeTrough:       {"谷底日期", fmtDate},
	MetricEpisodeRecovery:     {"恢复日期", fmtDate},
	MetricEpisodeDepth:        {"回撤深度", fmtPercent},
	MetricEpisodeDuration:     {"回撤持续时间", fmtDays},
	MetricEpisodeRecoveryDays: {"恢复时间", fmtDays},
}

// Label returns the display label of m inside group g
func (m Metric) Label(g Group) string {
	if m.Kind == MetricWeight {
		return m.Symbol
	}
	info, found := metricInfos[m.Kind]
	if !found {
		return string(m.Kind)
	}
	switch m.Kind {
	case MetricMaterialDrawdowns:
		return fmt.Sprintf("%s(>%s%%)", info.label, strconv.FormatFloat(g.Threshold*100, 'f', -1, 64))
	}
	if g.Kind == GroupRollingWindow {
		return fmt.Sprintf(info.label, g.Window)
	}
	return info.label
}

// Display renders the metric the way the UI shows it
func (m Metric) Display() string {
	switch m.Status {
	case StatusUndefined, StatusOmitted:
		if m.Reason == "" {
			return "N/A"
		}
		return fmt.Sprintf("N/A (%s)", m.Reason)
	}

	format := fmtRatio
	if m.Kind == MetricWeight {
		format = fmtPercent
	} else if info, found := metricInfos[m.Kind]; found {
		format = info.format
	}

	switch format {
	case fmtPercent:
		return fmt.Sprintf("%.2f%%", m.Value*100)
	case fmtPercent4:
		return fmt.Sprintf("%.4f%%", m.Value*100)
	case fmtAmount:
		return fmt.Sprintf("%.2f", m.Value)
	case fmtDays:
		return fmt.Sprintf("%d天", int(math.Round(m.Value)))
	case fmtDays1:
		return fmt.Sprintf("%.1f天", m.Value)
	case fmtCount:
		return strconv.Itoa(int(math.Round(m.Value)))
	case fmtDate:
		return m.Date
	case fmtFrequency:
		return fmt.Sprintf("%.2f次/年", m.Value)
	case fmtSymbolWeight:
		return fmt.Sprintf("%s (%.2f%%)", m.Symbol, m.Value*100)
	default:
		return fmt.Sprintf("%.2f", m.Value)
	}
}

// Label returns the display title of the group
func (g Group) Label() string {
	return groupLabel(g)
}

// groupLabel names nested groups in the labeled mapping
func groupLabel(g Group) string {
	switch g.Kind {
	case GroupReturn:
		return "收益指标"
	case GroupRisk:
		return "风险指标"
	case GroupAlphaBeta:
		return "阿尔法/贝塔"
	case GroupRolling:
		return "滚动分析"
	case GroupDiversification:
		return "投资分散度"
	case GroupWinLoss:
		return "胜负详细分析"
	case GroupRollingWindow:
		return fmt.Sprintf("%d日滚动分析", g.Window)
	case GroupDrawdown:
		return "回撤详细分析"
	case GroupWeights:
		return "股票权重"
	case GroupEpisode:
		return fmt.Sprintf("回撤区间 %d", g.Ordinal)
	default:
		return string(g.Kind)
	}
}

// flattened groups put their metrics at the top level of the labeled mapping
func flattened(kind GroupKind) bool {
	switch kind {
	case GroupReturn, GroupRisk, GroupAlphaBeta, GroupDiversification, GroupRolling:
		return true
	}
	return false
}

// Labeled renders the nested label → display string mapping.
// Omitted metrics are left out; omitted nested groups show their reason.
func (ind *Indicators) Labeled() map[string]interface{} {
	out := make(map[string]interface{})
	if ind.Error != "" {
		out["错误"] = ind.Error
		return out
	}
	for _, g := range ind.Groups {
		writeGroup(out, g)
	}
	return out
}

func writeGroup(out map[string]interface{}, g Group) {
	if flattened(g.Kind) {
		if g.Status == StatusOmitted {
			return
		}
		writeMetrics(out, g)
		for _, c := range g.Children {
			writeGroup(out, c)
		}
		return
	}

	if g.Status == StatusOmitted {
		if g.Reason == "" {
			out[groupLabel(g)] = "N/A"
		} else {
			out[groupLabel(g)] = g.Reason
		}
		return
	}

	nested := make(map[string]interface{})
	writeMetrics(nested, g)
	for _, c := range g.Children {
		writeGroup(nested, c)
	}
	out[groupLabel(g)] = nested
}

func writeMetrics(out map[string]interface{}, g Group) {
	for _, m := range g.Metrics {
		if m.Status == StatusOmitted {
			continue
		}
		out[m.Label(g)] = m.Display()
	}
}

package engine

import (
	"time"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/indicators"
	"github.com/wonny/folio/pkg/config"
)

// Options tunes one Engine
type Options struct {
	RiskFreeRate      float64
	DrawdownThreshold float64
	RollingWindows    []int
	FetchWorkers      int
	ReturnType        contracts.ReturnType
	Now               func() time.Time // 테스트용 시계 주입
}

// DefaultOptions returns the documented engine defaults
func DefaultOptions() Options {
	p := indicators.DefaultParams()
	return Options{
		RiskFreeRate:      p.RiskFreeRate,
		DrawdownThreshold: p.DrawdownThreshold,
		RollingWindows:    p.RollingWindows,
		FetchWorkers:      8,
		ReturnType:        contracts.ReturnSimple,
		Now:               time.Now,
	}
}

// OptionsFromConfig projects the engine settings out of cfg
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.RiskFreeRate = cfg.Engine.RiskFreeRate
	opts.DrawdownThreshold = cfg.Engine.DrawdownThreshold
	if len(cfg.Engine.RollingWindows) > 0 {
		opts.RollingWindows = cfg.Engine.RollingWindows
	}
	if cfg.Engine.FetchWorkers > 0 {
		opts.FetchWorkers = cfg.Engine.FetchWorkers
	}
	return opts
}

func (o Options) params() indicators.Params {
	return indicators.Params{
		RiskFreeRate:      o.RiskFreeRate,
		RollingWindows:    o.RollingWindows,
		DrawdownThreshold: o.DrawdownThreshold,
	}
}

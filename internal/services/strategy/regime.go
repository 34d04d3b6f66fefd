package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	domsvc "github.com/frontboat/agent-gmx-sub000/internal/domain/service"
)

// RegimeStrategy conditions its policy on the classified regime: contrarian
// against the forecast tilt inside trends, band breakouts inside ranges, and
// no signal at all in choppy conditions.
type RegimeStrategy struct {
	tau         float64 // contrarian tilt threshold; 2*tau is the saturation point
	bandEpsilon float64 // range-band breakout filter
}

func NewRegimeStrategy(tau, bandEpsilon float64) *RegimeStrategy {
	if tau <= 0 {
		tau = 0.015
	}
	if bandEpsilon <= 0 {
		bandEpsilon = 0.0005
	}
	return &RegimeStrategy{tau: tau, bandEpsilon: bandEpsilon}
}

func (s *RegimeStrategy) Name() string { return "regime" }

func (s *RegimeStrategy) Evaluate(in domsvc.StrategyInput) models.Signal {
	sig := models.Signal{
		Symbol:     in.Symbol,
		Strategy:   s.Name(),
		Direction:  models.DirectionNeutral,
		EntryPrice: in.Price,
		EmittedAt:  time.Now().UTC(),
	}

	if in.Regime == nil || in.Stats == nil || in.Latest == nil || in.Price <= 0 {
		sig.Reason = "insufficient history for regime classification"
		return sig
	}
	sig.PredictedPrice = in.Latest.Q(50)

	switch in.Regime.Regime {
	case models.RegimeTrendUp, models.RegimeTrendDown:
		return s.contrarian(in, sig)
	case models.RegimeRange:
		return s.rangeBand(in, sig)
	default:
		sig.Reason = "choppy regime, directional tilt not trusted"
		return sig
	}
}

// contrarian fades the bias-corrected forecast tilt inside a trend. The
// common case fades the forecast against the trend direction; the mirror
// case (forecast agreeing hard with the trend) is rare but still acted on.
func (s *RegimeStrategy) contrarian(in domsvc.StrategyInput, sig models.Signal) models.Signal {
	sig.Type = models.SignalContrarian
	q50 := in.Latest.Q(50)
	if q50 <= 0 {
		sig.Reason = "median forecast unavailable"
		return sig
	}

	tilt := (q50/in.Price - 1) - in.Stats.Bias
	strength := math.Min(math.Abs(tilt)/(2*s.tau), 1)

	switch {
	case tilt >= s.tau:
		sig.Direction = models.DirectionShort
		sig.Strength = strength
	case tilt <= -s.tau:
		sig.Direction = models.DirectionLong
		sig.Strength = strength
	default:
		sig.Reason = fmt.Sprintf("tilt %.4f within +/-%.4f threshold", tilt, s.tau)
	}
	return sig
}

// rangeBand goes with a breakout of the forecast band while the market
// ranges: the lower decile above price argues up, the upper decile below
// price argues down.
func (s *RegimeStrategy) rangeBand(in domsvc.StrategyInput, sig models.Signal) models.Signal {
	sig.Type = models.SignalRangeBand
	q10, q90 := in.Latest.Q(10), in.Latest.Q(90)
	if q10 <= 0 || q90 <= 0 {
		sig.Reason = "forecast band unavailable"
		return sig
	}

	switch {
	case q10 > in.Price*(1+s.bandEpsilon):
		sig.Direction = models.DirectionLong
		sig.Strength = math.Min(100*(q10/in.Price-1)/2, 1)
	case q90 < in.Price*(1-s.bandEpsilon):
		sig.Direction = models.DirectionShort
		sig.Strength = math.Min(100*(1-q90/in.Price)/2, 1)
	default:
		sig.Reason = "price inside forecast band"
	}
	return sig
}

var _ domsvc.Strategy = (*RegimeStrategy)(nil)

package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	domsvc "github.com/frontboat/agent-gmx-sub000/internal/domain/service"
)

// tierRule holds the entry/stop percentiles for one volatility tier.
type tierRule struct {
	longEntry  int     // LONG when price <= this percentile
	shortEntry int     // SHORT when price >= this percentile
	longStop   int     // stop percentile for LONG
	shortStop  int     // stop percentile for SHORT
	minBuffer  float64 // minimum stop distance from entry, as a fraction
}

var tierRules = map[models.VolTier]tierRule{
	models.TierVeryLow: {longEntry: 20, shortEntry: 80, longStop: 15, shortStop: 85, minBuffer: 0.005},
	models.TierLow:     {longEntry: 15, shortEntry: 85, longStop: 10, shortStop: 90, minBuffer: 0.01},
	models.TierMedium:  {longEntry: 10, shortEntry: 90, longStop: 5, shortStop: 95, minBuffer: 0.01},
	models.TierHigh:    {longEntry: 5, shortEntry: 95, longStop: 1, shortStop: 99, minBuffer: 0.02},
}

// PercentileStrategy compares the current price against the merged 24h-ago
// forecast distribution, with entry thresholds keyed to the realized
// volatility tier. Regime-independent. The target is always the merged
// median; the forecast is not trusted outside its own observed [P1, P99]
// bounds, where the strategy always says WAIT.
type PercentileStrategy struct{}

func NewPercentileStrategy() *PercentileStrategy { return &PercentileStrategy{} }

func (s *PercentileStrategy) Name() string { return "percentile" }

func (s *PercentileStrategy) Evaluate(in domsvc.StrategyInput) models.Signal {
	sig := models.Signal{
		Symbol:     in.Symbol,
		Strategy:   s.Name(),
		Type:       models.SignalPercentile,
		Direction:  models.DirectionNeutral,
		EntryPrice: in.Price,
		EmittedAt:  time.Now().UTC(),
	}

	dist := in.Percentiles
	if len(dist) == 0 || in.Price <= 0 {
		sig.Reason = "no merged forecast distribution available"
		return sig
	}
	p1, ok1 := dist[1]
	p99, ok99 := dist[99]
	p50, ok50 := dist[50]
	if !ok1 || !ok99 || !ok50 {
		sig.Reason = "merged distribution missing outer percentiles"
		return sig
	}
	sig.PredictedPrice = p50

	if in.Price < p1 || in.Price > p99 {
		sig.Direction = models.DirectionWait
		sig.Reason = fmt.Sprintf("price %.2f outside forecast bounds [%.2f, %.2f]", in.Price, p1, p99)
		return sig
	}

	tier := models.TierFor(in.Volatility)
	rule := tierRules[tier]

	switch {
	case in.Price <= dist[rule.longEntry]:
		sig.Direction = models.DirectionLong
		sig.Target = p50
		sig.StopLoss = longStop(in.Price, dist[rule.longStop], rule.minBuffer)
		sig.Strength = entryStrength(in.Price, dist[rule.longEntry], p1)
		sig.Reason = fmt.Sprintf("price at or below P%d in %s volatility", rule.longEntry, tier)
	case in.Price >= dist[rule.shortEntry]:
		sig.Direction = models.DirectionShort
		sig.Target = p50
		sig.StopLoss = shortStop(in.Price, dist[rule.shortStop], rule.minBuffer)
		sig.Strength = entryStrength(in.Price, dist[rule.shortEntry], p99)
		sig.Reason = fmt.Sprintf("price at or above P%d in %s volatility", rule.shortEntry, tier)
	default:
		sig.Reason = fmt.Sprintf("price between P%d and P%d entry levels (%s volatility)",
			rule.longEntry, rule.shortEntry, tier)
	}
	return sig
}

// longStop places the stop strictly below entry: the raw percentile level,
// but never closer than the minimum buffer.
func longStop(entry, percentileLevel, minBuffer float64) float64 {
	return math.Min(percentileLevel, entry*(1-minBuffer))
}

// shortStop mirrors longStop above the entry.
func shortStop(entry, percentileLevel, minBuffer float64) float64 {
	return math.Max(percentileLevel, entry*(1+minBuffer))
}

// entryStrength scales conviction by how deep the price sits between the
// entry threshold and the relevant outer bound.
func entryStrength(price, threshold, bound float64) float64 {
	span := math.Abs(threshold - bound)
	if span == 0 {
		return 1
	}
	depth := math.Abs(threshold-price) / span
	if depth > 1 {
		depth = 1
	}
	// Entries at the threshold still carry meaningful conviction.
	return 0.5 + 0.5*depth
}

var _ domsvc.Strategy = (*PercentileStrategy)(nil)

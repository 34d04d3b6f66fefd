package analytics

import (
	"math"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
)

// RegimeClassifier maps rolling statistics onto a market regime using
// volatility-normalized drift. Pure function of its inputs: identical stats
// always produce the identical regime and confidence.
type RegimeClassifier struct {
	driftEpsilon float64 // guards the vol-normalization against |mean| ~ 0
}

func NewRegimeClassifier(driftEpsilon float64) *RegimeClassifier {
	if driftEpsilon <= 0 {
		driftEpsilon = 0.001
	}
	return &RegimeClassifier{driftEpsilon: driftEpsilon}
}

// Classify returns nil when stats are nil: no history means no opinion,
// never a default regime.
func (c *RegimeClassifier) Classify(stats *models.RollingStats) *models.RegimeResult {
	if stats == nil {
		return nil
	}

	m, s := stats.Mean, stats.Std
	volNorm := s / (math.Abs(m) + c.driftEpsilon)

	switch {
	case volNorm > 2:
		return &models.RegimeResult{
			Regime:     models.RegimeChoppy,
			Confidence: math.Min(volNorm/3, 1),
		}
	case math.Abs(m) <= 0.4*s:
		conf := 1.0
		if s > 0 {
			conf = 1 - math.Abs(m)/(0.4*s)
		}
		return &models.RegimeResult{
			Regime:     models.RegimeRange,
			Confidence: conf,
		}
	case m > 0:
		return &models.RegimeResult{
			Regime:     models.RegimeTrendUp,
			Confidence: math.Min(m/s, 1),
		}
	default:
		return &models.RegimeResult{
			Regime:     models.RegimeTrendDown,
			Confidence: math.Min(-m/s, 1),
		}
	}
}

package analytics

import (
	"math"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
)

// StatsCalculator derives rolling drift and forecast-bias statistics from the
// recent history window. Two data pathways, tried in order:
//
//  1. Completed signal outcomes, when enough exist. These are keyed to actual
//     24h-forward realized prices, so they beat interpolation.
//  2. Pairing each buffered snapshot with the one closest to 24h before it.
//
// Compute returns nil, not a zeroed struct, when history is insufficient.
type StatsCalculator struct {
	sampleSize   int           // most recent pairs to keep
	minCompleted int           // completed outcomes needed for pathway 1
	horizon      time.Duration // forward-return horizon
	tolerance    time.Duration // pairing tolerance around the horizon
}

func NewStatsCalculator(sampleSize, minCompleted int, horizon, tolerance time.Duration) *StatsCalculator {
	if sampleSize <= 0 {
		sampleSize = 8
	}
	if minCompleted <= 0 {
		minCompleted = 3
	}
	if horizon <= 0 {
		horizon = 24 * time.Hour
	}
	if tolerance <= 0 {
		tolerance = 2 * time.Minute
	}
	return &StatsCalculator{
		sampleSize:   sampleSize,
		minCompleted: minCompleted,
		horizon:      horizon,
		tolerance:    tolerance,
	}
}

// Compute builds RollingStats from the buffered snapshots (oldest first) and
// the asset's completed tracking entries.
func (c *StatsCalculator) Compute(buffered []models.FlatSnap, completed []models.TrackingEntry) *models.RollingStats {
	if len(buffered) < 2 {
		return nil
	}

	realized, biases := c.fromOutcomes(completed)
	if realized == nil {
		realized, biases = c.fromSnapshotPairs(buffered)
	}
	if len(realized) < 3 {
		return nil
	}

	mean := meanOf(realized)
	return &models.RollingStats{
		Mean:            mean,
		Std:             populationStd(realized, mean),
		Bias:            meanOf(biases),
		RealizedReturns: realized,
		BiasErrors:      biases,
	}
}

// fromOutcomes uses the most recent completed signal outcomes, newest last.
func (c *StatsCalculator) fromOutcomes(completed []models.TrackingEntry) ([]float64, []float64) {
	usable := make([]models.TrackingEntry, 0, len(completed))
	for _, e := range completed {
		if e.Completed && e.RealizedReturn != nil && e.BiasError != nil {
			usable = append(usable, e)
		}
	}
	if len(usable) < c.minCompleted {
		return nil, nil
	}
	if len(usable) > c.sampleSize {
		usable = usable[len(usable)-c.sampleSize:]
	}
	realized := make([]float64, 0, len(usable))
	biases := make([]float64, 0, len(usable))
	for _, e := range usable {
		realized = append(realized, *e.RealizedReturn)
		biases = append(biases, *e.BiasError)
	}
	return realized, biases
}

// fromSnapshotPairs matches each snapshot against the one closest to exactly
// one horizon earlier, within the configured tolerance.
func (c *StatsCalculator) fromSnapshotPairs(buffered []models.FlatSnap) ([]float64, []float64) {
	var realized, biases []float64
	for i := len(buffered) - 1; i > 0 && len(realized) < c.sampleSize; i-- {
		cur := buffered[i]
		match, ok := c.matchEarlier(buffered[:i], cur.T.Add(-c.horizon))
		if !ok {
			continue
		}
		if match.Price <= 0 {
			continue
		}
		r := cur.Price/match.Price - 1
		p := match.Q(50)/match.Price - 1
		realized = append(realized, r)
		biases = append(biases, r-p)
	}
	// Collected newest-first; restore chronological order.
	reverse(realized)
	reverse(biases)
	return realized, biases
}

func (c *StatsCalculator) matchEarlier(candidates []models.FlatSnap, target time.Time) (models.FlatSnap, bool) {
	var best models.FlatSnap
	bestDelta := c.tolerance + 1
	for _, s := range candidates {
		delta := s.T.Sub(target)
		if delta < 0 {
			delta = -delta
		}
		if delta <= c.tolerance && delta < bestDelta {
			best = s
			bestDelta = delta
		}
	}
	return best, bestDelta <= c.tolerance
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// populationStd is the population (not sample) standard deviation.
func populationStd(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func reverse(xs []float64) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

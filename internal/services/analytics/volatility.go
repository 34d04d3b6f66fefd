package analytics

import (
	"math"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
)

// LogReturns computes r_t = ln(P_t / P_{t-1}) over buffered snapshot prices.
// Returns nil when there are fewer than 2 snapshots; non-positive prices
// contribute a zero return instead of a NaN.
func LogReturns(snaps []models.FlatSnap) []float64 {
	if len(snaps) < 2 {
		return nil
	}
	out := make([]float64, 0, len(snaps)-1)
	for i := 1; i < len(snaps); i++ {
		prev := snaps[i-1].Price
		cur := snaps[i].Price
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility annualizes the sample volatility of the latest window
// of log returns given the number of observation bars per year. Used by
// scheduled runs, where no caller supplies a volatility reading.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}

// BarsPerYear for the 5-minute snapshot cadence.
const BarsPerYear5m = 365 * 24 * 12

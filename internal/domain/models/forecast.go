package models

import (
	"sort"
	"strconv"
	"time"
)

// Snapshot is one persisted probabilistic price forecast for an asset over a
// fixed 24h horizon. It is produced by an external ingestion process and is
// read-only here. ProbabilityBelow maps price (encoded as a string key in the
// persisted JSON) to the cumulative probability of the price finishing below
// that level.
type Snapshot struct {
	Timestamp        int64              `json:"timestamp" validate:"required,gt=0"` // unix milliseconds
	CurrentPrice     float64            `json:"current_price" validate:"required,gt=0"`
	ProbabilityBelow map[string]float64 `json:"probability_below" validate:"required,min=1"`
}

// Time returns the snapshot timestamp as a time.Time.
func (s *Snapshot) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// PricePoint is one (price, cumulative probability) node of a forecast
// distribution.
type PricePoint struct {
	Price float64
	Prob  float64
}

// Pairs converts the raw probability map into points sorted by probability
// ascending. Keys that do not parse as positive prices and probabilities
// outside [0, 1] are dropped rather than propagated.
func (s *Snapshot) Pairs() []PricePoint {
	out := make([]PricePoint, 0, len(s.ProbabilityBelow))
	for k, p := range s.ProbabilityBelow {
		price, err := strconv.ParseFloat(k, 64)
		if err != nil || price <= 0 || p < 0 || p > 1 {
			continue
		}
		out = append(out, PricePoint{Price: price, Prob: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Prob == out[j].Prob {
			return out[i].Price < out[j].Price
		}
		return out[i].Prob < out[j].Prob
	})
	return out
}

// FlatSnap is a snapshot flattened to the fixed percentile grid, the shape
// held by the per-asset history buffer.
type FlatSnap struct {
	T         time.Time
	Symbol    string
	Price     float64
	Quantiles map[int]float64 // keyed by percentile, e.g. 50 -> median price
}

// Q returns the price at percentile p, or 0 when the percentile is absent.
func (f FlatSnap) Q(p int) float64 {
	return f.Quantiles[p]
}

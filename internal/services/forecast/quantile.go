package forecast

import (
	"math"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
)

// TargetPercentiles is the fixed percentile grid shared by producer and
// consumer of the flattened snapshots and the merged daily distribution.
var TargetPercentiles = []int{1, 5, 10, 15, 20, 30, 40, 50, 60, 70, 80, 85, 90, 95, 99}

// PriceAt returns the price at cumulative probability p, interpolating
// linearly in probability space over the snapshot's irregular grid. The
// target is clamped to the observed probability range: outside it the
// extreme price is returned. A bracket with equal probabilities yields the
// midpoint price. Returns false when the grid is empty.
//
// Downstream regime classification is sensitive to quantile drift of a few
// basis points, so this interpolation must stay exact at grid nodes.
func PriceAt(pairs []models.PricePoint, p float64) (float64, bool) {
	if len(pairs) == 0 {
		return 0, false
	}
	if p <= pairs[0].Prob {
		return pairs[0].Price, true
	}
	last := pairs[len(pairs)-1]
	if p >= last.Prob {
		return last.Price, true
	}
	for i := 0; i < len(pairs)-1; i++ {
		lo, hi := pairs[i], pairs[i+1]
		if p < lo.Prob || p > hi.Prob {
			continue
		}
		if lo.Prob == hi.Prob {
			return (lo.Price + hi.Price) / 2, true
		}
		frac := (p - lo.Prob) / (hi.Prob - lo.Prob)
		return lo.Price + frac*(hi.Price-lo.Price), true
	}
	// Unreachable with a sorted grid, but a malformed one falls through.
	return 0, false
}

// Flatten projects a snapshot onto the fixed percentile grid. Returns false
// for snapshots whose probability map is empty or unusable; such snapshots
// are skipped, not propagated.
func Flatten(snap models.Snapshot, symbol string) (models.FlatSnap, bool) {
	pairs := snap.Pairs()
	if len(pairs) == 0 {
		return models.FlatSnap{}, false
	}
	quantiles := make(map[int]float64, len(TargetPercentiles))
	for _, pct := range TargetPercentiles {
		price, ok := PriceAt(pairs, float64(pct)/100)
		if !ok {
			return models.FlatSnap{}, false
		}
		quantiles[pct] = price
	}
	return models.FlatSnap{
		T:         snap.Time(),
		Symbol:    symbol,
		Price:     snap.CurrentPrice,
		Quantiles: quantiles,
	}, true
}

// MergeNear averages the percentile grid across a fixed window of
// consecutive snapshots whose timestamps fall nearest the target instant
// (typically 24h in the past). Averaging across neighbours smooths the noise
// of a single distribution snapshot. Snapshots must be sorted by time
// ascending. Returns false when no usable snapshot exists.
func MergeNear(snaps []models.Snapshot, target time.Time, window int) (map[int]float64, bool) {
	if len(snaps) == 0 || window <= 0 {
		return nil, false
	}

	nearest := 0
	best := math.Abs(snaps[0].Time().Sub(target).Seconds())
	for i := 1; i < len(snaps); i++ {
		d := math.Abs(snaps[i].Time().Sub(target).Seconds())
		if d < best {
			best = d
			nearest = i
		}
	}

	start := nearest - window/2
	if start+window > len(snaps) {
		start = len(snaps) - window
	}
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(snaps) {
		end = len(snaps)
	}

	sums := make(map[int]float64, len(TargetPercentiles))
	counts := make(map[int]int, len(TargetPercentiles))
	for _, s := range snaps[start:end] {
		pairs := s.Pairs()
		if len(pairs) == 0 {
			continue
		}
		for _, pct := range TargetPercentiles {
			if price, ok := PriceAt(pairs, float64(pct)/100); ok {
				sums[pct] += price
				counts[pct]++
			}
		}
	}
	if counts[50] == 0 {
		return nil, false
	}

	merged := make(map[int]float64, len(TargetPercentiles))
	for _, pct := range TargetPercentiles {
		if counts[pct] > 0 {
			merged[pct] = sums[pct] / float64(counts[pct])
		}
	}
	return merged, true
}

// PercentileOf inverts a merged distribution: the cumulative percentile at
// which price sits. Clamped to the grid's outermost percentiles. Returns
// false when the distribution is empty.
func PercentileOf(dist map[int]float64, price float64) (float64, bool) {
	if len(dist) == 0 {
		return 0, false
	}
	type node struct {
		pct   float64
		price float64
	}
	nodes := make([]node, 0, len(TargetPercentiles))
	for _, pct := range TargetPercentiles {
		if p, ok := dist[pct]; ok {
			nodes = append(nodes, node{pct: float64(pct), price: p})
		}
	}
	if len(nodes) == 0 {
		return 0, false
	}
	if price <= nodes[0].price {
		return nodes[0].pct, true
	}
	last := nodes[len(nodes)-1]
	if price >= last.price {
		return last.pct, true
	}
	for i := 0; i < len(nodes)-1; i++ {
		lo, hi := nodes[i], nodes[i+1]
		if price < lo.price || price > hi.price {
			continue
		}
		if lo.price == hi.price {
			return (lo.pct + hi.pct) / 2, true
		}
		frac := (price - lo.price) / (hi.price - lo.price)
		return lo.pct + frac*(hi.pct-lo.pct), true
	}
	return last.pct, true
}

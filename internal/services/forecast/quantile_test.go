package forecast

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
)

func snapshotAt(ts time.Time, price float64, grid map[string]float64) models.Snapshot {
	return models.Snapshot{
		Timestamp:        ts.UnixMilli(),
		CurrentPrice:     price,
		ProbabilityBelow: grid,
	}
}

func TestPriceAtExactGridNodes(t *testing.T) {
	pairs := []models.PricePoint{
		{Price: 90, Prob: 0.1},
		{Price: 100, Prob: 0.5},
		{Price: 110, Prob: 0.9},
	}
	for _, tc := range pairs {
		got, ok := PriceAt(pairs, tc.Prob)
		if !ok || got != tc.Price {
			t.Fatalf("p=%.2f: expected exact %.2f, got %.6f ok=%v", tc.Prob, tc.Price, got, ok)
		}
	}
}

func TestPriceAtInterpolates(t *testing.T) {
	pairs := []models.PricePoint{
		{Price: 90, Prob: 0.1},
		{Price: 110, Prob: 0.9},
	}
	got, ok := PriceAt(pairs, 0.5)
	if !ok || math.Abs(got-100) > 1e-12 {
		t.Fatalf("expected 100, got %.6f ok=%v", got, ok)
	}
	got, _ = PriceAt(pairs, 0.3)
	if math.Abs(got-95) > 1e-12 {
		t.Fatalf("expected 95, got %.6f", got)
	}
}

func TestPriceAtClampsOutsideObservedRange(t *testing.T) {
	pairs := []models.PricePoint{
		{Price: 90, Prob: 0.2},
		{Price: 110, Prob: 0.8},
	}
	if got, _ := PriceAt(pairs, 0.01); got != 90 {
		t.Fatalf("below range: expected 90, got %.4f", got)
	}
	if got, _ := PriceAt(pairs, 0.99); got != 110 {
		t.Fatalf("above range: expected 110, got %.4f", got)
	}
}

func TestPriceAtDuplicatedProbabilities(t *testing.T) {
	// Duplicated probability nodes must not break lookup or monotonicity.
	pairs := []models.PricePoint{
		{Price: 80, Prob: 0.1},
		{Price: 90, Prob: 0.5},
		{Price: 100, Prob: 0.5},
		{Price: 120, Prob: 0.9},
	}
	got, ok := PriceAt(pairs, 0.5)
	if !ok || got != 90 {
		t.Fatalf("expected first bracket to win at 0.5, got %.4f ok=%v", got, ok)
	}
	above, _ := PriceAt(pairs, 0.51)
	if above < got {
		t.Fatalf("monotonicity violated around duplicate node: %.4f < %.4f", above, got)
	}
}

func TestPriceAtMonotone(t *testing.T) {
	pairs := []models.PricePoint{
		{Price: 80, Prob: 0.05},
		{Price: 95, Prob: 0.3},
		{Price: 100, Prob: 0.5},
		{Price: 104, Prob: 0.7},
		{Price: 125, Prob: 0.95},
	}
	prev := math.Inf(-1)
	for p := 0.01; p <= 0.99; p += 0.01 {
		got, ok := PriceAt(pairs, p)
		if !ok {
			t.Fatalf("p=%.2f: not ok", p)
		}
		if got < prev-1e-12 {
			t.Fatalf("p=%.2f: monotonicity violated (%.6f < %.6f)", p, got, prev)
		}
		prev = got
	}
}

func TestPriceAtEmpty(t *testing.T) {
	if _, ok := PriceAt(nil, 0.5); ok {
		t.Fatalf("expected not ok for empty grid")
	}
}

func TestFlattenProducesFullGrid(t *testing.T) {
	now := time.Now()
	snap := snapshotAt(now, 100, map[string]float64{
		"80":  0.01,
		"90":  0.10,
		"100": 0.50,
		"110": 0.90,
		"120": 0.99,
	})
	fs, ok := Flatten(snap, "BTC")
	if !ok {
		t.Fatalf("expected usable snapshot")
	}
	if fs.Symbol != "BTC" || fs.Price != 100 {
		t.Fatalf("unexpected flat snapshot: %+v", fs)
	}
	if len(fs.Quantiles) != len(TargetPercentiles) {
		t.Fatalf("expected %d quantiles, got %d", len(TargetPercentiles), len(fs.Quantiles))
	}
	if fs.Q(50) != 100 {
		t.Fatalf("expected median 100, got %.4f", fs.Q(50))
	}
	if fs.Q(10) != 90 || fs.Q(90) != 110 {
		t.Fatalf("unexpected band: q10=%.2f q90=%.2f", fs.Q(10), fs.Q(90))
	}
}

func TestFlattenRejectsEmptyMap(t *testing.T) {
	snap := snapshotAt(time.Now(), 100, map[string]float64{})
	if _, ok := Flatten(snap, "BTC"); ok {
		t.Fatalf("expected empty snapshot to be unusable")
	}
}

func TestMergeNearAverages(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var snaps []models.Snapshot
	// 10 snapshots at 5m cadence; prices shift by i so the average is visible.
	for i := 0; i < 10; i++ {
		lo := fmt.Sprintf("%d", 90+i)
		hi := fmt.Sprintf("%d", 110+i)
		snaps = append(snaps, snapshotAt(base.Add(time.Duration(i)*5*time.Minute), 100, map[string]float64{
			lo: 0.01,
			hi: 0.99,
		}))
	}
	target := base.Add(20 * time.Minute) // nearest snapshot index 4
	merged, ok := MergeNear(snaps, target, 7)
	if !ok {
		t.Fatalf("expected merged distribution")
	}
	// Window of 7 around index 4: indices 1..7, so mean offset is 4.
	if math.Abs(merged[1]-94) > 1e-9 {
		t.Fatalf("expected averaged P1 of 94, got %.6f", merged[1])
	}
	if math.Abs(merged[99]-114) > 1e-9 {
		t.Fatalf("expected averaged P99 of 114, got %.6f", merged[99])
	}
}

func TestMergeNearSkipsUnusable(t *testing.T) {
	base := time.Now()
	snaps := []models.Snapshot{
		snapshotAt(base, 100, map[string]float64{}),
		snapshotAt(base.Add(5*time.Minute), 100, map[string]float64{"90": 0.1, "110": 0.9}),
	}
	merged, ok := MergeNear(snaps, base, 7)
	if !ok {
		t.Fatalf("one usable snapshot should be enough")
	}
	if merged[50] != 100 {
		t.Fatalf("expected median 100, got %.4f", merged[50])
	}
}

func TestMergeNearEmpty(t *testing.T) {
	if _, ok := MergeNear(nil, time.Now(), 7); ok {
		t.Fatalf("expected not ok for empty history")
	}
}

func TestPercentileOf(t *testing.T) {
	dist := map[int]float64{}
	for _, pct := range TargetPercentiles {
		dist[pct] = 50 + float64(pct) // strictly increasing ladder
	}
	got, ok := PercentileOf(dist, dist[50])
	if !ok || math.Abs(got-50) > 1e-9 {
		t.Fatalf("expected P50, got %.4f ok=%v", got, ok)
	}
	if got, _ := PercentileOf(dist, 0); got != 1 {
		t.Fatalf("below ladder: expected clamp to P1, got %.4f", got)
	}
	if got, _ := PercentileOf(dist, 1e6); got != 99 {
		t.Fatalf("above ladder: expected clamp to P99, got %.4f", got)
	}
	mid, _ := PercentileOf(dist, (dist[40]+dist[50])/2)
	if math.Abs(mid-45) > 1e-9 {
		t.Fatalf("expected interpolated P45, got %.4f", mid)
	}
}

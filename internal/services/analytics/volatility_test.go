package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
)

func snapsWithPrices(prices ...float64) []models.FlatSnap {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.FlatSnap, len(prices))
	for i, p := range prices {
		out[i] = models.FlatSnap{T: base.Add(time.Duration(i) * 5 * time.Minute), Symbol: "BTC", Price: p}
	}
	return out
}

func TestLogReturns(t *testing.T) {
	rets := LogReturns(snapsWithPrices(100, 110, 99))
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	if math.Abs(rets[0]-math.Log(1.1)) > 1e-12 {
		t.Fatalf("first return = %v", rets[0])
	}
	if math.Abs(rets[1]-math.Log(0.9)) > 1e-12 {
		t.Fatalf("second return = %v", rets[1])
	}
}

func TestLogReturnsShortInput(t *testing.T) {
	if LogReturns(nil) != nil {
		t.Fatalf("nil input should yield nil")
	}
	if LogReturns(snapsWithPrices(100)) != nil {
		t.Fatalf("single snapshot should yield nil")
	}
}

func TestLogReturnsNonPositivePrice(t *testing.T) {
	rets := LogReturns(snapsWithPrices(100, 0, 100))
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	for i, r := range rets {
		if r != 0 {
			t.Fatalf("return %d around bad price should be 0, got %v", i, r)
		}
	}
}

func TestRealizedVolatilityConstantPrices(t *testing.T) {
	rets := LogReturns(snapsWithPrices(100, 100, 100, 100, 100))
	if v := RealizedVolatility(rets, len(rets), BarsPerYear5m); v != 0 {
		t.Fatalf("flat series should have zero volatility, got %v", v)
	}
}

func TestRealizedVolatilityAnnualizes(t *testing.T) {
	// Alternating +1%/-1% log returns: sample std is known in closed form.
	rets := []float64{0.01, -0.01, 0.01, -0.01, 0.01, -0.01}
	n := float64(len(rets))
	std := math.Sqrt(0.01 * 0.01 * n / (n - 1)) // mean is 0
	want := std * math.Sqrt(BarsPerYear5m)

	got := RealizedVolatility(rets, len(rets), BarsPerYear5m)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("vol = %v, want %v", got, want)
	}
}

func TestRealizedVolatilityWindowGuard(t *testing.T) {
	if v := RealizedVolatility([]float64{0.01}, 5, BarsPerYear5m); v != 0 {
		t.Fatalf("insufficient window should yield 0, got %v", v)
	}
	if v := RealizedVolatility([]float64{0.01, 0.02}, 1, BarsPerYear5m); v != 0 {
		t.Fatalf("window of 1 should yield 0, got %v", v)
	}
}

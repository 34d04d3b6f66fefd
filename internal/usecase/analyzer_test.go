package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	domsvc "github.com/frontboat/agent-gmx-sub000/internal/domain/service"
	"github.com/frontboat/agent-gmx-sub000/internal/repository"
	"github.com/frontboat/agent-gmx-sub000/internal/services/analytics"
	"github.com/frontboat/agent-gmx-sub000/internal/services/strategy"
)

type memSnapshotStore struct {
	mu       sync.Mutex
	bySymbol map[string][]models.Snapshot
}

func (m *memSnapshotStore) History(ctx context.Context, symbol string) ([]models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Snapshot, len(m.bySymbol[symbol]))
	copy(out, m.bySymbol[symbol])
	return out, nil
}

type memPublisher struct {
	mu   sync.Mutex
	sigs []models.Signal
}

func (m *memPublisher) Publish(ctx context.Context, sig models.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sigs = append(m.sigs, sig)
	return nil
}

func (m *memPublisher) Close() error { return nil }

// snapshotAt builds a snapshot whose distribution is a symmetric ladder
// around center: P50 = center, each step is one percent of center.
func snapshotAt(ts time.Time, center float64) models.Snapshot {
	probs := map[string]float64{}
	steps := []struct {
		p float64
		k int
	}{
		{0.01, -10}, {0.05, -8}, {0.10, -6}, {0.15, -5}, {0.20, -4},
		{0.30, -3}, {0.40, -1}, {0.50, 0}, {0.60, 1}, {0.70, 3},
		{0.80, 4}, {0.85, 5}, {0.90, 6}, {0.95, 8}, {0.99, 10},
	}
	for _, s := range steps {
		price := center * (1 + float64(s.k)/100)
		probs[fmt.Sprintf("%.4f", price)] = s.p
	}
	return models.Snapshot{
		Timestamp:        ts.UnixMilli(),
		CurrentPrice:     center,
		ProbabilityBelow: probs,
	}
}

func newTestAnalyzer(t *testing.T, store *memSnapshotStore, pub *memPublisher) *Analyzer {
	t.Helper()
	l := testLogger(t)
	tracker := NewSignalTracker(&memTrackingStore{}, repository.NoopArchive{}, repository.NopMetrics{}, l, 24*time.Hour, 100)
	return NewAnalyzer(
		store,
		tracker,
		analytics.NewStatsCalculator(8, 3, 24*time.Hour, 2*time.Minute),
		analytics.NewRegimeClassifier(0.001),
		analytics.NewTransitionLog(l),
		[]domsvc.Strategy{strategy.NewRegimeStrategy(0.015, 0.0005), strategy.NewPercentileStrategy()},
		pub,
		repository.NopMetrics{},
		l,
		AnalyzerConfig{BufferCapacity: 500, MergeWindow: 7, TrackHorizon: 24 * time.Hour, DefaultStrat: "regime"},
	)
}

func TestAnalyzeUnknownStrategy(t *testing.T) {
	a := newTestAnalyzer(t, &memSnapshotStore{}, &memPublisher{})
	if _, err := a.Analyze(context.Background(), "BTC", 100, 0.3, "martingale"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestAnalyzeRejectsNonPositivePrice(t *testing.T) {
	a := newTestAnalyzer(t, &memSnapshotStore{}, &memPublisher{})
	if _, err := a.Analyze(context.Background(), "BTC", 0, 0.3, ""); err == nil {
		t.Fatalf("expected error for zero price")
	}
}

func TestLastTransitionPerSymbol(t *testing.T) {
	a := newTestAnalyzer(t, &memSnapshotStore{}, &memPublisher{})

	if _, ok := a.LastTransition("BTC"); ok {
		t.Fatalf("expected no transition before any observation")
	}
	a.transitions.Observe("BTC", models.RegimeRange, time.Now())
	tr, ok := a.LastTransition("BTC")
	if !ok || tr.Regime != models.RegimeRange {
		t.Fatalf("unexpected transition: %+v ok=%v", tr, ok)
	}
	if _, ok := a.LastTransition("ETH"); ok {
		t.Fatalf("transitions must be per symbol")
	}
}

func TestAnalyzeNoHistoryIsReasonedNeutral(t *testing.T) {
	a := newTestAnalyzer(t, &memSnapshotStore{bySymbol: map[string][]models.Snapshot{}}, &memPublisher{})

	res, err := a.Analyze(context.Background(), "BTC", 100, 0.3, "")
	if err != nil {
		t.Fatalf("missing data must not error: %v", err)
	}
	if res.Signal.Direction != models.DirectionNeutral {
		t.Fatalf("expected NEUTRAL, got %s", res.Signal.Direction)
	}
	if res.Signal.Reason == "" {
		t.Fatalf("neutral result must carry a reason")
	}
	if res.Regime != nil || res.Stats != nil {
		t.Fatalf("no history should leave regime and stats nil")
	}
	if !strings.Contains(res.Report, "NEUTRAL") {
		t.Fatalf("report should state the signal:\n%s", res.Report)
	}
}

func TestAnalyzePercentileLongAndPublish(t *testing.T) {
	// History spanning the last 25h at 1h spacing so the merge window finds
	// snapshots near 24h ago. Flat market centered at 100.
	now := time.Now().UTC()
	var snaps []models.Snapshot
	for h := 25; h >= 0; h-- {
		snaps = append(snaps, snapshotAt(now.Add(-time.Duration(h)*time.Hour), 100))
	}
	store := &memSnapshotStore{bySymbol: map[string][]models.Snapshot{"BTC": snaps}}
	pub := &memPublisher{}
	a := newTestAnalyzer(t, store, pub)

	// Price at the 4th percentile of a VERY_LOW vol ladder: P20 = 96, P5 = 92.
	res, err := a.Analyze(context.Background(), "BTC", 94, 0.15, "percentile")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Signal.Direction != models.DirectionLong {
		t.Fatalf("expected LONG at depressed percentile, got %s (%s)", res.Signal.Direction, res.Signal.Reason)
	}
	if res.Signal.Type != models.SignalPercentile {
		t.Fatalf("expected PERCENTILE signal, got %s", res.Signal.Type)
	}
	if res.Signal.Target != 100 {
		t.Fatalf("target should be the median 100, got %v", res.Signal.Target)
	}
	if res.CurrentPercentile == nil {
		t.Fatalf("merged ladder should yield a current percentile")
	}
	if *res.CurrentPercentile >= 20 {
		t.Fatalf("94 should sit below P20, got P%.1f", *res.CurrentPercentile)
	}

	if len(pub.sigs) != 1 {
		t.Fatalf("actionable signal should be published once, got %d", len(pub.sigs))
	}
	if got := len(a.TrackingLog(context.Background())); got != 1 {
		t.Fatalf("actionable signal should be tracked, got %d entries", got)
	}

	// Same signal again: tracked log suppresses the duplicate and nothing
	// new is published.
	if _, err := a.Analyze(context.Background(), "BTC", 94, 0.15, "percentile"); err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if len(pub.sigs) != 1 {
		t.Fatalf("duplicate signal must not be republished, got %d", len(pub.sigs))
	}
}

func TestAnalyzeWaitOutsideForecastBounds(t *testing.T) {
	now := time.Now().UTC()
	var snaps []models.Snapshot
	for h := 25; h >= 0; h-- {
		snaps = append(snaps, snapshotAt(now.Add(-time.Duration(h)*time.Hour), 100))
	}
	store := &memSnapshotStore{bySymbol: map[string][]models.Snapshot{"BTC": snaps}}
	a := newTestAnalyzer(t, store, &memPublisher{})

	// P1 = 90 on the ladder; 85 is outside the forecast's support.
	res, err := a.Analyze(context.Background(), "BTC", 85, 0.15, "percentile")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Signal.Direction != models.DirectionWait {
		t.Fatalf("expected WAIT outside [P1, P99], got %s", res.Signal.Direction)
	}
}

func TestAnalyzeReportOrdering(t *testing.T) {
	now := time.Now().UTC()
	var snaps []models.Snapshot
	for h := 25; h >= 0; h-- {
		snaps = append(snaps, snapshotAt(now.Add(-time.Duration(h)*time.Hour), 100))
	}
	store := &memSnapshotStore{bySymbol: map[string][]models.Snapshot{"BTC": snaps}}
	a := newTestAnalyzer(t, store, &memPublisher{})

	res, err := a.Analyze(context.Background(), "BTC", 94, 0.15, "percentile")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	report := res.Report
	order := []string{"Signal:", "Current Price:", "Current Percentile:", "Volatility:", "Percentiles (24h ago):"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(report, marker)
		if idx < 0 {
			t.Fatalf("report missing %q:\n%s", marker, report)
		}
		if idx < last {
			t.Fatalf("report line %q out of order:\n%s", marker, report)
		}
		last = idx
	}
	if !strings.Contains(report, "P50: $100.00") {
		t.Fatalf("ladder should include the median:\n%s", report)
	}
}

func TestAnalyzeScheduledUsesLatestSnapshot(t *testing.T) {
	now := time.Now().UTC()
	var snaps []models.Snapshot
	for h := 25; h >= 0; h-- {
		snaps = append(snaps, snapshotAt(now.Add(-time.Duration(h)*time.Hour), 100))
	}
	store := &memSnapshotStore{bySymbol: map[string][]models.Snapshot{"BTC": snaps}}
	a := newTestAnalyzer(t, store, &memPublisher{})

	res, err := a.AnalyzeScheduled(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("scheduled analyze: %v", err)
	}
	if res == nil {
		t.Fatalf("expected a result with history present")
	}
	if res.Price != 100 {
		t.Fatalf("scheduled run should price from the latest snapshot, got %v", res.Price)
	}
	if res.Strategy != "regime" {
		t.Fatalf("scheduled run should use the default strategy, got %s", res.Strategy)
	}
}

func TestAnalyzeScheduledNoHistory(t *testing.T) {
	a := newTestAnalyzer(t, &memSnapshotStore{bySymbol: map[string][]models.Snapshot{}}, &memPublisher{})
	res, err := a.AnalyzeScheduled(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("scheduled analyze: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil result without history")
	}
}

func TestAnalyzeBufferRefreshSkipsStale(t *testing.T) {
	now := time.Now().UTC()
	first := snapshotAt(now.Add(-2*time.Hour), 100)
	store := &memSnapshotStore{bySymbol: map[string][]models.Snapshot{"BTC": {first}}}
	a := newTestAnalyzer(t, store, &memPublisher{})

	if _, err := a.Analyze(context.Background(), "BTC", 100, 0.3, ""); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	// Re-analyzing with unchanged history must not duplicate buffer entries.
	if _, err := a.Analyze(context.Background(), "BTC", 100, 0.3, ""); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	a.mu.Lock()
	n := a.buffers["BTC"].Len()
	a.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected 1 buffered snapshot, got %d", n)
	}

	store.mu.Lock()
	store.bySymbol["BTC"] = append(store.bySymbol["BTC"], snapshotAt(now.Add(-time.Hour), 101))
	store.mu.Unlock()

	if _, err := a.Analyze(context.Background(), "BTC", 100, 0.3, ""); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	a.mu.Lock()
	n = a.buffers["BTC"].Len()
	last, _ := a.buffers["BTC"].Last()
	a.mu.Unlock()
	if n != 2 {
		t.Fatalf("expected 2 buffered snapshots, got %d", n)
	}
	if last.Price != 101 {
		t.Fatalf("newest snapshot should be buffered, got price %v", last.Price)
	}
}

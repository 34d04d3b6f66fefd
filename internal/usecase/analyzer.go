package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	domrepo "github.com/frontboat/agent-gmx-sub000/internal/domain/repository"
	domsvc "github.com/frontboat/agent-gmx-sub000/internal/domain/service"
	"github.com/frontboat/agent-gmx-sub000/internal/services/analytics"
	"github.com/frontboat/agent-gmx-sub000/internal/services/forecast"
	"github.com/frontboat/agent-gmx-sub000/pkg/logger"
	"github.com/frontboat/agent-gmx-sub000/pkg/ring"
)

// AnalyzerConfig carries the engine tuning knobs.
type AnalyzerConfig struct {
	BufferCapacity int
	MergeWindow    int
	TrackHorizon   time.Duration
	DefaultStrat   string
}

// Analyzer runs one full analysis cycle per call: refresh the asset's
// history buffer from the snapshot store, resolve due signal outcomes,
// compute rolling statistics, classify the regime, evaluate the selected
// strategy, track/publish the signal, and render the report.
//
// All engine state is held here rather than in package-level maps, so
// independent Analyzer instances (tests included) never share state. The
// per-asset buffers map is guarded by a single mutex; the tracker and
// transition log serialize themselves.
type Analyzer struct {
	snapshots   domrepo.SnapshotStore
	tracker     *SignalTracker
	stats       *analytics.StatsCalculator
	classifier  *analytics.RegimeClassifier
	transitions *analytics.TransitionLog
	strategies  map[string]domsvc.Strategy
	publisher   domrepo.SignalPublisher
	metrics     domrepo.Metrics
	logger      *logger.Logger
	cfg         AnalyzerConfig

	mu      sync.Mutex
	buffers map[string]*ring.Buffer[models.FlatSnap]
}

func NewAnalyzer(
	snapshots domrepo.SnapshotStore,
	tracker *SignalTracker,
	stats *analytics.StatsCalculator,
	classifier *analytics.RegimeClassifier,
	transitions *analytics.TransitionLog,
	strategies []domsvc.Strategy,
	publisher domrepo.SignalPublisher,
	metrics domrepo.Metrics,
	l *logger.Logger,
	cfg AnalyzerConfig,
) *Analyzer {
	if cfg.BufferCapacity <= 0 {
		cfg.BufferCapacity = 500
	}
	if cfg.MergeWindow <= 0 {
		cfg.MergeWindow = 7
	}
	if cfg.TrackHorizon <= 0 {
		cfg.TrackHorizon = 24 * time.Hour
	}
	byName := make(map[string]domsvc.Strategy, len(strategies))
	for _, s := range strategies {
		byName[s.Name()] = s
	}
	if cfg.DefaultStrat == "" {
		cfg.DefaultStrat = "regime"
	}
	return &Analyzer{
		snapshots:   snapshots,
		tracker:     tracker,
		stats:       stats,
		classifier:  classifier,
		transitions: transitions,
		strategies:  byName,
		publisher:   publisher,
		metrics:     metrics,
		logger:      l,
		cfg:         cfg,
		buffers:     make(map[string]*ring.Buffer[models.FlatSnap]),
	}
}

// Analyze is the sole integration point for downstream consumers. It never
// errors for ordinary insufficient-data conditions; those surface as
// NEUTRAL/WAIT with a reason inside the report. The only errors are misuse
// (unknown strategy, non-positive price).
func (a *Analyzer) Analyze(ctx context.Context, symbol string, price, volatility float64, strategyName string) (*models.AnalysisResult, error) {
	start := time.Now()
	if strategyName == "" {
		strategyName = a.cfg.DefaultStrat
	}
	strat, ok := a.strategies[strategyName]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", strategyName)
	}
	if price <= 0 {
		return nil, fmt.Errorf("price must be positive, got %f", price)
	}

	history := a.loadHistory(ctx, symbol)
	buffered := a.refreshBuffer(symbol, history)

	now := time.Now().UTC()
	a.tracker.Resolve(ctx, now, a.lastBufferedPrice)

	completed := a.tracker.Completed(ctx, symbol)
	stats := a.stats.Compute(buffered, completed)
	regime := a.classifier.Classify(stats)
	if regime != nil {
		if a.transitions.Observe(symbol, regime.Regime, now) {
			a.metrics.RecordRegimeTransition(symbol, string(regime.Regime))
		}
	}

	merged, _ := forecast.MergeNear(history, now.Add(-a.cfg.TrackHorizon), a.cfg.MergeWindow)

	var latest *models.FlatSnap
	if n := len(buffered); n > 0 {
		latest = &buffered[n-1]
	}

	sig := strat.Evaluate(domsvc.StrategyInput{
		Symbol:      symbol,
		Price:       price,
		Volatility:  volatility,
		Latest:      latest,
		Stats:       stats,
		Regime:      regime,
		Percentiles: merged,
	})

	if sig.Direction.Actionable() && a.tracker.Track(ctx, sig) {
		a.metrics.RecordSignal(symbol, string(sig.Type), string(sig.Direction))
		a.logger.Info("signal emitted",
			logger.String("symbol", symbol),
			logger.String("strategy", strategyName),
			logger.String("direction", string(sig.Direction)),
			logger.Float64("strength", sig.Strength),
		)
		if a.publisher != nil {
			if err := a.publisher.Publish(ctx, sig); err != nil {
				a.logger.Warn("signal publish failed", logger.Error(err))
				a.metrics.RecordError("signal_publish")
			}
		}
	}

	result := &models.AnalysisResult{
		Symbol:      symbol,
		Strategy:    strategyName,
		Price:       price,
		Volatility:  volatility,
		Signal:      sig,
		Regime:      regime,
		Stats:       stats,
		Percentiles: merged,
	}
	if pct, ok := forecast.PercentileOf(merged, price); ok {
		result.CurrentPercentile = &pct
	}
	result.Report = renderReport(result)

	a.metrics.RecordLastPrice(symbol, price)
	a.metrics.RecordAnalysis(symbol, strategyName, time.Since(start).Seconds())
	return result, nil
}

// AnalyzeScheduled runs an unattended cycle for one symbol, deriving the
// current price from the latest snapshot and the volatility input from
// buffered returns. Returns nil without error when the symbol has no
// snapshot history yet.
func (a *Analyzer) AnalyzeScheduled(ctx context.Context, symbol string) (*models.AnalysisResult, error) {
	history := a.loadHistory(ctx, symbol)
	buffered := a.refreshBuffer(symbol, history)
	if len(buffered) == 0 {
		a.logger.Debug("no snapshot history yet", logger.String("symbol", symbol))
		return nil, nil
	}

	last := buffered[len(buffered)-1]
	rets := analytics.LogReturns(buffered)
	window := len(rets)
	if window > 288 { // one day of 5-minute bars
		window = 288
	}
	vol := analytics.RealizedVolatility(rets, window, analytics.BarsPerYear5m)

	return a.Analyze(ctx, symbol, last.Price, vol, "")
}

// Transitions exposes the per-asset regime transition records.
func (a *Analyzer) Transitions() []models.RegimeTransition {
	return a.transitions.All()
}

// LastTransition exposes the current regime transition record for one asset.
func (a *Analyzer) LastTransition(symbol string) (models.RegimeTransition, bool) {
	return a.transitions.Last(symbol)
}

// TrackingLog exposes the current signal tracking log.
func (a *Analyzer) TrackingLog(ctx context.Context) []models.TrackingEntry {
	return a.tracker.Entries(ctx)
}

func (a *Analyzer) loadHistory(ctx context.Context, symbol string) []models.Snapshot {
	history, err := a.snapshots.History(ctx, symbol)
	if err != nil {
		// The store degrades to empty on its own; anything else is logged
		// and treated as no data.
		a.logger.Warn("snapshot history read failed", logger.String("symbol", symbol), logger.Error(err))
		a.metrics.RecordError("snapshot_read")
		return nil
	}
	return history
}

// refreshBuffer appends any snapshots newer than the buffered head and
// returns the buffer contents, oldest first. Unusable snapshots (empty or
// unbracketable probability maps) are skipped.
func (a *Analyzer) refreshBuffer(symbol string, history []models.Snapshot) []models.FlatSnap {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf, ok := a.buffers[symbol]
	if !ok {
		buf = ring.New[models.FlatSnap](a.cfg.BufferCapacity)
		a.buffers[symbol] = buf
	}

	var newest time.Time
	if last, ok := buf.Last(); ok {
		newest = last.T
	}
	for _, snap := range history {
		if !snap.Time().After(newest) {
			continue
		}
		fs, ok := forecast.Flatten(snap, symbol)
		if !ok {
			continue
		}
		buf.Push(fs)
	}
	return buf.Items()
}

func (a *Analyzer) lastBufferedPrice(symbol string) (float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[symbol]
	if !ok {
		return 0, false
	}
	last, ok := buf.Last()
	if !ok {
		return 0, false
	}
	return last.Price, true
}

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	domrepo "github.com/frontboat/agent-gmx-sub000/internal/domain/repository"
	"github.com/frontboat/agent-gmx-sub000/pkg/logger"
)

// SignalTracker owns the signal tracking log: it records every emitted
// actionable signal, resolves it against the realized price one horizon
// later, and persists the log atomically on every mutation. The log is
// shared mutable state across assets, so all access is serialized behind a
// single mutex (duplicate suppression and trimming are read-modify-write).
type SignalTracker struct {
	mu      sync.Mutex
	store   domrepo.TrackingStore
	archive domrepo.OutcomeArchive
	metrics domrepo.Metrics
	logger  *logger.Logger

	horizon    time.Duration
	maxEntries int

	entries []models.TrackingEntry
	loaded  bool
}

func NewSignalTracker(
	store domrepo.TrackingStore,
	archive domrepo.OutcomeArchive,
	metrics domrepo.Metrics,
	l *logger.Logger,
	horizon time.Duration,
	maxEntries int,
) *SignalTracker {
	if horizon <= 0 {
		horizon = 24 * time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &SignalTracker{
		store:      store,
		archive:    archive,
		metrics:    metrics,
		logger:     l,
		horizon:    horizon,
		maxEntries: maxEntries,
	}
}

// ensureLoaded reads the persisted log once. A failed read is retried on the
// next call rather than treated as an empty log: persisting over an unread
// log would erase the accumulated outcome history. Entries tracked while the
// store was unreadable are kept and appended after the loaded ones. Callers
// hold t.mu.
func (t *SignalTracker) ensureLoaded(ctx context.Context) {
	if t.loaded {
		return
	}
	entries, err := t.store.Load(ctx)
	if err != nil {
		t.logger.Warn("tracking log load failed, deferring writes", logger.Error(err))
		t.metrics.RecordError("tracking_load")
		return
	}
	if len(t.entries) > 0 {
		entries = append(entries, t.entries...)
		if len(entries) > t.maxEntries {
			entries = entries[len(entries)-t.maxEntries:]
		}
	}
	t.entries = entries
	t.loaded = true
}

// Track records an actionable signal unless an open entry already exists for
// the same (asset, type, direction). Returns true when a new entry was
// appended. The log is trimmed to the most recent maxEntries on append.
func (t *SignalTracker) Track(ctx context.Context, sig models.Signal) bool {
	if !sig.Direction.Actionable() {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoaded(ctx)

	for _, e := range t.entries {
		if !e.Completed && e.Symbol == sig.Symbol && e.SignalType == sig.Type && e.Direction == sig.Direction {
			return false
		}
	}

	entry := models.TrackingEntry{
		Timestamp:      sig.EmittedAt,
		Symbol:         sig.Symbol,
		SignalType:     sig.Type,
		Direction:      sig.Direction,
		EntryPrice:     sig.EntryPrice,
		PredictedPrice: sig.PredictedPrice,
	}
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.maxEntries {
		t.entries = t.entries[len(t.entries)-t.maxEntries:]
	}
	t.persist(ctx)
	return true
}

// Resolve completes every open entry older than the horizon, using lastPrice
// to look up the most recent buffered price for the entry's asset. Entries
// with no available price stay open rather than timing out silently.
// Returns the number of entries resolved.
func (t *SignalTracker) Resolve(ctx context.Context, now time.Time, lastPrice func(symbol string) (float64, bool)) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoaded(ctx)

	resolved := 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.Completed || now.Sub(e.Timestamp) < t.horizon {
			continue
		}
		exit, ok := lastPrice(e.Symbol)
		if !ok || exit <= 0 || e.EntryPrice <= 0 {
			continue
		}

		realized := exit/e.EntryPrice - 1
		predicted := e.PredictedPrice/e.EntryPrice - 1
		biasErr := realized - predicted

		ts := now
		e.ExitTimestamp = &ts
		e.ExitPrice = &exit
		e.RealizedReturn = &realized
		e.PredictedReturn = &predicted
		e.BiasError = &biasErr
		e.Completed = true
		resolved++

		t.logger.Info("signal resolved",
			logger.String("symbol", e.Symbol),
			logger.String("type", string(e.SignalType)),
			logger.String("direction", string(e.Direction)),
			logger.Float64("realized_return", realized),
			logger.Float64("bias_error", biasErr),
		)
		if t.archive != nil {
			if err := t.archive.Archive(ctx, *e); err != nil {
				t.logger.Warn("outcome archive failed", logger.Error(err))
				t.metrics.RecordError("outcome_archive")
			}
		}
	}

	if resolved > 0 {
		t.persist(ctx)
	}
	return resolved
}

// Completed returns the asset's completed entries, oldest first.
func (t *SignalTracker) Completed(ctx context.Context, symbol string) []models.TrackingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoaded(ctx)

	out := make([]models.TrackingEntry, 0)
	for _, e := range t.entries {
		if e.Completed && e.Symbol == symbol {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns a copy of the full tracking log, oldest first.
func (t *SignalTracker) Entries(ctx context.Context) []models.TrackingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoaded(ctx)

	out := make([]models.TrackingEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// persist writes the log. Failures are logged and counted but do not abort
// the analysis that triggered them; the in-memory log stays authoritative
// for this process. Writes are withheld until a load has succeeded. Callers
// hold t.mu.
func (t *SignalTracker) persist(ctx context.Context) {
	if !t.loaded {
		t.logger.Warn("tracking log persist skipped, log not loaded yet")
		t.metrics.RecordError("tracking_persist")
		return
	}
	if err := t.store.Save(ctx, t.entries); err != nil {
		t.logger.Error("tracking log persist failed", logger.Error(err))
		t.metrics.RecordError("tracking_persist")
	}
}

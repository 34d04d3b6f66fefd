package repository

import (
	"context"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
)

// SnapshotStore reads the persisted forecast snapshot log. The log is owned
// by an external ingestion process; this engine never writes it. A missing or
// unreadable log is reported as empty history, not as an error.
type SnapshotStore interface {
	History(ctx context.Context, symbol string) ([]models.Snapshot, error)
}

// TrackingStore persists the signal tracking log, which this engine
// exclusively owns. Save must be atomic: a reader never observes a partial
// write.
type TrackingStore interface {
	Load(ctx context.Context) ([]models.TrackingEntry, error)
	Save(ctx context.Context, entries []models.TrackingEntry) error
}

// SignalPublisher fans emitted signals out to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, sig models.Signal) error
	Close() error
}

// OutcomeArchive stores resolved tracking entries for offline analysis.
type OutcomeArchive interface {
	Init(ctx context.Context) error
	Archive(ctx context.Context, entry models.TrackingEntry) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordAnalysis(symbol, strategy string, seconds float64)
	RecordSignal(symbol, signalType, direction string)
	RecordRegimeTransition(symbol, regime string)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
}

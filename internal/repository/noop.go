package repository

import (
	"context"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	domrepo "github.com/frontboat/agent-gmx-sub000/internal/domain/repository"
)

// NoopPublisher is used when Kafka fan-out is disabled.
type NoopPublisher struct{}

var _ domrepo.SignalPublisher = NoopPublisher{}

func (NoopPublisher) Publish(ctx context.Context, sig models.Signal) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }

// NoopArchive is used when ClickHouse archival is disabled.
type NoopArchive struct{}

var _ domrepo.OutcomeArchive = NoopArchive{}

func (NoopArchive) Init(ctx context.Context) error                            { return nil }
func (NoopArchive) Archive(ctx context.Context, e models.TrackingEntry) error { return nil }
func (NoopArchive) Close() error                                              { return nil }

// NopMetrics discards all measurements.
type NopMetrics struct{}

var _ domrepo.Metrics = NopMetrics{}

func (NopMetrics) RecordAnalysis(symbol, strategy string, seconds float64) {}
func (NopMetrics) RecordSignal(symbol, signalType, direction string)       {}
func (NopMetrics) RecordRegimeTransition(symbol, regime string)            {}
func (NopMetrics) RecordLastPrice(symbol string, price float64)            {}
func (NopMetrics) RecordError(kind string)                                 {}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	domrepo "github.com/frontboat/agent-gmx-sub000/internal/domain/repository"
	pkgch "github.com/frontboat/agent-gmx-sub000/pkg/clickhouse"
	"github.com/frontboat/agent-gmx-sub000/pkg/logger"
)

const outcomeTable = "synthsig.signal_outcomes"

var outcomeSchema = []string{
	`CREATE DATABASE IF NOT EXISTS synthsig`,
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
        ts               DateTime64(3),
        symbol           LowCardinality(String),
        signal_type      LowCardinality(String),
        direction        LowCardinality(String),
        entry_price      Float64,
        predicted_price  Float64,
        exit_ts          DateTime64(3),
        exit_price       Float64,
        realized_return  Float64,
        predicted_return Float64,
        bias_error       Float64
    ) ENGINE = MergeTree()
    ORDER BY (symbol, ts)`, outcomeTable),
}

// CHOutcomeArchive stores resolved signal outcomes in ClickHouse for offline
// calibration analysis. The file-backed tracking log stays authoritative;
// this archive is append-only and best-effort.
type CHOutcomeArchive struct {
	client *pkgch.Client
	db     *sql.DB
	logger *logger.Logger
}

var _ domrepo.OutcomeArchive = (*CHOutcomeArchive)(nil)

func NewCHOutcomeArchive(client *pkgch.Client, l *logger.Logger) *CHOutcomeArchive {
	return &CHOutcomeArchive{client: client, db: client.DB(), logger: l}
}

func (a *CHOutcomeArchive) Init(ctx context.Context) error {
	return a.client.InitSchema(ctx, outcomeSchema)
}

func (a *CHOutcomeArchive) Archive(ctx context.Context, e models.TrackingEntry) error {
	if !e.Completed || e.ExitTimestamp == nil {
		return fmt.Errorf("archive: entry for %s is not resolved", e.Symbol)
	}
	start := time.Now()
	q := fmt.Sprintf(`INSERT INTO %s
        (ts, symbol, signal_type, direction, entry_price, predicted_price,
         exit_ts, exit_price, realized_return, predicted_return, bias_error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, outcomeTable)
	_, err := a.db.ExecContext(ctx, q,
		e.Timestamp,
		e.Symbol,
		string(e.SignalType),
		string(e.Direction),
		e.EntryPrice,
		e.PredictedPrice,
		*e.ExitTimestamp,
		deref(e.ExitPrice),
		deref(e.RealizedReturn),
		deref(e.PredictedReturn),
		deref(e.BiasError),
	)
	if err != nil {
		return fmt.Errorf("archive outcome: %w", err)
	}
	a.logger.Debug("outcome archived",
		logger.String("symbol", e.Symbol),
		logger.Duration("duration", time.Since(start)),
	)
	return nil
}

func (a *CHOutcomeArchive) Close() error {
	return a.client.Close()
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

package usecase

import (
	"context"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	"github.com/frontboat/agent-gmx-sub000/pkg/logger"
)

// Scheduler drives unattended analysis cycles on a fixed interval. It is
// optional; API-driven deployments run with it disabled.
type Scheduler struct {
	analyzer *Analyzer
	symbols  []string
	interval time.Duration
	logger   *logger.Logger
	done     chan struct{}
}

func NewScheduler(analyzer *Analyzer, symbols []string, interval time.Duration, l *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		analyzer: analyzer,
		symbols:  symbols,
		interval: interval,
		logger:   l,
		done:     make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called. One immediate pass
// runs before the ticker so a fresh process does not idle a full interval.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started",
		logger.Strings("symbols", s.symbols),
		logger.Duration("interval", s.interval),
	)
	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) runPass(ctx context.Context) {
	for _, symbol := range s.symbols {
		if ctx.Err() != nil {
			return
		}
		res, err := s.analyzer.AnalyzeScheduled(ctx, symbol)
		if err != nil {
			s.logger.Warn("scheduled analysis failed", logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		if res == nil {
			continue
		}
		s.logger.Info("scheduled analysis",
			logger.String("symbol", symbol),
			logger.String("direction", string(res.Signal.Direction)),
			logger.String("regime", regimeLabel(res)),
		)
	}
}

func regimeLabel(res *models.AnalysisResult) string {
	if res.Regime == nil {
		return "UNKNOWN"
	}
	return string(res.Regime.Regime)
}

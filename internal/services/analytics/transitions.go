package analytics

import (
	"sync"
	"time"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	"github.com/frontboat/agent-gmx-sub000/pkg/logger"
)

// TransitionLog keeps the last observed regime per asset and logs a
// transition, with the previous regime's duration, whenever the
// classification changes. Observational only: it never feeds back into
// classification. Shared across assets, so access is serialized.
type TransitionLog struct {
	mu     sync.Mutex
	last   map[string]models.RegimeTransition
	logger *logger.Logger
}

func NewTransitionLog(l *logger.Logger) *TransitionLog {
	return &TransitionLog{
		last:   make(map[string]models.RegimeTransition),
		logger: l,
	}
}

// Observe records the classified regime for symbol at now. Returns true when
// this observation is a transition.
func (t *TransitionLog) Observe(symbol string, regime models.Regime, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, seen := t.last[symbol]
	if seen && prev.Regime == regime {
		return false
	}

	t.last[symbol] = models.RegimeTransition{Symbol: symbol, Regime: regime, Since: now}
	if seen && t.logger != nil {
		t.logger.Info("regime transition",
			logger.String("symbol", symbol),
			logger.String("from", string(prev.Regime)),
			logger.String("to", string(regime)),
			logger.Duration("previous_duration_ms", now.Sub(prev.Since)),
		)
	}
	return true
}

// Last returns the current transition record for symbol.
func (t *TransitionLog) Last(symbol string) (models.RegimeTransition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, ok := t.last[symbol]
	return tr, ok
}

// All returns a copy of the per-asset transition records.
func (t *TransitionLog) All() []models.RegimeTransition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.RegimeTransition, 0, len(t.last))
	for _, tr := range t.last {
		out = append(out, tr)
	}
	return out
}

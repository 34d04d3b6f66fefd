package service

import (
	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
)

// StrategyInput carries everything a strategy may condition on. Stats,
// Regime and Percentiles are nil/empty when history was insufficient;
// strategies must degrade to NEUTRAL or WAIT, never error, in that case.
type StrategyInput struct {
	Symbol      string
	Price       float64
	Volatility  float64 // annualized 24h realized volatility, 0.35 = 35%
	Latest      *models.FlatSnap
	Stats       *models.RollingStats
	Regime      *models.RegimeResult
	Percentiles map[int]float64 // merged 24h-ago distribution
}

// Strategy turns an analysis input into a directional signal.
type Strategy interface {
	Name() string
	Evaluate(in StrategyInput) models.Signal
}

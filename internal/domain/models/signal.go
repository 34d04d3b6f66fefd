package models

import "time"

// Regime classifies recent drift/volatility behaviour.
type Regime string

const (
	RegimeTrendUp   Regime = "TREND_UP"
	RegimeTrendDown Regime = "TREND_DOWN"
	RegimeRange     Regime = "RANGE"
	RegimeChoppy    Regime = "CHOPPY"
)

// RegimeResult is a classification with its confidence score.
type RegimeResult struct {
	Regime     Regime  `json:"regime"`
	Confidence float64 `json:"confidence"` // 0..1
}

// RegimeTransition records when an asset last entered its current regime.
// Purely observational; classification itself carries no hysteresis.
type RegimeTransition struct {
	Symbol string    `json:"symbol"`
	Regime Regime    `json:"regime"`
	Since  time.Time `json:"since"`
}

// RollingStats summarises the recent window of 24h-forward realized returns
// and forecast bias. A nil *RollingStats means "insufficient history", which
// downstream code must treat as no opinion, never as a flat market.
type RollingStats struct {
	Mean            float64   `json:"mean"` // drift of realized returns
	Std             float64   `json:"std"`  // population std of realized returns
	Bias            float64   `json:"bias"` // mean of bias errors
	RealizedReturns []float64 `json:"realized_returns"`
	BiasErrors      []float64 `json:"bias_errors"`
}

// Direction of a trading signal.
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL"
	DirectionWait    Direction = "WAIT"
)

// Actionable reports whether the signal should be tracked and published.
func (d Direction) Actionable() bool {
	return d == DirectionLong || d == DirectionShort
}

// SignalType identifies which policy produced a signal.
type SignalType string

const (
	SignalContrarian SignalType = "CONTRARIAN"
	SignalRangeBand  SignalType = "RANGE_BAND"
	SignalPercentile SignalType = "PERCENTILE"
)

// Signal is a strength-scored directional recommendation.
type Signal struct {
	Symbol         string     `json:"symbol"`
	Strategy       string     `json:"strategy"`
	Type           SignalType `json:"type,omitempty"`
	Direction      Direction  `json:"direction"`
	Strength       float64    `json:"strength"` // 0..1 conviction score
	EntryPrice     float64    `json:"entry_price"`
	PredictedPrice float64    `json:"predicted_price,omitempty"` // median forecast at emission
	StopLoss       float64    `json:"stop_loss,omitempty"`
	Target         float64    `json:"target,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	EmittedAt      time.Time  `json:"emitted_at"`
}

// VolTier buckets 24h realized volatility for the percentile strategy.
type VolTier string

const (
	TierVeryLow VolTier = "VERY_LOW"
	TierLow     VolTier = "LOW"
	TierMedium  VolTier = "MEDIUM"
	TierHigh    VolTier = "HIGH"
)

// TierFor classifies an annualized 24h volatility fraction (0.35 = 35%).
func TierFor(vol float64) VolTier {
	switch {
	case vol < 0.20:
		return TierVeryLow
	case vol < 0.40:
		return TierLow
	case vol < 0.60:
		return TierMedium
	default:
		return TierHigh
	}
}

// TrackingEntry records one emitted signal and, once resolved 24h later, its
// outcome. Exit fields are filled exactly once, when Completed flips true.
type TrackingEntry struct {
	Timestamp       time.Time  `json:"timestamp"`
	Symbol          string     `json:"symbol"`
	SignalType      SignalType `json:"signal_type"`
	Direction       Direction  `json:"direction"`
	EntryPrice      float64    `json:"entry_price"`
	PredictedPrice  float64    `json:"predicted_price"`
	ExitTimestamp   *time.Time `json:"exit_timestamp,omitempty"`
	ExitPrice       *float64   `json:"exit_price,omitempty"`
	RealizedReturn  *float64   `json:"realized_return,omitempty"`
	PredictedReturn *float64   `json:"predicted_return,omitempty"`
	BiasError       *float64   `json:"bias_error,omitempty"`
	Completed       bool       `json:"completed"`
}

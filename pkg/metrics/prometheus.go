package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analysisDuration  *prometheus.HistogramVec
	signalsTotal      *prometheus.CounterVec
	regimeTransitions *prometheus.CounterVec
	lastPrice         *prometheus.GaugeVec
	errorsTotal       *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		analysisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "synthsig_analysis_duration_seconds",
				Help:    "Duration of one full analysis cycle",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol", "strategy"},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synthsig_signals_total",
				Help: "Total actionable signals emitted",
			},
			[]string{"symbol", "type", "direction"},
		),
		regimeTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synthsig_regime_transitions_total",
				Help: "Total regime transitions observed",
			},
			[]string{"symbol", "regime"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "synthsig_last_price",
				Help: "Last analyzed price for a symbol",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synthsig_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordAnalysis records one analysis cycle's duration.
func (r *Recorder) RecordAnalysis(symbol, strategy string, seconds float64) {
	r.analysisDuration.WithLabelValues(symbol, strategy).Observe(seconds)
}

// RecordSignal records an emitted actionable signal.
func (r *Recorder) RecordSignal(symbol, signalType, direction string) {
	r.signalsTotal.WithLabelValues(symbol, signalType, direction).Inc()
}

// RecordRegimeTransition records a regime change for a symbol.
func (r *Recorder) RecordRegimeTransition(symbol, regime string) {
	r.regimeTransitions.WithLabelValues(symbol, regime).Inc()
}

// RecordLastPrice records the last analyzed price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

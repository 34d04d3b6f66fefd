package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
)

// renderReport builds the human-readable analysis block. Line ordering is
// fixed so downstream log scrapers can rely on it.
func renderReport(res *models.AnalysisResult) string {
	var b strings.Builder

	sig := res.Signal
	if sig.Direction.Actionable() {
		fmt.Fprintf(&b, "Signal: %s (%s)\n", sig.Direction, sig.Type)
	} else {
		fmt.Fprintf(&b, "Signal: %s\n", sig.Direction)
	}
	if sig.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", sig.Reason)
	}

	fmt.Fprintf(&b, "Current Price: %s\n", formatPrice(res.Price))
	if res.CurrentPercentile != nil {
		fmt.Fprintf(&b, "Current Percentile: P%.1f\n", *res.CurrentPercentile)
	} else {
		b.WriteString("Current Percentile: n/a\n")
	}
	fmt.Fprintf(&b, "Volatility: %.1f%%\n", res.Volatility*100)

	if res.Regime != nil {
		fmt.Fprintf(&b, "Regime: %s\n", res.Regime.Regime)
		fmt.Fprintf(&b, "Confidence: %.0f%%\n", res.Regime.Confidence*100)
	}
	if res.Stats != nil {
		fmt.Fprintf(&b, "Drift: mean %+.3f%% / std %.3f%%\n", res.Stats.Mean*100, res.Stats.Std*100)
		fmt.Fprintf(&b, "Bias: %+.3f%%\n", res.Stats.Bias*100)
	} else {
		b.WriteString("Drift: n/a (insufficient history)\n")
	}

	if sig.Direction.Actionable() {
		fmt.Fprintf(&b, "Signal Strength: %.2f\n", sig.Strength)
		if sig.StopLoss > 0 {
			fmt.Fprintf(&b, "Stop Loss: %s\n", formatPrice(sig.StopLoss))
		}
		if sig.Target > 0 {
			fmt.Fprintf(&b, "Target: %s\n", formatPrice(sig.Target))
		}
	}

	if len(res.Percentiles) > 0 {
		b.WriteString("Percentiles (24h ago):\n")
		keys := make([]int, 0, len(res.Percentiles))
		for p := range res.Percentiles {
			keys = append(keys, p)
		}
		sort.Ints(keys)
		for _, p := range keys {
			fmt.Fprintf(&b, "  P%d: %s\n", p, formatPrice(res.Percentiles[p]))
		}
	}

	return b.String()
}

// formatPrice keeps sub-dollar assets readable without drowning large
// prices in decimals.
func formatPrice(v float64) string {
	if v < 1 {
		return fmt.Sprintf("$%.6f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

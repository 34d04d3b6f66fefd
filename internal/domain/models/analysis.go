package models

// AnalysisResult is what one analysis cycle returns to the caller: the
// rendered report block plus the structured pieces it was built from.
// Structured fields are nil when the underlying history was insufficient;
// the report then carries the reason instead.
type AnalysisResult struct {
	Symbol            string          `json:"symbol"`
	Strategy          string          `json:"strategy"`
	Price             float64         `json:"price"`
	Volatility        float64         `json:"volatility"`
	Signal            Signal          `json:"signal"`
	Regime            *RegimeResult   `json:"regime,omitempty"`
	Stats             *RollingStats   `json:"stats,omitempty"`
	CurrentPercentile *float64        `json:"current_percentile,omitempty"`
	Percentiles       map[int]float64 `json:"percentiles,omitempty"` // merged 24h-ago ladder
	Report            string          `json:"report"`
}

package cache

import (
	"context"
	"fmt"
	"time"
)

// BytesCache stores raw bytes with a TTL. Used to cap the cost of repeated
// analysis requests for the same (symbol, strategy) within one refresh
// interval.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// AnalysisKey builds the cache key for one analysis request.
func AnalysisKey(symbol, strategy string) string {
	return fmt.Sprintf("analysis:%s:%s", symbol, strategy)
}

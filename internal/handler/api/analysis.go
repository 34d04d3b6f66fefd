package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/frontboat/agent-gmx-sub000/internal/services/cache"
	"github.com/frontboat/agent-gmx-sub000/internal/usecase"
	xhttp "github.com/frontboat/agent-gmx-sub000/pkg/http"
	xlogger "github.com/frontboat/agent-gmx-sub000/pkg/logger"
	"github.com/frontboat/agent-gmx-sub000/pkg/util"
)

// AnalyzeRequest is the POST /api/analyze body.
type AnalyzeRequest struct {
	Symbol     string  `json:"symbol" validate:"required"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	Volatility float64 `json:"volatility" validate:"gte=0"`
	Strategy   string  `json:"strategy" validate:"omitempty,oneof=regime percentile"`
}

// AnalysisHandler exposes the analysis engine over HTTP.
type AnalysisHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.Analyzer
	cache    cache.BytesCache
	cacheTTL time.Duration
}

var _ xhttp.Handler = (*AnalysisHandler)(nil)

func NewAnalysisHandler(logger *xlogger.Logger, analyzer *usecase.Analyzer, c cache.BytesCache, cacheTTL time.Duration) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, analyzer: analyzer, cache: c, cacheTTL: cacheTTL}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.GET("/signals", h.Signals)
	g.GET("/regime", h.Regime)
	g.GET("/health", h.Health)
}

func (h *AnalysisHandler) Analyze(c echo.Context) error {
	req := &AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()

	// The cache absorbs repeated requests within one forecast refresh
	// interval; staleness is bounded by the TTL.
	key := cache.AnalysisKey(req.Symbol, req.Strategy)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(ctx, key); err == nil && ok {
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	res, err := h.analyzer.Analyze(ctx, req.Symbol, req.Price, req.Volatility, req.Strategy)
	if err != nil {
		h.logger.Warn("analyze rejected", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	if h.cache != nil {
		if b, merr := json.Marshal(envelope(res)); merr == nil {
			if cerr := h.cache.SetBytes(ctx, key, b, h.cacheTTL); cerr != nil {
				h.logger.Debug("analysis cache write failed", xlogger.Error(cerr))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// Signals returns the tracking log, optionally filtered by a `since` query
// parameter (RFC3339 or unix seconds).
func (h *AnalysisHandler) Signals(c echo.Context) error {
	entries := h.analyzer.TrackingLog(c.Request().Context())
	since := util.ParseTimeDefault(c.QueryParam("since"), time.Time{})
	if !since.IsZero() {
		filtered := entries[:0]
		for _, e := range entries {
			if !e.Timestamp.Before(since) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	return xhttp.SuccessResponse(c, entries)
}

// Regime returns the per-asset transition records, or a single asset's
// current record when a `symbol` query parameter is given.
func (h *AnalysisHandler) Regime(c echo.Context) error {
	if symbol := c.QueryParam("symbol"); symbol != "" {
		last, ok := h.analyzer.LastTransition(symbol)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no regime recorded for %s", symbol))
		}
		return xhttp.SuccessResponse(c, last)
	}
	return xhttp.SuccessResponse(c, h.analyzer.Transitions())
}

func (h *AnalysisHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// envelope mirrors what SuccessResponse writes, so cache hits serve an
// identical body.
func envelope(data interface{}) xhttp.APIResponse {
	return xhttp.APIResponse{Status: 200, Message: "OK", Data: data}
}

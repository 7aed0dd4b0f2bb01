package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/kiralabs/launchpad/internal/ai"
	"github.com/kiralabs/launchpad/internal/amm"
	"github.com/kiralabs/launchpad/internal/flags"
	"github.com/kiralabs/launchpad/internal/history"
	"github.com/kiralabs/launchpad/internal/launchpad"
	"github.com/kiralabs/launchpad/internal/workflow"
)

const defaultDecimals = 9

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Engine       *launchpad.Engine
	Flags        *flags.Store   // Redis-backed feature flags store
	AI           *ai.Agent      // AI agent for natural language queries
	AIBaseConfig ai.AgentConfig // Base configuration for AI agents
	DevMode      bool           // Enable detailed error responses in development
	Logger       *logrus.Logger // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// domainErr maps engine errors onto HTTP codes. Run-level step failures never
// reach here: a run that started always returns its record.
func (h *Handlers) domainErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, workflow.ErrInvalidInput),
		errors.Is(err, amm.ErrInvalidAmount),
		errors.Is(err, amm.ErrInvalidSlippage):
		return h.err(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, amm.ErrPoolNotFound):
		return h.err(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, amm.ErrInvalidPool):
		return h.err(c, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, launchpad.ErrWorkflowDisabled):
		return h.err(c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		h.Logger.WithError(err).Error("request failed")
		return h.err(c, http.StatusInternalServerError, "internal error", map[string]any{"err": err.Error()})
	}
}

func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true, Wallet: h.Engine.WalletAddress()})
}

// IssueToken launches a new token. The response carries the full run record:
// a step can fail after earlier steps confirmed, and the client needs to see
// exactly how far the sequence got.
func (h *Handlers) IssueToken(c echo.Context) error {
	var req IssueRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	decimals := uint8(defaultDecimals)
	if req.Decimals != nil {
		decimals = *req.Decimals
	}

	params := workflow.IssuanceParams{
		Name:     strings.TrimSpace(req.Name),
		Symbol:   strings.TrimSpace(req.Symbol),
		URI:      strings.TrimSpace(req.URI),
		Decimals: decimals,
		Supply:   req.Supply,
	}

	result, err := h.Engine.IssueToken(c.Request().Context(), params)
	if err != nil {
		return h.domainErr(c, err)
	}

	return c.JSON(http.StatusOK, IssueResponse{
		Run:      result.Run,
		Mint:     result.Mint,
		Decimals: result.Decimals,
	})
}

// QuoteSwap prices a trade without executing it.
func (h *Handlers) QuoteSwap(c echo.Context) error {
	var req launchpad.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	quote, err := h.Engine.QuoteSwap(ctx, req)
	if err != nil {
		return h.domainErr(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// ExecuteSwap quotes and executes a swap in one call.
func (h *Handlers) ExecuteSwap(c echo.Context) error {
	var req launchpad.SwapRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	result, err := h.Engine.ExecuteSwap(c.Request().Context(), req)
	if err != nil {
		return h.domainErr(c, err)
	}

	return c.JSON(http.StatusOK, SwapResponse{
		Run:   result.Run,
		Quote: result.Quote,
		Pool:  result.Pool,
	})
}

// RecentRuns returns the most recent workflow runs with optional limit parameter
// Accepts limit query parameter (default: 100, range: 1-100)
func (h *Handlers) RecentRuns(c echo.Context) error {
	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 100 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Engine.GetRecentRuns(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get runs", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GetRun returns one run record by id, 404 if unknown.
func (h *Handlers) GetRun(c echo.Context) error {
	runID := strings.TrimSpace(c.Param("id"))
	if runID == "" {
		return h.err(c, http.StatusBadRequest, "invalid run id", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	run, err := h.Engine.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, history.ErrRunNotFound) {
			return h.err(c, http.StatusNotFound, "run not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get run", nil)
	}
	return c.JSON(http.StatusOK, run)
}

// FlagsUpsert creates or updates a feature flag with the given key and value
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates an existing feature flag with the given key
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a feature flag by its key
// Returns 404 if flag doesn't exist
func (h *Handlers) FlagsGet(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns all feature flags in the system
func (h *Handlers) FlagsList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a feature flag by its key
// Returns 204 No Content on successful deletion
func (h *Handlers) FlagsDelete(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

// AIAsk processes natural language questions about launch and swap history
// Supports optional model override for one-off requests
func (h *Handlers) AIAsk(c echo.Context) error {
	if h.AI == nil {
		return h.err(c, http.StatusBadRequest, "ai is not configured", nil)
	}

	var req AIAskRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return h.err(c, http.StatusBadRequest, "question is required", map[string]any{"question": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 45*time.Second)
	defer cancel()

	start := time.Now()

	agent := h.AI
	if m := strings.TrimSpace(req.Model); m != "" {
		cfg := h.AIBaseConfig
		cfg.Model = m
		tmp, err := ai.NewAgent(ctx, cfg)
		if err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to create ai agent", nil)
		}
		agent = tmp
		defer func() {
			_ = tmp.Close()
		}()
	}

	res, err := agent.Ask(ctx, req.Question)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "ai ask failed", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, AIAskResponse{SQL: res.SQL, Answer: res.Answer, TookMs: time.Since(start).Milliseconds()})
}

package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/elys-network/basket/internal/basket"
	"github.com/elys-network/basket/internal/engine"
	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/imbalance"
	"github.com/elys-network/basket/internal/logger"
	"github.com/elys-network/basket/internal/metrics"
	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/state"
	"github.com/elys-network/basket/internal/utils"
	"github.com/elys-network/basket/internal/vector"
)

var webLogger = logger.GetForComponent("web_server")

const (
	defaultQuoteLimit = 20
	maxQuoteLimit     = 500
	maxBodyBytes      = 1 << 20
)

// WebServer exposes the basket engine over HTTP
type WebServer struct {
	router *mux.Router
	port   string
	engine *engine.Engine
	server *http.Server
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, eng *engine.Engine) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		engine: eng,
	}

	server.setupRoutes()
	return server
}

// Handler returns the routed handler with middleware applied
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")
	ws.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// stateless math
	api.HandleFunc("/imbalance", ws.handleImbalance).Methods("POST")
	api.HandleFunc("/penalty", ws.handlePenalty).Methods("POST")
	api.HandleFunc("/evaluate", ws.handleEvaluate).Methods("POST")

	// quotes against the stored basket
	api.HandleFunc("/quote/mint", ws.handleQuoteMint).Methods("POST")
	api.HandleFunc("/quote/redeem", ws.handleQuoteRedeem).Methods("POST")
	api.HandleFunc("/quotes", ws.handleRecentQuotes).Methods("GET")
	api.HandleFunc("/quotes/{id}", ws.handleGetQuote).Methods("GET")
	api.HandleFunc("/stats", ws.handleStats).Methods("GET")

	api.HandleFunc("/params", ws.handleGetParams).Methods("GET")
	api.HandleFunc("/params", ws.handlePutParams).Methods("PUT")
	api.HandleFunc("/params/history", ws.handleParamsHistory).Methods("GET")
	api.HandleFunc("/smoothing", ws.handleSmoothing).Methods("GET")
	api.HandleFunc("/basket", ws.handleBasket).Methods("GET")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
	ws.router.Use(metrics.Middleware)
}

// Start begins serving and blocks until the server stops. A clean Shutdown
// returns nil.
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	ws.server = &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	if ws.server == nil {
		return nil
	}
	return ws.server.Shutdown(ctx)
}

// handleHealth reports store connectivity and runtime stats
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	storeHealthy := true
	if err := ws.engine.Store().Ping(r.Context()); err != nil {
		webLogger.Warn().Err(err).Msg("Store ping failed")
		storeHealthy = false
	}

	var lastBlock uint64
	if sm, err := ws.engine.Store().Smoothing(r.Context()); err == nil {
		lastBlock = sm.LastBlock
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !storeHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "basketd",
			"version": "1.0.0",
		},
		"basket_status": map[string]interface{}{
			"store_healthy": storeHealthy,
			"config_name":   ws.engine.ConfigName(),
			"last_block":    lastBlock,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

type imbalanceRequest struct {
	Inventory vector.Vector `json:"inventory"`
	Prices    vector.Vector `json:"prices"`
	Weights   vector.Vector `json:"weights"`
}

func (ws *WebServer) handleImbalance(w http.ResponseWriter, r *http.Request) {
	var req imbalanceRequest
	if !ws.decode(w, r, &req) {
		return
	}
	analysis, err := engine.Analyze(req.Inventory, req.Prices, req.Weights)
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, analysis)
}

type penaltyRequest struct {
	Before fpdecimal.FPDecimal `json:"before"`
	After  fpdecimal.FPDecimal `json:"after"`
	Params *penalty.Params     `json:"params,omitempty"` // nil uses the active set
}

func (ws *WebServer) handlePenalty(w http.ResponseWriter, r *http.Request) {
	var req penaltyRequest
	if !ws.decode(w, r, &req) {
		return
	}
	params, ok := ws.paramsOrActive(w, r, req.Params)
	if !ok {
		return
	}
	pen, err := penalty.Penalty(req.Before, req.After, params)
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"penalty": pen,
		"params":  params,
	})
}

type evaluateRequest struct {
	Inventory vector.Vector   `json:"inventory"`
	Delta     vector.Vector   `json:"delta"`
	Prices    vector.Vector   `json:"prices"`
	Weights   vector.Vector   `json:"weights"`
	Params    *penalty.Params `json:"params,omitempty"`
}

func (ws *WebServer) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !ws.decode(w, r, &req) {
		return
	}
	params, ok := ws.paramsOrActive(w, r, req.Params)
	if !ok {
		return
	}
	ev, err := engine.Evaluate(req.Inventory, req.Delta, req.Prices, req.Weights, params)
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, ev)
}

func (ws *WebServer) handleQuoteMint(w http.ResponseWriter, r *http.Request) {
	var req engine.MintRequest
	if !ws.decode(w, r, &req) {
		return
	}
	if executeRequested(r) {
		rec, err := ws.engine.ExecuteMint(r.Context(), req)
		if err != nil {
			ws.writeError(w, err)
			return
		}
		ws.writeJSONResponse(w, http.StatusCreated, rec)
		return
	}
	quote, err := ws.engine.PreviewMint(r.Context(), req)
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, quote)
}

func (ws *WebServer) handleQuoteRedeem(w http.ResponseWriter, r *http.Request) {
	var req engine.RedeemRequest
	if !ws.decode(w, r, &req) {
		return
	}
	if executeRequested(r) {
		rec, err := ws.engine.ExecuteRedeem(r.Context(), req)
		if err != nil {
			ws.writeError(w, err)
			return
		}
		ws.writeJSONResponse(w, http.StatusCreated, rec)
		return
	}
	quote, err := ws.engine.PreviewRedeem(r.Context(), req)
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, quote)
}

// handleRecentQuotes returns executed quotes, newest first
func (ws *WebServer) handleRecentQuotes(w http.ResponseWriter, r *http.Request) {
	limit, ok := ws.limitParam(w, r)
	if !ok {
		return
	}
	quotes, err := ws.engine.Store().RecentQuotes(r.Context(), limit)
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
	})
}

func (ws *WebServer) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := ws.engine.Store().GetQuote(r.Context(), id)
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, rec)
}

func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := ws.engine.Store().QuoteStats(r.Context())
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, stats)
}

func (ws *WebServer) handleGetParams(w http.ResponseWriter, r *http.Request) {
	pv, err := ws.engine.ActiveParams(r.Context())
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, pv)
}

func (ws *WebServer) handlePutParams(w http.ResponseWriter, r *http.Request) {
	var params penalty.Params
	if !ws.decode(w, r, &params) {
		return
	}
	pv, err := ws.engine.SetParams(r.Context(), params)
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, pv)
}

func (ws *WebServer) handleParamsHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := ws.limitParam(w, r)
	if !ok {
		return
	}
	history, err := ws.engine.Store().ParamsHistory(r.Context(), ws.engine.ConfigName(), limit)
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"versions": history,
		"count":    len(history),
	})
}

func (ws *WebServer) handleSmoothing(w http.ResponseWriter, r *http.Request) {
	sm, err := ws.engine.Store().Smoothing(r.Context())
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, sm)
}

func (ws *WebServer) handleBasket(w http.ResponseWriter, r *http.Request) {
	b, err := ws.engine.Store().BasketState(r.Context())
	if err != nil {
		ws.writeError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, b)
}

func (ws *WebServer) paramsOrActive(w http.ResponseWriter, r *http.Request, given *penalty.Params) (penalty.Params, bool) {
	if given != nil {
		return *given, true
	}
	pv, err := ws.engine.ActiveParams(r.Context())
	if err != nil {
		ws.writeError(w, err)
		return penalty.Params{}, false
	}
	return pv.Params, true
}

func (ws *WebServer) limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return defaultQuoteLimit, true
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > maxQuoteLimit {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid limit parameter")
		return 0, false
	}
	return limit, true
}

func executeRequested(r *http.Request) bool {
	execute, _ := strconv.ParseBool(r.URL.Query().Get("execute"))
	return execute
}

// decode reads a JSON body into dst, writing a 400 on failure
func (ws *WebServer) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, state.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fpdecimal.ErrMalformedInput),
		errors.Is(err, vector.ErrLengthMismatch),
		errors.Is(err, imbalance.ErrNegativeComponent),
		errors.Is(err, penalty.ErrInvalidParams),
		errors.Is(err, utils.ErrInvalidPrecision),
		errors.Is(err, utils.ErrAmountNil),
		errors.Is(err, utils.ErrAmountNegative),
		errors.Is(err, utils.ErrUnknownDenom),
		errors.Is(err, utils.ErrMissingPrice),
		errors.Is(err, engine.ErrNegativeInventory),
		errors.Is(err, basket.ErrEmptyTrade):
		return http.StatusBadRequest
	case errors.Is(err, penalty.ErrStaleBlock):
		return http.StatusConflict
	case errors.Is(err, basket.ErrEmptyBasket),
		errors.Is(err, basket.ErrInsufficientTokens),
		errors.Is(err, basket.ErrInsufficientInventory),
		errors.Is(err, basket.ErrImbalanceTooHigh),
		errors.Is(err, basket.ErrPenaltyExceedsValue),
		errors.Is(err, fpdecimal.ErrDivisionByZero),
		errors.Is(err, fpdecimal.ErrOverflow),
		errors.Is(err, fpdecimal.ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError logs server faults and reports the error to the client
func (ws *WebServer) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		webLogger.Error().Err(err).Msg("Request failed")
		ws.writeErrorResponse(w, status, "Internal server error")
		return
	}
	ws.writeErrorResponse(w, status, err.Error())
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

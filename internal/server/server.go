// Package server exposes the cost estimator as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/tuition-calculator/internal/breakdown"
	"github.com/iwvelando/tuition-calculator/internal/estimate"
	"github.com/iwvelando/tuition-calculator/internal/rates"
	"github.com/iwvelando/tuition-calculator/pkg/constants"
	"github.com/iwvelando/tuition-calculator/pkg/format"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Reloader replaces the committed rate snapshot.
type Reloader interface {
	Load(ctx context.Context) (*rates.Snapshot, error)
}

// Options configure NewHandler.
type Options struct {
	Logger         *zap.Logger
	Store          *rates.Store
	Reloader       Reloader
	MaxRequestSize int64
	Version        string
	Locale         string
	Namespace      string
	Registry       *prometheus.Registry
}

type handler struct {
	logger         *zap.Logger
	store          *rates.Store
	reloader       Reloader
	maxRequestSize int64
	version        string
	locale         language.Tag
	metrics        *Metrics
}

// NewHandler constructs the HTTP handler that serves the quote API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxRequestSize := opts.MaxRequestSize
	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = constants.DefaultMetricsNamespace
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	store := opts.Store
	if store == nil {
		store = rates.NewStore()
	}

	h := &handler{
		logger:         logger,
		store:          store,
		reloader:       opts.Reloader,
		maxRequestSize: maxRequestSize,
		version:        version,
		locale:         format.Locale(opts.Locale),
		metrics:        NewMetrics(namespace, registry),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.handleHealth)
	r.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/options", h.handleOptions)
		r.Post("/quote", h.handleQuote)
		r.Post("/reload", h.handleReload)
	})

	return r
}

type quoteResponse struct {
	Available bool                       `json:"available"`
	Quote     *quoteBody                 `json:"quote,omitempty"`
	Breakdown breakdown.DisplayBreakdown `json:"breakdown"`
}

type quoteBody struct {
	Selection         estimate.Selection `json:"selection"`
	TuitionTotal      decimal.Decimal    `json:"tuitionTotal"`
	TuitionByCategory []categoryBody     `json:"tuitionByCategory"`
	FoodAndHousing    decimal.Decimal    `json:"foodAndHousing"`
	HallCost          decimal.Decimal    `json:"hallCost"`
	MealCost          decimal.Decimal    `json:"mealCost"`
	Transportation    decimal.Decimal    `json:"transportation"`
	Miscellaneous     decimal.Decimal    `json:"miscellaneous"`
	Books             decimal.Decimal    `json:"books"`
	DirectTotal       decimal.Decimal    `json:"directTotal"`
	IndirectTotal     decimal.Decimal    `json:"indirectTotal"`
	GrandTotal        decimal.Decimal    `json:"grandTotal"`
}

type categoryBody struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type optionsResponse struct {
	Levels      []string `json:"levels"`
	Residencies []string `json:"residencies"`
	Housing     []string `json:"housing"`
	Terms       []string `json:"terms"`
	MinHours    int      `json:"minHours"`
	MaxHours    int      `json:"maxHours"`
	Halls       []string `json:"halls"`
	MealPlans   []string `json:"mealPlans"`
}

func (h *handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)

	var sel estimate.Selection
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sel); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), "server.handleQuote")
			return
		}
		h.metrics.Quotes.WithLabelValues(outcomeInvalid).Inc()
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode selection: %v", err), "server.handleQuote")
		return
	}
	sel = sel.Normalized()

	if err := estimate.Validate(sel); err != nil {
		h.metrics.Quotes.WithLabelValues(outcomeInvalid).Inc()
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleQuote")
		return
	}

	snap := h.store.Current()
	if snap == nil {
		h.metrics.Quotes.WithLabelValues(outcomeNoData).Inc()
		h.respondError(w, http.StatusServiceUnavailable, "rate tables are not loaded", "server.handleQuote")
		return
	}

	q, err := estimate.Compute(h.logger, sel, snap)
	if errors.Is(err, estimate.ErrIncomplete) {
		h.metrics.Quotes.WithLabelValues(outcomeIncomplete).Inc()
		h.writeJSON(w, http.StatusOK, quoteResponse{Breakdown: breakdown.Unavailable()})
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleQuote")
		return
	}

	h.metrics.Quotes.WithLabelValues(outcomeOK).Inc()
	h.writeJSON(w, http.StatusOK, quoteResponse{
		Available: true,
		Quote:     newQuoteBody(q),
		Breakdown: breakdown.Format(q, breakdown.Options{Locale: h.locale}),
	})
}

func newQuoteBody(q estimate.Quote) *quoteBody {
	categories := make([]categoryBody, 0, len(q.TuitionByCategory))
	for _, c := range q.TuitionByCategory {
		categories = append(categories, categoryBody{Name: c.Name, Amount: c.Amount})
	}
	return &quoteBody{
		Selection:         q.Selection,
		TuitionTotal:      q.TuitionTotal,
		TuitionByCategory: categories,
		FoodAndHousing:    q.FoodAndHousing,
		HallCost:          q.HallCost,
		MealCost:          q.MealCost,
		Transportation:    q.Transportation,
		Miscellaneous:     q.Miscellaneous,
		Books:             q.Books,
		DirectTotal:       q.DirectTotal,
		IndirectTotal:     q.IndirectTotal,
		GrandTotal:        q.GrandTotal,
	}
}

func (h *handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	resp := optionsResponse{
		Levels:      []string{constants.LevelUndergraduate, constants.LevelGraduate},
		Residencies: []string{constants.ResidencyResident, constants.ResidencyNonresident},
		Housing:     []string{constants.HousingHome, constants.HousingDorm, constants.HousingOffCampus},
		Terms:       []string{constants.TermFallSpring, constants.TermSingle},
		MinHours:    constants.MinHours,
		MaxHours:    constants.MaxHours,
		Halls:       []string{},
		MealPlans:   []string{constants.MealPlanNone},
	}
	if snap := h.store.Current(); snap != nil {
		resp.Halls = snap.Halls()
		resp.MealPlans = append(resp.MealPlans, snap.MealPlans()...)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		h.respondError(w, http.StatusNotImplemented, "reloading is not configured", "server.handleReload")
		return
	}

	snap, err := h.reloader.Load(r.Context())
	if errors.Is(err, rates.ErrStaleGeneration) || errors.Is(err, context.Canceled) {
		h.metrics.Reloads.WithLabelValues("superseded").Inc()
		h.respondError(w, http.StatusConflict, "reload superseded by a newer one", "server.handleReload")
		return
	}
	if err != nil {
		h.metrics.Reloads.WithLabelValues("error").Inc()
		h.respondError(w, http.StatusBadGateway, fmt.Sprintf("failed to reload rate tables: %v", err), "server.handleReload")
		return
	}

	h.metrics.Reloads.WithLabelValues("ok").Inc()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"generation":  h.store.Generation(),
		"tuitionRows": snap.TuitionRows(),
		"halls":       len(snap.Halls()),
		"mealPlans":   len(snap.MealPlans()),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.store.Current() == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := routeUnmatched
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		h.metrics.ReqDur.WithLabelValues(r.Method, route).Observe(durationMillis(time.Since(start)))
	})
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.String("op", op), zap.Int("status", status))
	} else {
		h.logger.Debug(msg, zap.String("op", op), zap.Int("status", status))
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("failed to write response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

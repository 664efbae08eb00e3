package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/tuition-calculator/internal/breakdown"
	"github.com/iwvelando/tuition-calculator/internal/rates"
	"github.com/iwvelando/tuition-calculator/pkg/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	handler  http.Handler
	store    *rates.Store
	registry *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store, loader := testutil.LoadFixtures(t)

	registry := prometheus.NewRegistry()
	handler := NewHandler(Options{
		Logger:   zap.NewNop(),
		Store:    store,
		Reloader: loader,
		Version:  "1.2.3",
		Registry: registry,
	})
	return fixture{handler: handler, store: store, registry: registry}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

type quoteResult struct {
	Available bool `json:"available"`
	Quote     *struct {
		TuitionTotal  decimal.Decimal `json:"tuitionTotal"`
		DirectTotal   decimal.Decimal `json:"directTotal"`
		IndirectTotal decimal.Decimal `json:"indirectTotal"`
		GrandTotal    decimal.Decimal `json:"grandTotal"`
	} `json:"quote"`
	Breakdown breakdown.DisplayBreakdown `json:"breakdown"`
}

func TestHandleQuoteHome(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/api/quote",
		`{"level":"undergraduate","residency":"resident","hours":15,"housing":"home","term":"fallspring"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp quoteResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Available)
	require.NotNil(t, resp.Quote)
	require.True(t, resp.Quote.TuitionTotal.Equal(decimal.NewFromInt(6000)), resp.Quote.TuitionTotal.String())
	require.True(t, resp.Quote.DirectTotal.Add(resp.Quote.IndirectTotal).Equal(resp.Quote.GrandTotal))
	require.Len(t, resp.Breakdown.Groups, 2)
	require.Equal(t, breakdown.DirectTitle, resp.Breakdown.Groups[0].Title)

	require.Equal(t, float64(1), promtestutil.ToFloat64(f.metricsQuotes(t).WithLabelValues(outcomeOK)))
}

func TestHandleQuoteDorm(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/api/quote",
		`{"level":"undergraduate","residency":"resident","hours":15,"housing":"dorm","term":"single","selectedHall":"Turner Hall","selectedMeal":"Plan A"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp quoteResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Available)
	// 3000 tuition plus one semester of hall (2100) and meal (1200).
	testutil.AssertAmount(t, "directTotal", resp.Quote.DirectTotal, "6300")
}

func TestHandleQuoteIncomplete(t *testing.T) {
	f := newFixture(t)

	// 18 hours is within bounds but missing from the fixture feed.
	rr := f.do(t, http.MethodPost, "/api/quote",
		`{"level":"undergraduate","residency":"resident","hours":18,"housing":"home","term":"fallspring"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp quoteResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.False(t, resp.Available)
	require.Nil(t, resp.Quote)
	require.Equal(t, "N/A", resp.Breakdown.Headline)
	require.Equal(t, float64(1), promtestutil.ToFloat64(f.metricsQuotes(t).WithLabelValues(outcomeIncomplete)))
}

func TestHandleQuoteInvalid(t *testing.T) {
	f := newFixture(t)

	cases := map[string]string{
		"malformed json":    `{"level":`,
		"unknown field":     `{"level":"undergraduate","bogus":1}`,
		"hours too high":    `{"level":"undergraduate","residency":"resident","hours":40,"housing":"home","term":"single"}`,
		"dorm without hall": `{"level":"undergraduate","residency":"resident","hours":15,"housing":"dorm","term":"single"}`,
		"unknown housing":   `{"level":"undergraduate","residency":"resident","hours":15,"housing":"tent","term":"single"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/api/quote", body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			require.NotEmpty(t, resp["error"])
		})
	}
}

func TestHandleQuoteTooLarge(t *testing.T) {
	store := rates.NewStore()
	handler := NewHandler(Options{Logger: zap.NewNop(), Store: store, MaxRequestSize: 16})

	body := bytes.Repeat([]byte(" "), 64)
	req := httptest.NewRequest(http.MethodPost, "/api/quote", bytes.NewReader(append(body, []byte(`{}`)...)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code, rr.Body.String())
}

func TestHandleQuoteNoSnapshot(t *testing.T) {
	handler := NewHandler(Options{Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodPost, "/api/quote",
		strings.NewReader(`{"level":"undergraduate","residency":"resident","hours":15,"housing":"home","term":"single"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHandleOptions(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/options", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp optionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, []string{"Lucio Hall (Co-ed)", "Turner Hall"}, resp.Halls)
	require.Equal(t, []string{"none", "Plan A", "Plan B"}, resp.MealPlans)
	require.Contains(t, resp.Housing, "off campus")
	require.Equal(t, 1, resp.MinHours)
	require.Equal(t, 21, resp.MaxHours)
}

func TestHandleReload(t *testing.T) {
	f := newFixture(t)
	before := f.store.Generation()

	rr := f.do(t, http.MethodPost, "/api/reload", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Greater(t, f.store.Generation(), before)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.EqualValues(t, 2, resp["halls"])
}

type failingReloader struct{ err error }

func (r failingReloader) Load(context.Context) (*rates.Snapshot, error) { return nil, r.err }

func TestHandleReloadErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"source failure", errors.New("feed unreachable"), http.StatusBadGateway},
		{"superseded", context.Canceled, http.StatusConflict},
		{"stale", rates.ErrStaleGeneration, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHandler(Options{Logger: zap.NewNop(), Reloader: failingReloader{err: tc.err}})
			req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			require.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestHandleReloadNotConfigured(t *testing.T) {
	handler := NewHandler(Options{Logger: zap.NewNop()})
	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotImplemented, rr.Code)
}

func TestHandleVersion(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"version":"1.2.3"}`, rr.Body.String())
}

func TestHandleVersionDefault(t *testing.T) {
	handler := NewHandler(Options{})
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.JSONEq(t, `{"version":"dev"}`, rr.Body.String())
}

func TestHealth(t *testing.T) {
	empty := NewHandler(Options{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	empty.ServeHTTP(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	f := newFixture(t)
	rr = f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/version", "")

	rr := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "tuition_calculator_http_request_duration_ms")
}

func TestMetricsUnmatchedRouteLabel(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/nope/1", "/nope/2", "/wp-admin.php"} {
		rr := f.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusNotFound, rr.Code)
	}

	rr := f.do(t, http.MethodGet, "/metrics", "")
	body := rr.Body.String()
	require.Contains(t, body, `route="unmatched"`)
	require.NotContains(t, body, "/nope/1")
	require.NotContains(t, body, "wp-admin")
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/quote", "")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

// metricsQuotes finds the registered quotes counter so tests can read it.
func (f fixture) metricsQuotes(t *testing.T) *prometheus.CounterVec {
	t.Helper()
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tuition_calculator",
		Name:      "quotes_total",
		Help:      "Quotes computed, by outcome.",
	}, []string{"outcome"})
	err := f.registry.Register(quotes)
	var already prometheus.AlreadyRegisteredError
	require.True(t, errors.As(err, &already), "expected quotes counter to be registered")
	existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
	require.True(t, ok)
	return existing
}

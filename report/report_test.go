package report

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guardkit/guardkit/errors"
	"github.com/guardkit/guardkit/guard"
	"github.com/guardkit/guardkit/resilience"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestGuard(t *testing.T) *guard.Guard {
	t.Helper()
	g, err := guard.New(guard.Config{Service: "billing"})
	if err != nil {
		t.Fatalf("unexpected error building guard: %v", err)
	}
	return g
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthzHealthy(t *testing.T) {
	g := newTestGuard(t)
	g.Collector().RecordRequest("charge", 50*time.Millisecond, false)

	w := serve(Router(g), http.MethodGet, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("expected status healthy, got %q", body.Status)
	}
}

func TestHealthzUnhealthyReturns503(t *testing.T) {
	g := newTestGuard(t)
	for i := 0; i < 10; i++ {
		g.Collector().RecordRequest("charge", 10*time.Millisecond, true)
	}

	w := serve(Router(g), http.MethodGet, "/healthz")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestMetricsSummary(t *testing.T) {
	g := newTestGuard(t)
	g.Collector().RecordRequest("charge", 20*time.Millisecond, false)
	g.Collector().RecordRequest("refund", 30*time.Millisecond, true)
	g.Collector().RecordCacheHit()

	w := serve(Router(g), http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Requests struct {
			Total       int64            `json:"total"`
			ByOperation map[string]int64 `json:"by_operation"`
		} `json:"requests"`
		Errors struct {
			Total int64 `json:"total"`
		} `json:"errors"`
		Cache struct {
			Hits int64 `json:"hits"`
		} `json:"cache"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Requests.Total != 2 {
		t.Errorf("expected 2 requests, got %d", body.Requests.Total)
	}
	if body.Requests.ByOperation["charge"] != 1 {
		t.Errorf("expected 1 charge request, got %d", body.Requests.ByOperation["charge"])
	}
	if body.Errors.Total != 1 {
		t.Errorf("expected 1 error, got %d", body.Errors.Total)
	}
	if body.Cache.Hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", body.Cache.Hits)
	}
}

func TestBreakerSnapshot(t *testing.T) {
	g := newTestGuard(t)

	w := serve(Router(g), http.MethodGet, "/breaker")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Service string `json:"service"`
		State   string `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Service != "billing" {
		t.Errorf("expected service billing, got %q", body.Service)
	}
	if body.State != "closed" {
		t.Errorf("expected state closed, got %q", body.State)
	}
}

func TestVersionEndpoint(t *testing.T) {
	g := newTestGuard(t)

	w := serve(Router(g), http.MethodGet, "/version")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if _, ok := body["version"]; !ok {
		t.Error("expected version field in response")
	}
	if _, ok := body["go_version"]; !ok {
		t.Error("expected go_version field in response")
	}
}

func TestRequestIDGenerated(t *testing.T) {
	g := newTestGuard(t)

	w := serve(Router(g), http.MethodGet, "/version")
	if id := w.Header().Get("X-Request-Id"); id == "" {
		t.Error("expected X-Request-Id header to be set")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	g := newTestGuard(t)
	router := Router(g)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if id := w.Header().Get("X-Request-Id"); id != "fixed-id" {
		t.Errorf("expected incoming request id to be preserved, got %q", id)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode errors.ErrorCode
	}{
		{"rate limited", resilience.ErrRateLimited, errors.ErrCodeRateLimited},
		{"circuit open sentinel", resilience.ErrCircuitOpen, errors.ErrCodeCircuitOpen},
		{"circuit open typed", &resilience.CircuitOpenError{Service: "billing"}, errors.ErrCodeCircuitOpen},
		{"canceled", context.Canceled, errors.ErrCodeTimeout},
		{"deadline", context.DeadlineExceeded, errors.ErrCodeTimeout},
		{"unknown", stderrors.New("boom"), errors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapError(tt.err)
			if appErr == nil {
				t.Fatal("expected non-nil AppError")
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, appErr.Code)
			}
			if !stderrors.Is(appErr, tt.err) {
				t.Error("expected original error in the chain")
			}
		})
	}
}

func TestMapErrorNil(t *testing.T) {
	if appErr := MapError(nil); appErr != nil {
		t.Errorf("expected nil, got %v", appErr)
	}
}

func TestMapErrorPassthrough(t *testing.T) {
	orig := errors.RateLimited()
	if got := MapError(orig); got != orig {
		t.Errorf("expected AppError passthrough, got %v", got)
	}
}

func TestMapErrorTypedCircuitOpenKeepsService(t *testing.T) {
	appErr := MapError(&resilience.CircuitOpenError{Service: "billing"})
	if appErr.Details["service"] != "billing" {
		t.Errorf("expected service detail billing, got %v", appErr.Details["service"])
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteError(c, resilience.ErrRateLimited)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	var body errors.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error.Code != errors.ErrCodeRateLimited {
		t.Errorf("expected code %s, got %s", errors.ErrCodeRateLimited, body.Error.Code)
	}
	if !body.Error.Retryable {
		t.Error("expected retryable error")
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("liveness status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != healthStatusOK {
		t.Errorf("status = %q, want %q", resp.Status, healthStatusOK)
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	h := NewHealthChecker(nil)

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("readiness status = %d, want %d", rec.Code, http.StatusOK)
	}

	h.SetReady(false)
	if h.IsReady() {
		t.Error("expected IsReady to be false")
	}

	rec = httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Checks["ready"] != healthStatusNotReady {
		t.Errorf("ready check = %q, want %q", resp.Checks["ready"], healthStatusNotReady)
	}
}

func TestHealthChecker_ReadinessAfterShutdown(t *testing.T) {
	sc := newTestContext(t, &scriptedModel{}, Config{Timezone: "UTC"})
	h := NewHealthChecker(sc)

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHealthChecker_Detailed(t *testing.T) {
	h := NewHealthChecker(nil)

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("detailed status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp DetailedHealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Uptime == "" {
		t.Error("expected uptime to be set")
	}
}

func TestRoutes_AuthStatus(t *testing.T) {
	sc := newTestContext(t, &scriptedModel{}, Config{Timezone: "UTC"})
	mux := sc.Routes(NewHealthChecker(sc))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth-status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("auth-status code = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := resp["authenticated"]; !ok {
		t.Error("expected authenticated field in response")
	}
}

func TestRoutes_Root(t *testing.T) {
	sc := newTestContext(t, &scriptedModel{}, Config{Timezone: "UTC"})
	mux := sc.Routes(nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("root code = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["message"] == "" {
		t.Error("expected banner message")
	}
}

func TestTokenProviderForRequest(t *testing.T) {
	sc := newTestContext(t, &scriptedModel{}, Config{Timezone: "UTC"})

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set("Authorization", "Bearer abc")

	provider := sc.TokenProviderForRequest(req)
	if !provider.HasToken() {
		t.Error("expected bearer provider to report a token")
	}

	bare := httptest.NewRequest(http.MethodPost, "/chat", nil)
	if sc.TokenProviderForRequest(bare) != sc.fileTokens {
		t.Error("expected file token provider without Authorization header")
	}
}

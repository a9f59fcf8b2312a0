package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupMonitoredRouter(m *Monitor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})
	router.GET("/metrics", m.MetricsHandler())
	router.GET("/health", m.HealthHandler())
	return router
}

func TestMonitor_CountsRequestsAndErrors(t *testing.T) {
	m := NewMonitor()
	router := setupMonitoredRouter(m)

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/ok", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	req, _ := http.NewRequest("GET", "/boom", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req, _ = http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var body struct {
		Application struct {
			RequestCount  int64            `json:"request_count"`
			ErrorCount    int64            `json:"error_count"`
			EndpointCalls map[string]int64 `json:"endpoint_calls"`
		} `json:"application"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode metrics: %v", err)
	}

	if body.Application.RequestCount != 4 {
		t.Errorf("Expected 4 requests, got %d", body.Application.RequestCount)
	}

	if body.Application.ErrorCount != 1 {
		t.Errorf("Expected 1 error, got %d", body.Application.ErrorCount)
	}

	if body.Application.EndpointCalls["GET /ok"] != 3 {
		t.Errorf("Expected 3 calls to GET /ok, got %d", body.Application.EndpointCalls["GET /ok"])
	}
}

func TestMonitor_HealthReflectsChecks(t *testing.T) {
	m := NewMonitor()
	router := setupMonitoredRouter(m)

	m.RegisterHealthCheck("always_ok", func(ctx context.Context) error {
		return nil
	})

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	m.RegisterHealthCheck("always_down", func(ctx context.Context) error {
		return errors.New("dependency unreachable")
	})

	req, _ = http.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	if !json.Valid(w.Body.Bytes()) {
		t.Error("Expected valid JSON health payload")
	}
}

func TestMonitor_HealthChecksRunFresh(t *testing.T) {
	m := NewMonitor()
	router := setupMonitoredRouter(m)

	healthy := true
	m.RegisterHealthCheck("flaky", func(ctx context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	})

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	// The next request must observe the new state, not a cached result.
	healthy = false
	req, _ = http.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

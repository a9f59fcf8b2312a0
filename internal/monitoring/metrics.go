package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Monitor collects request counters and owns the registered health checks.
// It is constructed once and wired into the router explicitly.
type Monitor struct {
	mu            sync.RWMutex
	requestCount  int64
	errorCount    int64
	active        int64
	totalDuration time.Duration
	statusCodes   map[string]int64
	endpoints     map[string]int64
	startTime     time.Time
	lastRequest   time.Time

	checksMu sync.RWMutex
	checks   map[string]HealthCheckFunc
}

type HealthCheckFunc func(ctx context.Context) error

type HealthCheck struct {
	Name    string    `json:"name"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	LastRun time.Time `json:"last_run"`
}

func NewMonitor() *Monitor {
	return &Monitor{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
		startTime:   time.Now(),
		checks:      make(map[string]HealthCheckFunc),
	}
}

func (m *Monitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.active++
		m.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		endpoint := c.Request.Method + " " + c.FullPath()

		m.mu.Lock()
		m.requestCount++
		m.active--
		m.totalDuration += duration
		m.lastRequest = time.Now()
		if statusCode >= 400 {
			m.errorCount++
		}
		m.statusCodes[http.StatusText(statusCode)]++
		m.endpoints[endpoint]++
		m.mu.Unlock()
	}
}

func (m *Monitor) RegisterHealthCheck(name string, checkFunc HealthCheckFunc) {
	m.checksMu.Lock()
	defer m.checksMu.Unlock()
	m.checks[name] = checkFunc
}

func (m *Monitor) runHealthChecks() map[string]HealthCheck {
	m.checksMu.RLock()
	defer m.checksMu.RUnlock()

	results := make(map[string]HealthCheck, len(m.checks))
	for name, checkFunc := range m.checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		check := HealthCheck{Name: name, Status: "healthy", LastRun: time.Now()}
		if err := checkFunc(ctx); err != nil {
			check.Status = "unhealthy"
			check.Message = err.Error()
		}
		cancel()

		results[name] = check
	}
	return results
}

func (m *Monitor) MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		m.mu.RLock()
		avgDuration := time.Duration(0)
		if m.requestCount > 0 {
			avgDuration = m.totalDuration / time.Duration(m.requestCount)
		}
		application := gin.H{
			"request_count":           m.requestCount,
			"error_count":             m.errorCount,
			"active_requests":         m.active,
			"avg_request_duration_ms": avgDuration.Milliseconds(),
			"status_codes":            m.statusCodes,
			"endpoint_calls":          m.endpoints,
			"last_request":            m.lastRequest,
		}
		m.mu.RUnlock()

		c.JSON(http.StatusOK, gin.H{
			"application": application,
			"system": gin.H{
				"uptime":          time.Since(m.startTime).String(),
				"alloc_mb":        mem.Alloc / 1024 / 1024,
				"goroutine_count": runtime.NumGoroutine(),
				"go_version":      runtime.Version(),
			},
			"timestamp": time.Now(),
		})
	}
}

func (m *Monitor) HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := m.runHealthChecks()

		overallStatus := "healthy"
		for _, check := range checks {
			if check.Status != "healthy" {
				overallStatus = "unhealthy"
				break
			}
		}

		status := http.StatusOK
		if overallStatus != "healthy" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":    overallStatus,
			"timestamp": time.Now(),
			"checks":    checks,
			"uptime":    time.Since(m.startTime).String(),
		})
	}
}

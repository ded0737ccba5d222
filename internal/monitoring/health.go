package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// maxRecentErrors bounds the error list reported by the health endpoint
const maxRecentErrors = 10

type HealthChecker struct {
	mu        sync.RWMutex
	lastRun   time.Time
	runs      int
	converged bool
	errors    []string
}

type HealthStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	LastRun       time.Time `json:"last_run,omitempty"`
	Runs          int       `json:"runs"`
	LastConverged bool      `json:"last_converged"`
	Uptime        string    `json:"uptime"`
	Errors        []string  `json:"errors,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors: make([]string, 0),
	}
}

// RecordRun marks a finished optimization
func (h *HealthChecker) RecordRun(converged bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = time.Now()
	h.runs++
	h.converged = converged
}

// RecordError keeps the most recent failures for the health report
func (h *HealthChecker) RecordError(err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err.Error())
	if len(h.errors) > maxRecentErrors {
		h.errors = h.errors[len(h.errors)-maxRecentErrors:]
	}
}

// Status returns a snapshot of the current health
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.runs > 0 && !h.converged {
		status = "degraded"
	}

	errs := make([]string, len(h.errors))
	copy(errs, h.errors)

	return HealthStatus{
		Status:        status,
		Timestamp:     time.Now(),
		LastRun:       h.lastRun,
		Runs:          h.runs,
		LastConverged: h.converged,
		Uptime:        time.Since(startTime).String(),
		Errors:        errs,
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

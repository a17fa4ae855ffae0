package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports the reachability of one dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a named ping function into a HealthChecker.
type CheckerFunc struct {
	CheckerName string
	Fn          func(ctx context.Context) error
}

func (c CheckerFunc) Name() string                    { return c.CheckerName }
func (c CheckerFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
}

// NewHealthHandler builds a HealthHandler over the given dependency
// checkers.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers, version: version, startAt: time.Now()}
}

type componentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness always answers 200 while the process runs.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "alive",
		"version": h.version,
		"uptime":  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness pings every dependency concurrently; any failure yields 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		components = make(map[string]componentCheck, len(h.checkers))
		healthy    = true
	)
	for _, checker := range h.checkers {
		wg.Add(1)
		go func(ch HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := ch.Check(ctx)
			check := componentCheck{Status: "up", Latency: time.Since(start).String()}
			if err != nil {
				check.Status = "down"
				check.Error = err.Error()
			}
			mu.Lock()
			components[ch.Name()] = check
			if err != nil {
				healthy = false
			}
			mu.Unlock()
		}(checker)
	}
	wg.Wait()

	status, code := "ready", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "components": components})
}

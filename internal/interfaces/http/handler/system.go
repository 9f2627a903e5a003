package handler

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency is a named backing service probed by /health
type Dependency struct {
	Name   string
	Pinger Pinger
}

// BuildInfo identifies the running binary
type BuildInfo struct {
	Name        string
	Version     string
	Environment string
}

// SystemHandler serves health and system endpoints
type SystemHandler struct {
	BaseHandler
	build    BuildInfo
	deps     []Dependency
	statuses map[string]func() string
	started  time.Time
	now      func() time.Time
}

// NewSystemHandler creates a SystemHandler. With no dependencies /health
// only reports liveness.
func NewSystemHandler(build BuildInfo, deps ...Dependency) *SystemHandler {
	return &SystemHandler{
		build:   build,
		deps:    deps,
		started: time.Now(),
		now:     time.Now,
	}
}

// ReportStatus adds a named component state to /system/info. Unlike a
// Dependency it never fails /health.
func (h *SystemHandler) ReportStatus(name string, state func() string) *SystemHandler {
	if h.statuses == nil {
		h.statuses = make(map[string]func() string)
	}
	h.statuses[name] = state
	return h
}

// HealthResponse is the body of /health
// @name HandlerHealthResponse
type HealthResponse struct {
	Status       string            `json:"status" example:"healthy"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Pings the database and cache. 503 when any of them is unreachable.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	if len(h.deps) == 0 {
		c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	errs := make([]error, len(h.deps))
	var wg sync.WaitGroup
	for i, d := range h.deps {
		wg.Go(func() { errs[i] = d.Pinger.Ping(ctx) })
	}
	wg.Wait()

	resp := HealthResponse{Status: "healthy", Dependencies: make(map[string]string, len(h.deps))}
	for i, d := range h.deps {
		if errs[i] != nil {
			_ = c.Error(errs[i])
			resp.Status = "unhealthy"
			resp.Dependencies[d.Name] = "down"
			continue
		}
		resp.Dependencies[d.Name] = "up"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name        string    `json:"name" example:"pm-backend"`
	Version     string    `json:"version" example:"1.0.0"`
	Environment string    `json:"environment" example:"production"`
	GoVersion   string    `json:"go_version" example:"go1.25.5"`
	StartedAt   time.Time `json:"started_at"`
	Uptime      string    `json:"uptime" example:"1h30m45s"`
	// Components holds reported states such as the model circuit breaker
	Components map[string]string `json:"components,omitempty"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Build identity, environment, uptime and component states
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	var components map[string]string
	if len(h.statuses) > 0 {
		components = make(map[string]string, len(h.statuses))
		for name, state := range h.statuses {
			components[name] = state()
		}
	}
	h.Success(c, SystemInfoResponse{
		Name:        h.build.Name,
		Version:     h.build.Version,
		Environment: h.build.Environment,
		GoVersion:   runtime.Version(),
		StartedAt:   h.started.UTC(),
		Uptime:      h.now().Sub(h.started).Round(time.Second).String(),
		Components:  components,
	})
}

// PingResponse is the body of /system/ping
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

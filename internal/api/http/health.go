package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusUp       = "up"
	statusDown     = "down"
	statusDisabled = "disabled"
)

type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Store        string            `json:"store"`
	Dependencies map[string]string `json:"dependencies"`
}

// Check tests one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	serviceName string
	version     string
	store       string
	checks      map[string]Check
	timeout     time.Duration
}

// NewHealthHandler reports the service and the document store backend in use. Postgres and
// Redis are checked when configured; a nil pool or client is reported as disabled.
func NewHealthHandler(serviceName, version, store string, db *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	h := &HealthHandler{
		serviceName: serviceName,
		version:     version,
		store:       store,
		checks:      map[string]Check{},
		timeout:     time.Second,
	}
	if db != nil {
		h.checks["db"] = db.Ping
	} else {
		h.checks["db"] = nil
	}
	if rdb != nil {
		h.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		h.checks["redis"] = nil
	}
	return h
}

// WithCheck adds or replaces a named check.
func (h *HealthHandler) WithCheck(name string, check Check) *HealthHandler {
	h.checks[name] = check
	return h
}

// HealthCheck answers 200 while every configured dependency is up and 503 otherwise.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	deps := make(map[string]string, len(h.checks))
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	for _, name := range names {
		check := h.checks[name]
		if check == nil {
			deps[name] = statusDisabled
			continue
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		err := check(ctx)
		cancel()
		if err != nil {
			deps[name] = statusDown
			healthy = false
			continue
		}
		deps[name] = statusUp
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, HealthResponse{
		Status:       status,
		Timestamp:    time.Now().UTC(),
		Service:      h.serviceName,
		Version:      h.version,
		Store:        h.store,
		Dependencies: deps,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}

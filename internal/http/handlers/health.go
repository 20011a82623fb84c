package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheckFunc reports whether one dependency is usable.
type HealthCheckFunc func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheckFunc
}

type HealthHandlerDeps struct {
	Checks map[string]HealthCheckFunc
}

func NewHealthHandlerWithDeps(deps HealthHandlerDeps) *HealthHandler {
	return &HealthHandler{checks: deps.Checks}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if len(h.checks) == 0 {
		c.String(http.StatusOK, "ok")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := gin.H{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
		return
	}
	c.String(http.StatusOK, "ok")
}

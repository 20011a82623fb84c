package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/ndtmaster-backend/internal/http/handlers"
	httpMW "github.com/yungbote/ndtmaster-backend/internal/http/middleware"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
	"github.com/yungbote/ndtmaster-backend/internal/services"
)

func newTestRouter(t *testing.T, health *httpH.HealthHandler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	backend := services.NewMockBackend(log, services.MockLatency{})
	templates, err := services.NewTemplateService()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	return NewRouter(RouterConfig{
		Log:             log,
		HealthHandler:   health,
		TemplateHandler: httpH.NewTemplateHandler(templates),
		ProfileHandler:  httpH.NewProfileHandlerWithDeps(httpH.ProfileHandlerDeps{Log: log, Backend: backend}),
		PageHandler:     httpH.NewPageHandlerWithDeps(httpH.PageHandlerDeps{Log: log, Backend: backend, Templates: templates}),
	})
}

func TestRouterServesPagesAndAPI(t *testing.T) {
	r := newTestRouter(t, httpH.NewHealthHandlerWithDeps(httpH.HealthHandlerDeps{}))

	cases := []struct {
		path string
		want string
	}{
		{"/healthcheck", "ok"},
		{"/", "Ключевые возможности"},
		{"/api/templates", "gost_7512_radiographic"},
		{"/api/profile", `"availableGenerations":3`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: want=%d got=%d", tc.path, http.StatusOK, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Fatalf("%s: body missing %q", tc.path, tc.want)
		}
		if rec.Header().Get(httpMW.HeaderRequestID) == "" || rec.Header().Get(httpMW.HeaderTraceID) == "" {
			t.Fatalf("%s: trace headers not set", tc.path)
		}
	}
}

func TestRouterSkipsUnconfiguredHandlers(t *testing.T) {
	r := newTestRouter(t, nil)
	for _, path := range []string{"/healthcheck", "/metrics", "/api/techcards"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: want=%d got=%d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestHealthCheckReportsFailedDependency(t *testing.T) {
	r := newTestRouter(t, httpH.NewHealthHandlerWithDeps(httpH.HealthHandlerDeps{
		Checks: map[string]httpH.HealthCheckFunc{
			"db":    func(ctx context.Context) error { return nil },
			"redis": func(ctx context.Context) error { return errors.New("connection refused") },
		},
	}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want=%d got=%d", http.StatusServiceUnavailable, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redis":"connection refused"`) || strings.Contains(rec.Body.String(), `"db"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

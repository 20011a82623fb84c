package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ndtmaster-backend/internal/platform/ctxutil"
)

func TestAttachTraceContextKeepsIncomingIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())

	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	req.Header.Set(HeaderTraceID, "trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-1" || seen.TraceID != "trace-1" {
		t.Fatalf("unexpected trace data: %+v", seen)
	}
	if got := rec.Header().Get(HeaderRequestID); got != "req-1" {
		t.Fatalf("request id header: want=%q got=%q", "req-1", got)
	}
}

func TestAttachTraceContextGeneratesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Header().Get(HeaderRequestID) == "" || rec.Header().Get(HeaderTraceID) == "" {
		t.Fatalf("ids should be generated when absent")
	}
}

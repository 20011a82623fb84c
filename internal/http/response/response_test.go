package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ndtmaster-backend/internal/platform/apierr"
)

func TestRespondAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"api error", apierr.New(http.StatusBadGateway, "ai_failed", errors.New("нет ответа")), http.StatusBadGateway, "ai_failed", "нет ответа"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error", "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondAPIError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status: want=%d got=%d", tc.wantStatus, rec.Code)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.wantCode || env.Error.Message != tc.wantMsg {
				t.Fatalf("envelope: want=%q/%q got=%q/%q", tc.wantCode, tc.wantMsg, env.Error.Code, env.Error.Message)
			}
		})
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ndtmaster-backend/internal/document"
	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
	"github.com/yungbote/ndtmaster-backend/internal/http/response"
	"github.com/yungbote/ndtmaster-backend/internal/platform/apierr"
	"github.com/yungbote/ndtmaster-backend/internal/services"
)

// toAPIError maps service errors to HTTP status and code. User-facing
// failures carry only the sentinel so the message stays one line; the full
// chain goes to the request log.
func toAPIError(err error) *apierr.Error {
	var verr *techcard.ValidationError
	var unsupported *document.UnsupportedFormatError
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.As(err, &verr):
		return apierr.BadRequest("validation_failed", verr)
	case errors.Is(err, quality.ErrNoDefects):
		return apierr.BadRequest("validation_failed", quality.ErrNoDefects)
	case errors.As(err, &unsupported):
		return apierr.BadRequest("unsupported_format", unsupported)
	case errors.Is(err, services.ErrContentGeneration):
		return apierr.New(http.StatusBadGateway, "ai_failed", services.ErrContentGeneration)
	case errors.Is(err, services.ErrAssessment):
		return apierr.New(http.StatusBadGateway, "ai_failed", services.ErrAssessment)
	case errors.Is(err, services.ErrDraftNotFound):
		return apierr.NotFound("draft_not_found", services.ErrDraftNotFound)
	case errors.Is(err, document.ErrPDFUnavailable):
		return apierr.New(http.StatusServiceUnavailable, "export_unavailable", document.ErrPDFUnavailable)
	case errors.Is(err, document.ErrDOCXUnavailable):
		return apierr.New(http.StatusServiceUnavailable, "export_unavailable", document.ErrDOCXUnavailable)
	case errors.Is(err, document.ErrExportTimeout):
		return apierr.New(http.StatusGatewayTimeout, "timeout", document.ErrExportTimeout)
	case errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusGatewayTimeout, "timeout", err)
	}
	return apierr.As(err)
}

// userMessage is the one-line text shown on a page for err.
func userMessage(err error) string {
	ae := toAPIError(err)
	if ae.Status >= http.StatusInternalServerError && ae.Code == "internal_error" {
		return "Произошла внутренняя ошибка. Пожалуйста, попробуйте снова."
	}
	return ae.Error()
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	response.RespondAPIError(c, toAPIError(err))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
	"github.com/yungbote/ndtmaster-backend/internal/http/response"
	"github.com/yungbote/ndtmaster-backend/internal/services"
)

type QualityHandler struct {
	quality services.QualityService
}

func NewQualityHandler(q services.QualityService) *QualityHandler {
	return &QualityHandler{quality: q}
}

// POST /api/quality/assess
// body: {"method","normativeDocument","thickness","defects":[{"type","size"}]}
func (h *QualityHandler) Assess(c *gin.Context) {
	var req quality.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.quality.AssessQuality(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}

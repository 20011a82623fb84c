package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ndtmaster-backend/internal/http/response"
	"github.com/yungbote/ndtmaster-backend/internal/platform/apierr"
	"github.com/yungbote/ndtmaster-backend/internal/services"
)

var errTemplateNotFound = errors.New("template not found")

type TemplateHandler struct {
	templates services.TemplateService
}

func NewTemplateHandler(templates services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// GET /api/templates
func (h *TemplateHandler) List(c *gin.Context) {
	response.RespondOK(c, gin.H{"templates": h.templates.List()})
}

// GET /api/templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	t, ok := h.templates.Get(c.Param("id"))
	if !ok {
		respondError(c, apierr.NotFound("template_not_found", errTemplateNotFound))
		return
	}
	response.RespondOK(c, t)
}

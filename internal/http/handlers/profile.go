package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ndtmaster-backend/internal/http/response"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
	"github.com/yungbote/ndtmaster-backend/internal/services"
)

type ProfileHandler struct {
	log     *logger.Logger
	backend services.Backend
	avatars services.AvatarService
}

type ProfileHandlerDeps struct {
	Log     *logger.Logger
	Backend services.Backend
	Avatars services.AvatarService
}

func NewProfileHandlerWithDeps(deps ProfileHandlerDeps) *ProfileHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &ProfileHandler{log: log.With("handler", "ProfileHandler"), backend: deps.Backend, avatars: deps.Avatars}
}

// GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, err := h.backend.GetProfile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, p)
}

// GET /api/profile/avatar.png
func (h *ProfileHandler) Avatar(c *gin.Context) {
	if h.avatars == nil {
		c.Status(http.StatusNotFound)
		return
	}
	p, err := h.backend.GetProfile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	png, err := h.avatars.GenerateAvatar(p)
	if err != nil {
		h.log.Warn("Avatar render failed", "error", err)
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

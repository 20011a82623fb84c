package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/ndtmaster-backend/internal/document"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
	"github.com/yungbote/ndtmaster-backend/internal/http/response"
	"github.com/yungbote/ndtmaster-backend/internal/platform/apierr"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
	"github.com/yungbote/ndtmaster-backend/internal/services"
)

type TechCardHandler struct {
	log     *logger.Logger
	content services.TechCardContentService
	drafts  services.DraftStore
	docs    *document.Service
	backend services.Backend
}

type TechCardHandlerDeps struct {
	Log       *logger.Logger
	Content   services.TechCardContentService
	Drafts    services.DraftStore
	Documents *document.Service
	Backend   services.Backend
}

func NewTechCardHandlerWithDeps(deps TechCardHandlerDeps) *TechCardHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &TechCardHandler{
		log:     log.With("handler", "TechCardHandler"),
		content: deps.Content,
		drafts:  deps.Drafts,
		docs:    deps.Documents,
		backend: deps.Backend,
	}
}

type generateResponse struct {
	DraftID uuid.UUID     `json:"draftId"`
	Card    techcard.Data `json:"card"`
}

// POST /api/techcards/generate
// body: techcard form data
func (h *TechCardHandler) Generate(c *gin.Context) {
	var form techcard.FormData
	if err := c.ShouldBindJSON(&form); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	draft, err := generateDraft(c, h.content, h.drafts, form)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, generateResponse{DraftID: draft.ID, Card: draft.Card})
}

// GET /api/techcards/drafts/:id
func (h *TechCardHandler) GetDraft(c *gin.Context) {
	draft, err := loadDraft(c, h.drafts)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, draft)
}

// GET /api/techcards/drafts/:id/export?format=pdf|docx
func (h *TechCardHandler) ExportDraft(c *gin.Context) {
	format, err := document.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}
	draft, err := loadDraft(c, h.drafts)
	if err != nil {
		respondError(c, err)
		return
	}
	dl := &attachmentDownloader{c: c}
	if err := exportCard(c, h.docs, draft.Card, format, dl); err != nil && !dl.written {
		respondError(c, err)
	}
}

type saveRequest struct {
	DraftID string `json:"draftId"`
	techcard.Data
}

// POST /api/techcards
// body: {"draftId": "..."} or a full card
func (h *TechCardHandler) Save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	card := req.Data
	if strings.TrimSpace(req.DraftID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(req.DraftID))
		if err != nil {
			respondError(c, apierr.BadRequest("invalid_draft_id", err))
			return
		}
		draft, err := h.drafts.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		card = draft.Card
	} else if err := card.FormData.Validate(); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.backend.SaveTechCard(c.Request.Context(), card)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/techcards
func (h *TechCardHandler) List(c *gin.Context) {
	cards, err := h.backend.ListTechCards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"techCards": cards})
}

// generateDraft validates form, asks the AI service for the four sections
// and stores the merged card as a draft. Validation failures never reach
// the AI service.
func generateDraft(c *gin.Context, content services.TechCardContentService, drafts services.DraftStore, form techcard.FormData) (techcard.Draft, error) {
	if err := form.Validate(); err != nil {
		return techcard.Draft{}, err
	}
	form.Equipment = form.CleanEquipment()
	generated, err := content.GenerateTechCardContent(c.Request.Context(), form)
	if err != nil {
		return techcard.Draft{}, err
	}
	return drafts.Save(c.Request.Context(), techcard.Merge(form, generated))
}

func loadDraft(c *gin.Context, drafts services.DraftStore) (techcard.Draft, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return techcard.Draft{}, apierr.NotFound("draft_not_found", services.ErrDraftNotFound)
	}
	return drafts.Get(c.Request.Context(), id)
}

func exportCard(c *gin.Context, docs *document.Service, card techcard.Data, format document.Format, dl document.Downloader) error {
	el, err := document.RenderTechCard(card)
	if err != nil {
		return err
	}
	return docs.GenerateDocument(c.Request.Context(), el, document.FileName(card), format, dl)
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/ndtmaster-backend/internal/document"
	"github.com/yungbote/ndtmaster-backend/internal/domain/account"
	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
	"github.com/yungbote/ndtmaster-backend/internal/http/pages"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
	"github.com/yungbote/ndtmaster-backend/internal/services"
)

// PageHandler serves the server-rendered UI. Form state lives in the
// submitted form fields; generated cards live in the draft store.
type PageHandler struct {
	log       *logger.Logger
	content   services.TechCardContentService
	quality   services.QualityService
	drafts    services.DraftStore
	docs      *document.Service
	backend   services.Backend
	templates services.TemplateService
}

type PageHandlerDeps struct {
	Log       *logger.Logger
	Content   services.TechCardContentService
	Quality   services.QualityService
	Drafts    services.DraftStore
	Documents *document.Service
	Backend   services.Backend
	Templates services.TemplateService
}

func NewPageHandlerWithDeps(deps PageHandlerDeps) *PageHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &PageHandler{
		log:       log.With("handler", "PageHandler"),
		content:   deps.Content,
		quality:   deps.Quality,
		drafts:    deps.Drafts,
		docs:      deps.Documents,
		backend:   deps.Backend,
		templates: deps.Templates,
	}
}

type feature struct {
	Title       string
	Description string
}

var homeFeatures = []feature{
	{"Генерация техкарт", "Введите параметры вашего объекта и получите готовую технологическую карту в форматах DOCX и PDF."},
	{"Оценка качества", "Проверьте соответствие обнаруженных дефектов требованиям нормативных документов с помощью нашего инструмента оценки."},
	{"Личный кабинет", "Все ваши документы хранятся в одном месте. Управляйте, скачивайте и редактируйте их в любое время."},
}

type homePage struct {
	Layout   pages.Layout
	Features []feature
}

// GET /
func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home", homePage{
		Layout:   pages.Layout{Active: pages.NavHome},
		Features: homeFeatures,
	})
}

type formPage struct {
	Layout    pages.Layout
	Form      techcard.FormData
	Methods   []string
	Templates []techcard.Template
	Missing   map[string]bool
	Error     string
}

func (h *PageHandler) renderForm(c *gin.Context, status int, form techcard.FormData, err error) {
	page := formPage{
		Layout:  pages.Layout{Title: "Создание технологической карты", Active: pages.NavTechCard},
		Form:    form,
		Methods: methodOptions(techcard.ControlMethods, form.ControlMethod),
		Missing: map[string]bool{},
	}
	if h.templates != nil {
		page.Templates = h.templates.List()
	}
	if err != nil {
		page.Error = userMessage(err)
		var verr *techcard.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				page.Missing[f.Field] = true
			}
		}
	}
	c.HTML(status, "techcard_form", page)
}

// GET /techcards/new[?template=<id>]
func (h *PageHandler) TechCardForm(c *gin.Context) {
	form := techcard.SampleForm()
	if id := c.Query("template"); id != "" && h.templates != nil {
		if t, ok := h.templates.Get(id); ok {
			form = t.Apply(form)
		}
	}
	h.renderForm(c, http.StatusOK, form, nil)
}

// POST /techcards/new
// action: add_equipment | remove_equipment:<i> | generate
func (h *PageHandler) SubmitTechCardForm(c *gin.Context) {
	var form techcard.FormData
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusBadRequest, form, err)
		return
	}

	action := c.PostForm("action")
	switch {
	case action == "add_equipment":
		form.AddEquipment()
		h.renderForm(c, http.StatusOK, form, nil)
	case strings.HasPrefix(action, "remove_equipment:"):
		if i, err := strconv.Atoi(strings.TrimPrefix(action, "remove_equipment:")); err == nil {
			form.RemoveEquipment(i)
		}
		h.renderForm(c, http.StatusOK, form, nil)
	default:
		draft, err := generateDraft(c, h.content, h.drafts, form)
		if err != nil {
			_ = c.Error(err)
			h.renderForm(c, toAPIError(err).Status, form, err)
			return
		}
		c.Redirect(http.StatusSeeOther, "/techcards/"+draft.ID.String())
	}
}

type previewPage struct {
	Layout  pages.Layout
	DraftID uuid.UUID
	Card    techcard.Data
	Notice  string
	Error   string
}

func (h *PageHandler) renderPreview(c *gin.Context, status int, draft techcard.Draft, notice, errMsg string) {
	c.HTML(status, "techcard_preview", previewPage{
		Layout:  pages.Layout{Title: draft.Card.Title(), Active: pages.NavTechCard},
		DraftID: draft.ID,
		Card:    draft.Card,
		Notice:  notice,
		Error:   errMsg,
	})
}

// draftOrRedirect loads the draft for the :id param. Unknown or expired
// drafts send the user back to the form.
func (h *PageHandler) draftOrRedirect(c *gin.Context) (techcard.Draft, bool) {
	draft, err := loadDraft(c, h.drafts)
	if err != nil {
		if !errors.Is(err, services.ErrDraftNotFound) {
			_ = c.Error(err)
		}
		c.Redirect(http.StatusSeeOther, "/techcards/new")
		return techcard.Draft{}, false
	}
	return draft, true
}

// GET /techcards/:id
func (h *PageHandler) Preview(c *gin.Context) {
	if draft, ok := h.draftOrRedirect(c); ok {
		h.renderPreview(c, http.StatusOK, draft, "", "")
	}
}

// GET /techcards/:id/card
func (h *PageHandler) CardDocument(c *gin.Context) {
	draft, ok := h.draftOrRedirect(c)
	if !ok {
		return
	}
	el, err := document.RenderTechCard(draft.Card)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(el.Page))
}

// GET /techcards/:id/download?format=pdf|docx
func (h *PageHandler) Download(c *gin.Context) {
	draft, ok := h.draftOrRedirect(c)
	if !ok {
		return
	}
	format, err := document.ParseFormat(c.Query("format"))
	if err != nil {
		h.renderPreview(c, http.StatusBadRequest, draft, "", err.Error())
		return
	}
	dl := &attachmentDownloader{c: c}
	if err := exportCard(c, h.docs, draft.Card, format, dl); err != nil && !dl.written {
		_ = c.Error(err)
		h.renderPreview(c, toAPIError(err).Status, draft, "", fmt.Sprintf("Не удалось скачать %s файл.", format))
	}
}

// POST /techcards/:id/save
func (h *PageHandler) SaveDraft(c *gin.Context) {
	draft, ok := h.draftOrRedirect(c)
	if !ok {
		return
	}
	res, err := h.backend.SaveTechCard(c.Request.Context(), draft.Card)
	if err != nil {
		_ = c.Error(err)
		h.renderPreview(c, toAPIError(err).Status, draft, "", "Не удалось сохранить техкарту.")
		return
	}
	h.renderPreview(c, http.StatusOK, draft, fmt.Sprintf("Техкарта сохранена (ID: %s).", res.ID), "")
}

type qualityPage struct {
	Layout      pages.Layout
	Form        quality.Form
	Methods     []string
	Documents   []string
	DefectTypes []string
	Result      string
	Error       string
}

func (h *PageHandler) renderQuality(c *gin.Context, status int, form quality.Form, result string, err error) {
	page := qualityPage{
		Layout:      pages.Layout{Title: "Оценка качества", Active: pages.NavQuality},
		Form:        form,
		Methods:     methodOptions(quality.Methods, form.Method),
		Documents:   methodOptions(quality.NormativeDocuments, form.NormativeDocument),
		DefectTypes: quality.DefectTypes,
		Result:      result,
	}
	if err != nil {
		page.Error = userMessage(err)
	}
	c.HTML(status, "quality", page)
}

// GET /quality
func (h *PageHandler) QualityForm(c *gin.Context) {
	h.renderQuality(c, http.StatusOK, quality.DefaultForm(), "", nil)
}

// POST /quality
// action: add | remove:<id> | assess
func (h *PageHandler) SubmitQualityForm(c *gin.Context) {
	form := qualityFormFromPost(c)

	action := c.PostForm("action")
	switch {
	case action == "add":
		form.Defects = form.Defects.AddBlank()
		h.renderQuality(c, http.StatusOK, form, "", nil)
	case strings.HasPrefix(action, "remove:"):
		form.Defects = form.Defects.Remove(strings.TrimPrefix(action, "remove:"))
		h.renderQuality(c, http.StatusOK, form, "", nil)
	default:
		result, err := h.quality.AssessQuality(c.Request.Context(), form.Request())
		if err != nil {
			_ = c.Error(err)
			h.renderQuality(c, toAPIError(err).Status, form, "", err)
			return
		}
		h.renderQuality(c, http.StatusOK, form, result, nil)
	}
}

// qualityFormFromPost rebuilds the page state from parallel defect_* arrays.
func qualityFormFromPost(c *gin.Context) quality.Form {
	ids := c.PostFormArray("defect_id")
	types := c.PostFormArray("defect_type")
	sizes := c.PostFormArray("defect_size")
	n := min(len(ids), len(types), len(sizes))

	// Rows are keyed first, then each posted cell is applied to its row.
	rows := make([]quality.Defect, n)
	for i := range rows {
		rows[i].ID = ids[i]
	}
	defects := quality.Normalize(rows)
	for i, d := range defects {
		defects = defects.Update(d.ID, quality.FieldType, types[i])
		defects = defects.Update(d.ID, quality.FieldSize, sizes[i])
	}
	return quality.Form{
		Method:            c.PostForm("method"),
		NormativeDocument: c.PostForm("normativeDocument"),
		Thickness:         c.PostForm("thickness"),
		Defects:           defects,
	}
}

type cardRow struct {
	ID      string
	Name    string
	Created string
}

type dashboardPage struct {
	Layout  pages.Layout
	Cards   []cardRow
	Profile *account.Profile
	Tariffs []account.Tariff
	Error   string
}

// GET /dashboard
func (h *PageHandler) Dashboard(c *gin.Context) {
	var (
		cards   []account.CardSummary
		profile account.Profile
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		cards, err = h.backend.ListTechCards(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = h.backend.GetProfile(ctx)
		return err
	})

	page := dashboardPage{
		Layout:  pages.Layout{Title: "Личный кабинет", Active: pages.NavDashboard},
		Tariffs: account.Tariffs(),
	}
	if err := g.Wait(); err != nil {
		_ = c.Error(err)
		page.Error = "Не удалось загрузить данные личного кабинета."
		c.HTML(toAPIError(err).Status, "dashboard", page)
		return
	}
	page.Profile = &profile
	page.Layout.Available = &profile.AvailableGenerations
	for _, card := range cards {
		page.Cards = append(page.Cards, cardRow{ID: card.ID, Name: card.Name, Created: displayDate(card.CreatedAt)})
	}
	c.HTML(http.StatusOK, "dashboard", page)
}

// displayDate turns an ISO date into dd.mm.yyyy. Other input is shown as is.
func displayDate(s string) string {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("02.01.2006")
	}
	return s
}

// methodOptions keeps a submitted value selectable even when it is not one
// of the stock options.
func methodOptions(options []string, current string) []string {
	if current == "" || slices.Contains(options, current) {
		return options
	}
	return append(slices.Clone(options), current)
}

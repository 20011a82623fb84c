package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ndtmaster-backend/internal/document"
	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
	"github.com/yungbote/ndtmaster-backend/internal/http/pages"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
	"github.com/yungbote/ndtmaster-backend/internal/services"
)

type fakeContent struct {
	content techcard.Content
	err     error
	calls   int
}

func (f *fakeContent) GenerateTechCardContent(ctx context.Context, form techcard.FormData) (techcard.Content, error) {
	f.calls++
	if f.err != nil {
		return techcard.Content{}, f.err
	}
	return f.content, nil
}

type fakeQuality struct {
	result string
	err    error
	got    []quality.Request
}

func (f *fakeQuality) AssessQuality(ctx context.Context, req quality.Request) (string, error) {
	f.got = append(f.got, req)
	if len(req.Defects) == 0 {
		return "", quality.ErrNoDefects
	}
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

// fakeGenerator stands in for the PDF and DOCX pipelines.
type fakeGenerator struct {
	format document.Format
	err    error
	// block waits for ctx to end before failing.
	block bool
}

func (g *fakeGenerator) Format() document.Format { return g.format }

func (g *fakeGenerator) Generate(ctx context.Context, el document.Element, fileName string, dl document.Downloader) error {
	if g.err != nil {
		return g.err
	}
	if g.block {
		<-ctx.Done()
		return fmt.Errorf("capture element: %w", ctx.Err())
	}
	return dl.Save(ctx, document.File{
		Name:        fileName + "." + string(g.format),
		ContentType: "application/octet-stream",
		Data:        []byte("file:" + string(g.format)),
	})
}

var sampleContent = techcard.Content{
	ControlProcedure:      "1. Подготовка.",
	AcceptanceCriteria:    "Трещины не допускаются.",
	PersonnelRequirements: "Уровень II.",
	SafetyPrecautions:     "Ограждение зоны.",
}

type testEnv struct {
	engine  *gin.Engine
	content *fakeContent
	quality *fakeQuality
	drafts  *services.MemoryDraftStore
}

type envOption func(*envConfig)

type envConfig struct {
	pdfErr        error
	pdfBlocks     bool
	exportTimeout time.Duration
}

func withPDFError(err error) envOption {
	return func(c *envConfig) { c.pdfErr = err }
}

// withHangingPDF makes PDF export wait for its context and bounds exports by d.
func withHangingPDF(d time.Duration) envOption {
	return func(c *envConfig) {
		c.pdfBlocks = true
		c.exportTimeout = d
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var cfg envConfig
	for _, o := range opts {
		o(&cfg)
	}

	log := logger.Nop()
	content := &fakeContent{content: sampleContent}
	q := &fakeQuality{result: "Заключение: годен."}
	drafts := services.NewMemoryDraftStore(time.Hour)
	backend := services.NewMockBackend(log, services.MockLatency{})
	templates, err := services.NewTemplateService()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	docs := document.NewService(log,
		&fakeGenerator{format: document.FormatPDF, err: cfg.pdfErr, block: cfg.pdfBlocks},
		&fakeGenerator{format: document.FormatDOCX},
	).WithTimeout(cfg.exportTimeout)

	r := gin.New()
	r.SetHTMLTemplate(pages.Templates())

	tc := NewTechCardHandlerWithDeps(TechCardHandlerDeps{Log: log, Content: content, Drafts: drafts, Documents: docs, Backend: backend})
	api := r.Group("/api")
	api.POST("/techcards/generate", tc.Generate)
	api.GET("/techcards/drafts/:id", tc.GetDraft)
	api.GET("/techcards/drafts/:id/export", tc.ExportDraft)
	api.POST("/techcards", tc.Save)
	api.GET("/techcards", tc.List)
	api.POST("/quality/assess", NewQualityHandler(q).Assess)
	th := NewTemplateHandler(templates)
	api.GET("/templates", th.List)
	api.GET("/templates/:id", th.Get)

	ph := NewPageHandlerWithDeps(PageHandlerDeps{
		Log: log, Content: content, Quality: q, Drafts: drafts,
		Documents: docs, Backend: backend, Templates: templates,
	})
	r.GET("/", ph.Home)
	r.GET("/techcards/new", ph.TechCardForm)
	r.POST("/techcards/new", ph.SubmitTechCardForm)
	r.GET("/techcards/:id", ph.Preview)
	r.GET("/techcards/:id/card", ph.CardDocument)
	r.GET("/techcards/:id/download", ph.Download)
	r.POST("/techcards/:id/save", ph.SaveDraft)
	r.GET("/quality", ph.QualityForm)
	r.POST("/quality", ph.SubmitQualityForm)
	r.GET("/dashboard", ph.Dashboard)

	return &testEnv{engine: r, content: content, quality: q, drafts: drafts}
}

func (e *testEnv) do(t *testing.T, method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postJSON(t *testing.T, target, body string) *httptest.ResponseRecorder {
	return e.do(t, http.MethodPost, target, "application/json", strings.NewReader(body))
}

func (e *testEnv) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	return e.do(t, http.MethodPost, target, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func formValues(f techcard.FormData) url.Values {
	v := url.Values{}
	v.Set("customer", f.Customer)
	v.Set("facility", f.Facility)
	v.Set("weldConnectionNumber", f.WeldConnectionNumber)
	v.Set("controlObject", f.ControlObject)
	v.Set("normativeDocument", f.NormativeDocument)
	v.Set("weldType", f.WeldType)
	v.Set("thickness", f.Thickness)
	v.Set("diameter", f.Diameter)
	v.Set("controlMethod", f.ControlMethod)
	v.Set("qualityLevel", f.QualityLevel)
	v.Set("sensitivity", f.Sensitivity)
	for _, e := range f.Equipment {
		v.Add("equipment", e)
	}
	return v
}

func mustContain(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Fatalf("response missing %q", w)
		}
	}
}

var errProvider = errors.New("provider exploded")

package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/ndtmaster-backend/internal/http/handlers"
	httpMW "github.com/yungbote/ndtmaster-backend/internal/http/middleware"
	"github.com/yungbote/ndtmaster-backend/internal/http/pages"
	"github.com/yungbote/ndtmaster-backend/internal/observability"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// ServiceName labels otel spans. Empty disables the otel middleware.
	ServiceName string

	TechCardHandler *httpH.TechCardHandler
	QualityHandler  *httpH.QualityHandler
	ProfileHandler  *httpH.ProfileHandler
	TemplateHandler *httpH.TemplateHandler
	PageHandler     *httpH.PageHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))
	r.SetHTMLTemplate(pages.Templates())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Pages
	if h := cfg.PageHandler; h != nil {
		r.GET("/", h.Home)
		r.GET("/techcards/new", h.TechCardForm)
		r.POST("/techcards/new", h.SubmitTechCardForm)
		r.GET("/techcards/:id", h.Preview)
		r.GET("/techcards/:id/card", h.CardDocument)
		r.GET("/techcards/:id/download", h.Download)
		r.POST("/techcards/:id/save", h.SaveDraft)
		r.GET("/quality", h.QualityForm)
		r.POST("/quality", h.SubmitQualityForm)
		r.GET("/dashboard", h.Dashboard)
	}

	api := r.Group("/api")
	{
		// Tech cards
		if h := cfg.TechCardHandler; h != nil {
			api.POST("/techcards/generate", h.Generate)
			api.GET("/techcards/drafts/:id", h.GetDraft)
			api.GET("/techcards/drafts/:id/export", h.ExportDraft)
			api.POST("/techcards", h.Save)
			api.GET("/techcards", h.List)
		}

		// Quality
		if cfg.QualityHandler != nil {
			api.POST("/quality/assess", cfg.QualityHandler.Assess)
		}

		// Profile
		if cfg.ProfileHandler != nil {
			api.GET("/profile", cfg.ProfileHandler.GetProfile)
			api.GET("/profile/avatar.png", cfg.ProfileHandler.Avatar)
		}

		// Templates
		if cfg.TemplateHandler != nil {
			api.GET("/templates", cfg.TemplateHandler.List)
			api.GET("/templates/:id", cfg.TemplateHandler.Get)
		}
	}

	return r
}

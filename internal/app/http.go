package app

import (
	"context"

	"github.com/gin-gonic/gin"

	ndthttp "github.com/yungbote/ndtmaster-backend/internal/http"
	httpH "github.com/yungbote/ndtmaster-backend/internal/http/handlers"
	"github.com/yungbote/ndtmaster-backend/internal/observability"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	TechCard *httpH.TechCardHandler
	Quality  *httpH.QualityHandler
	Profile  *httpH.ProfileHandler
	Template *httpH.TemplateHandler
	Page     *httpH.PageHandler
}

func wireHandlers(log *logger.Logger, clients Clients, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandlerWithDeps(httpH.HealthHandlerDeps{Checks: healthChecks(clients)}),
		TechCard: httpH.NewTechCardHandlerWithDeps(httpH.TechCardHandlerDeps{
			Log:       log,
			Content:   services.Content,
			Drafts:    services.Drafts,
			Documents: services.Documents,
			Backend:   services.Backend,
		}),
		Quality: httpH.NewQualityHandler(services.Quality),
		Profile: httpH.NewProfileHandlerWithDeps(httpH.ProfileHandlerDeps{
			Log:     log,
			Backend: services.Backend,
			Avatars: services.Avatars,
		}),
		Template: httpH.NewTemplateHandler(services.Templates),
		Page: httpH.NewPageHandlerWithDeps(httpH.PageHandlerDeps{
			Log:       log,
			Content:   services.Content,
			Quality:   services.Quality,
			Drafts:    services.Drafts,
			Documents: services.Documents,
			Backend:   services.Backend,
			Templates: services.Templates,
		}),
	}
}

func healthChecks(clients Clients) map[string]httpH.HealthCheckFunc {
	checks := map[string]httpH.HealthCheckFunc{}
	if clients.Redis != nil {
		rdb := clients.Redis
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if clients.DB != nil {
		gdb := clients.DB.DB()
		checks["db"] = func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	return checks
}

func wireRouter(log *logger.Logger, cfg Config, m *observability.Metrics, handlers Handlers) *gin.Engine {
	return ndthttp.NewRouter(ndthttp.RouterConfig{
		Log:             log,
		Metrics:         m,
		CORSOrigins:     cfg.CORSOrigins,
		ServiceName:     cfg.Otel.ServiceName,
		HealthHandler:   handlers.Health,
		TechCardHandler: handlers.TechCard,
		QualityHandler:  handlers.Quality,
		ProfileHandler:  handlers.Profile,
		TemplateHandler: handlers.Template,
		PageHandler:     handlers.Page,
	})
}

package app

import (
	"fmt"

	"github.com/yungbote/ndtmaster-backend/internal/document"
	"github.com/yungbote/ndtmaster-backend/internal/document/inline"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
	"github.com/yungbote/ndtmaster-backend/internal/services"
)

type Services struct {
	Content   services.TechCardContentService
	Quality   services.QualityService
	Templates services.TemplateService
	Drafts    services.DraftStore
	Backend   services.Backend
	Avatars   services.AvatarService
	Documents *document.Service

	// Janitor is set only for the in-memory draft store.
	Janitor *services.DraftJanitor
}

func wireServices(log *logger.Logger, cfg Config, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	templates, err := services.NewTemplateService()
	if err != nil {
		return Services{}, fmt.Errorf("load templates: %w", err)
	}
	avatars, err := services.NewAvatarService(log, cfg.AvatarFont)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	out := Services{
		Content:   services.NewTechCardContentService(log, clients.LLM, cfg.LLM.Model),
		Quality:   services.NewQualityService(log, clients.LLM, cfg.LLM.Model),
		Templates: templates,
		Avatars:   avatars,
		Documents: wireDocuments(log, cfg, clients),
	}

	// Drafts
	if clients.Redis != nil {
		out.Drafts = services.NewRedisDraftStore(clients.Redis, cfg.DraftTTL)
	} else {
		mem := services.NewMemoryDraftStore(cfg.DraftTTL)
		janitor, err := services.NewDraftJanitor(log, mem, cfg.DraftPurgeSpec)
		if err != nil {
			return Services{}, fmt.Errorf("init draft janitor: %w", err)
		}
		out.Drafts = mem
		out.Janitor = janitor
	}

	// Backend
	switch {
	case clients.DB != nil:
		out.Backend = services.NewSQLBackend(clients.DB.DB(), log)
	case cfg.MockLatency:
		out.Backend = services.NewMockBackend(log, services.DefaultMockLatency())
	default:
		out.Backend = services.NewMockBackend(log, services.MockLatency{})
	}

	return out, nil
}

// wireDocuments prefers the headless browser for style inlining and falls
// back to the static inliner when no browser is reachable.
func wireDocuments(log *logger.Logger, cfg Config, clients Clients) *document.Service {
	inliner := inline.New(log, clients.Browser)
	return document.NewService(log,
		document.NewPdfGenerator(log, clients.Browser, document.DefaultPDFOptions()),
		document.NewDocxGenerator(log, inliner, clients.Office),
	).WithTimeout(cfg.ExportTimeout)
}

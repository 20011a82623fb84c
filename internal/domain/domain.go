package domain

import (
	"github.com/yungbote/ndtmaster-backend/internal/domain/account"
	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
)

type (
	TechCardFormData = techcard.FormData
	TechCardContent  = techcard.Content
	TechCardData     = techcard.Data
	TechCardDraft    = techcard.Draft
	TechCardRecord   = techcard.Record
	Template         = techcard.Template

	Defect            = quality.Defect
	DefectList        = quality.DefectList
	AssessmentRequest = quality.Request

	Profile     = account.Profile
	CardSummary = account.CardSummary
	SaveResult  = account.SaveResult
)

// Models lists every gorm model for AutoMigrate.
func Models() []any {
	return []any{
		&techcard.Record{},
	}
}

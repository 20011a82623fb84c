package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
	"github.com/yungbote/ndtmaster-backend/internal/platform/llm"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

// ErrContentGeneration is the user-facing failure of card generation. The
// provider error, if any, is joined into the chain.
var ErrContentGeneration = errors.New("Не удалось сгенерировать содержимое техкарты. Пожалуйста, попробуйте снова.")

const techCardTemperature = 0.2

type TechCardContentService interface {
	GenerateTechCardContent(ctx context.Context, form techcard.FormData) (techcard.Content, error)
}

type techCardContentService struct {
	log    *logger.Logger
	client llm.Client
	model  string
	policy *bluemonday.Policy
}

func NewTechCardContentService(log *logger.Logger, client llm.Client, model string) TechCardContentService {
	return &techCardContentService{
		log:    log.With("service", "TechCardContentService"),
		client: client,
		model:  strings.TrimSpace(model),
		policy: bluemonday.StrictPolicy(),
	}
}

func (s *techCardContentService) GenerateTechCardContent(ctx context.Context, form techcard.FormData) (techcard.Content, error) {
	resp, err := s.client.Generate(ctx, llm.Request{
		Model:       s.model,
		Prompt:      techCardPrompt(form),
		Schema:      techCardSchema(),
		Temperature: llm.Temperature(techCardTemperature),
	})
	if err != nil {
		s.log.Error("Tech card generation failed", "provider", s.client.Provider(), "weld", form.WeldConnectionNumber, "error", err)
		return techcard.Content{}, errors.Join(ErrContentGeneration, err)
	}

	content, err := s.parse(resp.Text)
	if err != nil {
		s.log.Error("Tech card response rejected", "provider", s.client.Provider(), "model", resp.Model, "error", err)
		return techcard.Content{}, errors.Join(ErrContentGeneration, err)
	}
	s.log.Debug("Tech card content generated",
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
	)
	return content, nil
}

func (s *techCardContentService) parse(text string) (techcard.Content, error) {
	var c techcard.Content
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &c); err != nil {
		return techcard.Content{}, fmt.Errorf("decode content json: %w", err)
	}
	c.ControlProcedure = s.clean(c.ControlProcedure)
	c.AcceptanceCriteria = s.clean(c.AcceptanceCriteria)
	c.PersonnelRequirements = s.clean(c.PersonnelRequirements)
	c.SafetyPrecautions = s.clean(c.SafetyPrecautions)
	if missing := c.MissingSections(); len(missing) > 0 {
		return techcard.Content{}, fmt.Errorf("content missing sections: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

// clean strips markup while keeping line breaks, the card renders sections
// with white-space: pre-wrap.
func (s *techCardContentService) clean(v string) string {
	// StrictPolicy leaves text entity-escaped; the card template escapes
	// again on render.
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

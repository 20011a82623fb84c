package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
	"github.com/yungbote/ndtmaster-backend/internal/platform/llm"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

var ErrAssessment = errors.New("Не удалось провести оценку качества. Пожалуйста, попробуйте снова.")

type QualityService interface {
	// AssessQuality returns the model's verdict as free text.
	AssessQuality(ctx context.Context, req quality.Request) (string, error)
}

type qualityService struct {
	log    *logger.Logger
	client llm.Client
	model  string
}

func NewQualityService(log *logger.Logger, client llm.Client, model string) QualityService {
	return &qualityService{
		log:    log.With("service", "QualityService"),
		client: client,
		model:  strings.TrimSpace(model),
	}
}

func (s *qualityService) AssessQuality(ctx context.Context, req quality.Request) (string, error) {
	req.Defects = usableDefects(req.Defects)
	if len(req.Defects) == 0 {
		return "", quality.ErrNoDefects
	}

	resp, err := s.client.Generate(ctx, llm.Request{
		Model:  s.model,
		Prompt: assessmentPrompt(req),
	})
	if err != nil {
		s.log.Error("Quality assessment failed", "provider", s.client.Provider(), "defects", len(req.Defects), "error", err)
		return "", errors.Join(ErrAssessment, err)
	}
	return resp.Text, nil
}

func usableDefects(in []quality.Entry) []quality.Entry {
	out := make([]quality.Entry, 0, len(in))
	for _, d := range in {
		d.Type, d.Size = strings.TrimSpace(d.Type), strings.TrimSpace(d.Size)
		if d.Type == "" || d.Size == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}

package services

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
)

//go:embed presets/templates.yaml
var presetTemplates []byte

type TemplateService interface {
	List() []techcard.Template
	Get(id string) (techcard.Template, bool)
}

type templateService struct {
	templates []techcard.Template
	byID      map[string]techcard.Template
}

// NewTemplateService loads the built-in presets.
func NewTemplateService() (TemplateService, error) {
	return newTemplateService(presetTemplates)
}

func newTemplateService(raw []byte) (*templateService, error) {
	var list []techcard.Template
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	svc := &templateService{byID: make(map[string]techcard.Template, len(list))}
	for _, t := range list {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, fmt.Errorf("template %q has no id", t.Name)
		}
		if _, dup := svc.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		svc.byID[t.ID] = t
		svc.templates = append(svc.templates, t)
	}
	return svc, nil
}

func (s *templateService) List() []techcard.Template {
	return append([]techcard.Template(nil), s.templates...)
}

func (s *templateService) Get(id string) (techcard.Template, bool) {
	t, ok := s.byID[strings.TrimSpace(id)]
	return t, ok
}

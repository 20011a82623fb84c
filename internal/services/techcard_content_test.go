package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
	"github.com/yungbote/ndtmaster-backend/internal/platform/llm"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

type fakeLLM struct {
	text  string
	err   error
	calls []llm.Request
}

func (f *fakeLLM) Provider() string { return "fake" }

func (f *fakeLLM) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.text, Model: req.Model}, nil
}

const fullContentJSON = `{
  "controlProcedure": "1. Подготовка.\n2. Экспонирование.",
  "acceptanceCriteria": "Трещины не допускаются.",
  "personnelRequirements": "Уровень II.",
  "safetyPrecautions": "Ограждение зоны."
}`

func TestGenerateTechCardContentBuildsRequest(t *testing.T) {
	fake := &fakeLLM{text: fullContentJSON}
	svc := NewTechCardContentService(logger.Nop(), fake, "gemini-2.5-pro")

	form := techcard.SampleForm()
	got, err := svc.GenerateTechCardContent(context.Background(), form)
	if err != nil {
		t.Fatalf("GenerateTechCardContent: %v", err)
	}
	want := techcard.Content{
		ControlProcedure:      "1. Подготовка.\n2. Экспонирование.",
		AcceptanceCriteria:    "Трещины не допускаются.",
		PersonnelRequirements: "Уровень II.",
		SafetyPrecautions:     "Ограждение зоны.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("call count: want=1 got=%d", len(fake.calls))
	}
	req := fake.calls[0]
	if req.Model != "gemini-2.5-pro" {
		t.Fatalf("model: want=%q got=%q", "gemini-2.5-pro", req.Model)
	}
	if req.Temperature == nil || *req.Temperature != 0.2 {
		t.Fatalf("temperature: want=0.2 got=%v", req.Temperature)
	}
	if req.Schema == nil || len(req.Schema.Required) != 4 || len(req.Schema.Properties) != 4 {
		t.Fatalf("schema should require the four sections, got %+v", req.Schema)
	}
	for _, s := range []string{
		`Заказчик: ПАО "Газпром"`,
		"Номер сварного соединения: SS-01-001",
		"Диаметр, мм: 1420",
		`Используемое оборудование: Источник излучения: РПД-250, Пленка: Agfa D7, Проявочная машина: "Омега"`,
		"- Порядок проведения контроля (controlProcedure)",
	} {
		if !strings.Contains(req.Prompt, s) {
			t.Fatalf("prompt missing %q:\n%s", s, req.Prompt)
		}
	}
}

func TestGenerateTechCardContentRejectsBadResponses(t *testing.T) {
	cases := map[string]*fakeLLM{
		"provider error":  {err: errors.New("quota")},
		"not json":        {text: "Вот ваша техкарта"},
		"missing section": {text: `{"controlProcedure":"a","acceptanceCriteria":"b","personnelRequirements":"c"}`},
		"blank section":   {text: `{"controlProcedure":"a","acceptanceCriteria":"b","personnelRequirements":"c","safetyPrecautions":"  "}`},
	}
	for name, fake := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewTechCardContentService(logger.Nop(), fake, "")
			got, err := svc.GenerateTechCardContent(context.Background(), techcard.SampleForm())
			if !errors.Is(err, ErrContentGeneration) {
				t.Fatalf("want ErrContentGeneration, got %v", err)
			}
			if got != (techcard.Content{}) {
				t.Fatalf("partial content returned: %+v", got)
			}
		})
	}
}

func TestGenerateTechCardContentKeepsProviderCause(t *testing.T) {
	cause := errors.New("deadline")
	svc := NewTechCardContentService(logger.Nop(), &fakeLLM{err: cause}, "")
	_, err := svc.GenerateTechCardContent(context.Background(), techcard.SampleForm())
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestGenerateTechCardContentStripsMarkup(t *testing.T) {
	fake := &fakeLLM{text: `{
	  "controlProcedure": "<b>Шаг 1</b> <script>alert(1)</script>",
	  "acceptanceCriteria": "a < b",
	  "personnelRequirements": "c",
	  "safetyPrecautions": "d"
	}`}
	svc := NewTechCardContentService(logger.Nop(), fake, "")
	got, err := svc.GenerateTechCardContent(context.Background(), techcard.SampleForm())
	if err != nil {
		t.Fatalf("GenerateTechCardContent: %v", err)
	}
	if got.ControlProcedure != "Шаг 1" {
		t.Fatalf("controlProcedure: want=%q got=%q", "Шаг 1", got.ControlProcedure)
	}
	if got.AcceptanceCriteria != "a < b" {
		t.Fatalf("acceptanceCriteria: want=%q got=%q", "a < b", got.AcceptanceCriteria)
	}
}

func TestAssessQualityRequiresDefects(t *testing.T) {
	fake := &fakeLLM{text: "Годен"}
	svc := NewQualityService(logger.Nop(), fake, "")

	_, err := svc.AssessQuality(context.Background(), quality.Request{
		Method:  "Радиографический",
		Defects: []quality.Entry{{Type: "Трещина", Size: ""}, {Type: " ", Size: "2"}},
	})
	if !errors.Is(err, quality.ErrNoDefects) {
		t.Fatalf("want ErrNoDefects, got %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("provider must not be called, got %d calls", len(fake.calls))
	}
}

func TestAssessQualityPrompt(t *testing.T) {
	fake := &fakeLLM{text: "Заключение: Годен."}
	svc := NewQualityService(logger.Nop(), fake, "gemini-2.5-pro")

	got, err := svc.AssessQuality(context.Background(), quality.Request{
		Method:            "Радиографический",
		NormativeDocument: "ГОСТ 7512",
		Thickness:         "3.6",
		Defects: []quality.Entry{
			{Type: "Одиночное включение", Size: "1.2"},
			{Type: "Скопление", Size: ""},
			{Type: "Трещина", Size: "0.5"},
		},
	})
	if err != nil {
		t.Fatalf("AssessQuality: %v", err)
	}
	if got != "Заключение: Годен." {
		t.Fatalf("result: want=%q got=%q", "Заключение: Годен.", got)
	}
	req := fake.calls[0]
	if req.Schema != nil || req.Temperature != nil {
		t.Fatalf("assessment is plain text, got schema=%v temperature=%v", req.Schema, req.Temperature)
	}
	for _, s := range []string{
		"- Толщина стенки: 3.6 мм",
		"- Тип: Одиночное включение, Размер: 1.2 мм\n- Тип: Трещина, Размер: 0.5 мм",
		`"Годен" или "Брак"`,
	} {
		if !strings.Contains(req.Prompt, s) {
			t.Fatalf("prompt missing %q:\n%s", s, req.Prompt)
		}
	}
	if strings.Contains(req.Prompt, "Скопление") {
		t.Fatalf("incomplete defect leaked into prompt:\n%s", req.Prompt)
	}
}

func TestAssessQualityProviderFailure(t *testing.T) {
	svc := NewQualityService(logger.Nop(), &fakeLLM{err: errors.New("boom")}, "")
	_, err := svc.AssessQuality(context.Background(), quality.DefaultForm().Request())
	if !errors.Is(err, ErrAssessment) {
		t.Fatalf("want ErrAssessment, got %v", err)
	}
}

func TestUnavailableClientFailsWithUserMessage(t *testing.T) {
	svc := NewTechCardContentService(logger.Nop(), llm.Unavailable("gemini", nil), "")
	_, err := svc.GenerateTechCardContent(context.Background(), techcard.SampleForm())
	if !errors.Is(err, ErrContentGeneration) || !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("unexpected error chain: %v", err)
	}
}

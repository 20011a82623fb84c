package services

import (
	"fmt"
	"strings"

	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
	"github.com/yungbote/ndtmaster-backend/internal/platform/llm"
)

const techCardPromptTemplate = `
Создай содержимое для технологической карты неразрушающего контроля на основе следующих данных.
Ответ должен быть в формате JSON и соответствовать предоставленной схеме.

Заказчик: %s
Объект: %s
Номер сварного соединения: %s
Объект контроля: %s
Нормативный документ: %s
Тип сварного соединения: %s
Толщина, мм: %s
Диаметр, мм: %s
Метод контроля: %s
Уровень качества: %s
Чувствительность: %s
Используемое оборудование: %s

Сгенерируй следующие разделы:
- Порядок проведения контроля (controlProcedure)
- Нормы оценки качества (acceptanceCriteria)
- Требования к персоналу (personnelRequirements)
- Требования по технике безопасности (safetyPrecautions)
`

const assessmentPromptTemplate = `
Проведи оценку качества сварного шва на основе предоставленных данных.
Дай четкое заключение: "Годен" или "Брак".
Обоснуй свое решение, ссылаясь на конкретные пункты нормативного документа.
Ответ должен быть на русском языке.

Исходные данные:
- Метод контроля: %s
- Нормативный документ: %s
- Толщина стенки: %s мм
- Обнаруженные дефекты:
%s
`

func techCardPrompt(f techcard.FormData) string {
	return fmt.Sprintf(techCardPromptTemplate,
		f.Customer,
		f.Facility,
		f.WeldConnectionNumber,
		f.ControlObject,
		f.NormativeDocument,
		f.WeldType,
		f.Thickness,
		f.Diameter,
		f.ControlMethod,
		f.QualityLevel,
		f.Sensitivity,
		strings.Join(f.CleanEquipment(), ", "),
	)
}

func assessmentPrompt(req quality.Request) string {
	lines := make([]string, 0, len(req.Defects))
	for _, d := range req.Defects {
		lines = append(lines, fmt.Sprintf("- Тип: %s, Размер: %s мм", d.Type, d.Size))
	}
	return fmt.Sprintf(assessmentPromptTemplate,
		req.Method,
		req.NormativeDocument,
		req.Thickness,
		strings.Join(lines, "\n"),
	)
}

var techCardSections = []string{
	"controlProcedure",
	"acceptanceCriteria",
	"personnelRequirements",
	"safetyPrecautions",
}

func techCardSchema() *llm.Schema {
	str := func(desc string) *llm.Schema {
		return &llm.Schema{Type: "string", Description: desc}
	}
	return &llm.Schema{
		Type: "object",
		Properties: map[string]*llm.Schema{
			"controlProcedure":      str("Detailed step-by-step procedure for the non-destructive testing method. Should be written in Russian."),
			"acceptanceCriteria":    str("The criteria for accepting or rejecting the weld based on the normative document. Should be written in Russian."),
			"personnelRequirements": str("Requirements for the qualifications of the personnel performing the test. Should be written in Russian."),
			"safetyPrecautions":     str("Safety precautions to be taken during the testing process. Should be written in Russian."),
		},
		Required: techCardSections,
		Order:    techCardSections,
	}
}

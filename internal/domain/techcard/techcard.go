package techcard

import (
	"fmt"
	"strings"
)

// FormData is what the operator enters on the tech card form. Every field is
// free text; numeric values are kept as typed.
type FormData struct {
	Customer             string   `json:"customer" yaml:"customer" form:"customer"`
	Facility             string   `json:"facility" yaml:"facility" form:"facility"`
	WeldConnectionNumber string   `json:"weldConnectionNumber" yaml:"weldConnectionNumber" form:"weldConnectionNumber"`
	ControlObject        string   `json:"controlObject" yaml:"controlObject" form:"controlObject"`
	NormativeDocument    string   `json:"normativeDocument" yaml:"normativeDocument" form:"normativeDocument"`
	WeldType             string   `json:"weldType" yaml:"weldType" form:"weldType"`
	Thickness            string   `json:"thickness" yaml:"thickness" form:"thickness"`
	Diameter             string   `json:"diameter" yaml:"diameter" form:"diameter"`
	ControlMethod        string   `json:"controlMethod" yaml:"controlMethod" form:"controlMethod"`
	QualityLevel         string   `json:"qualityLevel" yaml:"qualityLevel" form:"qualityLevel"`
	Sensitivity          string   `json:"sensitivity" yaml:"sensitivity" form:"sensitivity"`
	Equipment            []string `json:"equipment" yaml:"equipment" form:"equipment"`
}

// Content holds the four narrative sections produced by the AI service.
type Content struct {
	ControlProcedure      string `json:"controlProcedure"`
	AcceptanceCriteria    string `json:"acceptanceCriteria"`
	PersonnelRequirements string `json:"personnelRequirements"`
	SafetyPrecautions     string `json:"safetyPrecautions"`
}

// Data is the assembled tech card: form metadata plus generated sections.
type Data struct {
	FormData
	Content
}

// Merge combines form data with generated content.
func Merge(form FormData, content Content) Data {
	form.Equipment = append([]string(nil), form.Equipment...)
	return Data{FormData: form, Content: content}
}

// FieldError names a required field left blank.
type FieldError struct {
	Field string
	Label string
}

// ValidationError lists every blank required field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	labels := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		labels = append(labels, f.Label)
	}
	return fmt.Sprintf("Заполните обязательные поля: %s", strings.Join(labels, ", "))
}

// Validate enforces "required" on every scalar field. Equipment may be empty,
// blank equipment rows are ignored.
func (f FormData) Validate() error {
	var missing []FieldError
	for _, field := range f.fields() {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, FieldError{Field: field.name, Label: field.label})
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

type formField struct {
	name  string
	label string
	value string
}

func (f FormData) fields() []formField {
	return []formField{
		{"customer", "Заказчик", f.Customer},
		{"facility", "Объект", f.Facility},
		{"weldConnectionNumber", "Номер сварного соединения", f.WeldConnectionNumber},
		{"controlObject", "Объект контроля", f.ControlObject},
		{"normativeDocument", "Нормативный документ", f.NormativeDocument},
		{"weldType", "Тип сварного соединения", f.WeldType},
		{"thickness", "Толщина, мм", f.Thickness},
		{"diameter", "Диаметр, мм", f.Diameter},
		{"controlMethod", "Метод контроля", f.ControlMethod},
		{"qualityLevel", "Уровень качества", f.QualityLevel},
		{"sensitivity", "Чувствительность", f.Sensitivity},
	}
}

// CleanEquipment drops blank rows and trims the rest, keeping order.
func (f FormData) CleanEquipment() []string {
	out := make([]string, 0, len(f.Equipment))
	for _, e := range f.Equipment {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// AddEquipment appends an empty row.
func (f *FormData) AddEquipment() {
	f.Equipment = append(f.Equipment, "")
}

// RemoveEquipment deletes the row at index i. Out of range is a no-op.
func (f *FormData) RemoveEquipment(i int) {
	if i < 0 || i >= len(f.Equipment) {
		return
	}
	f.Equipment = append(f.Equipment[:i:i], f.Equipment[i+1:]...)
}

// Complete reports whether all four generated sections carry text.
func (c Content) Complete() bool {
	return strings.TrimSpace(c.ControlProcedure) != "" &&
		strings.TrimSpace(c.AcceptanceCriteria) != "" &&
		strings.TrimSpace(c.PersonnelRequirements) != "" &&
		strings.TrimSpace(c.SafetyPrecautions) != ""
}

// MissingSections lists the JSON names of blank sections.
func (c Content) MissingSections() []string {
	var out []string
	if strings.TrimSpace(c.ControlProcedure) == "" {
		out = append(out, "controlProcedure")
	}
	if strings.TrimSpace(c.AcceptanceCriteria) == "" {
		out = append(out, "acceptanceCriteria")
	}
	if strings.TrimSpace(c.PersonnelRequirements) == "" {
		out = append(out, "personnelRequirements")
	}
	if strings.TrimSpace(c.SafetyPrecautions) == "" {
		out = append(out, "safetyPrecautions")
	}
	return out
}

// Title is the display name used by the card list: "ТК № <number>".
func (d Data) Title() string {
	return "ТК № " + strings.TrimSpace(d.WeldConnectionNumber)
}

// SampleForm returns the pre-filled values the form opens with.
func SampleForm() FormData {
	return FormData{
		Customer:             `ПАО "Газпром"`,
		Facility:             `МГ "Сила Сибири"`,
		WeldConnectionNumber: "SS-01-001",
		ControlObject:        "Кольцевой сварной шов",
		NormativeDocument:    "СТО Газпром 2-2.4-083-2006",
		WeldType:             "Стыковое",
		Thickness:            "12.5",
		Diameter:             "1420",
		ControlMethod:        "Радиографический",
		QualityLevel:         "B (по ISO 5817)",
		Sensitivity:          "Класс 2 по ГОСТ 7512",
		Equipment: []string{
			"Источник излучения: РПД-250",
			"Пленка: Agfa D7",
			`Проявочная машина: "Омега"`,
		},
	}
}

// ControlMethods are the options offered by the form.
var ControlMethods = []string{
	"Радиографический",
	"Ультразвуковой",
	"Визуальный и измерительный",
	"Капиллярный",
	"Магнитопорошковый",
}

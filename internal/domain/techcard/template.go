package techcard

// Template is a named preset for one normative document and control method.
type Template struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	DefaultValues TemplateValues `json:"defaultValues" yaml:"defaultValues"`
}

type TemplateValues struct {
	NormativeDocument string `json:"normativeDocument,omitempty" yaml:"normativeDocument"`
	ControlMethod     string `json:"controlMethod,omitempty" yaml:"controlMethod"`
	Sensitivity       string `json:"sensitivity,omitempty" yaml:"sensitivity"`
	QualityLevel      string `json:"qualityLevel,omitempty" yaml:"qualityLevel"`
}

// Apply overlays the template's non-empty defaults on form.
func (t Template) Apply(form FormData) FormData {
	v := t.DefaultValues
	if v.NormativeDocument != "" {
		form.NormativeDocument = v.NormativeDocument
	}
	if v.ControlMethod != "" {
		form.ControlMethod = v.ControlMethod
	}
	if v.Sensitivity != "" {
		form.Sensitivity = v.Sensitivity
	}
	if v.QualityLevel != "" {
		form.QualityLevel = v.QualityLevel
	}
	return form
}

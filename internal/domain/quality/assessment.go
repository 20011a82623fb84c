package quality

import "errors"

// ErrNoDefects is returned before any external call when no defect has both
// a type and a size.
var ErrNoDefects = errors.New("Пожалуйста, добавьте хотя бы один дефект с типом и размером.")

type Request struct {
	Method            string  `json:"method"`
	NormativeDocument string  `json:"normativeDocument"`
	Thickness         string  `json:"thickness"`
	Defects           []Entry `json:"defects"`
}

// Form is the state of the assessment page.
type Form struct {
	Method            string
	NormativeDocument string
	Thickness         string
	Defects           DefectList
}

// Request builds the service request from the page state.
func (f Form) Request() Request {
	return Request{
		Method:            f.Method,
		NormativeDocument: f.NormativeDocument,
		Thickness:         f.Thickness,
		Defects:           f.Defects.Entries(),
	}
}

func DefaultForm() Form {
	return Form{
		Method:            "Радиографический",
		NormativeDocument: "ГОСТ 7512",
		Thickness:         "3.6",
		Defects:           DefectList{}.Add(Defect{Type: "Одиночное включение", Size: "1.2"}),
	}
}

var (
	Methods            = []string{"Радиографический", "Визуальный и измерительный", "Капиллярный"}
	NormativeDocuments = []string{"ГОСТ 7512", "НП-105-18", "ГОСТ Р 50.05.7-19"}
	DefectTypes        = []string{"Одиночное включение", "Скопление", "Трещина", "Непровар"}
)

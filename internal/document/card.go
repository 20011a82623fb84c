package document

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
)

// CardRootID is the id of the exported node in a rendered card.
const CardRootID = "tech-card"

var (
	//go:embed assets/techcard.html
	cardTemplateSource string
	//go:embed assets/techcard.css
	cardCSS string

	cardTemplate = template.Must(template.New("techcard").Parse(cardTemplateSource))
)

type cardSection struct {
	Title string
	Text  string
}

type cardView struct {
	Title     string
	CSS       template.CSS
	RootID    string
	Method    string
	Equipment string
	Card      techcard.Data
	Sections  []cardSection
}

// CardStyles returns the card stylesheet for pages that embed the card.
func CardStyles() template.CSS { return template.CSS(cardCSS) }

// RenderTechCard lays the card out as a standalone HTML document whose
// root node is addressed by the returned Element.
func RenderTechCard(card techcard.Data) (Element, error) {
	view := cardView{
		Title:     card.Title(),
		CSS:       CardStyles(),
		RootID:    CardRootID,
		Method:    strings.ToLower(card.ControlMethod),
		Equipment: strings.Join(card.Equipment, ", "),
		Card:      card,
		Sections: []cardSection{
			{"1. Порядок проведения контроля", card.ControlProcedure},
			{"2. Нормы оценки качества", card.AcceptanceCriteria},
			{"3. Требования к персоналу", card.PersonnelRequirements},
			{"4. Требования по технике безопасности", card.SafetyPrecautions},
		},
	}
	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, view); err != nil {
		return Element{}, fmt.Errorf("render tech card: %w", err)
	}
	return Element{Page: buf.String(), Selector: "#" + CardRootID}, nil
}

// FileName is the download base name for a card: TechCard_<weld number>,
// with characters unsafe in file names and headers replaced by "_".
func FileName(card techcard.Data) string {
	return "TechCard_" + sanitizeFileName(card.WeldConnectionNumber)
}

func sanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x20, r == 0x7f:
			continue
		case strings.ContainsRune(`/\:*?"<>|;`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

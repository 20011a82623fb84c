package document

import (
	"context"
	"fmt"

	"github.com/yungbote/ndtmaster-backend/internal/document/inline"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocxConverter turns Word-flavoured HTML into a .docx file.
type DocxConverter interface {
	Available() bool
	ConvertHTMLToDOCX(ctx context.Context, html []byte) ([]byte, error)
}

type DocxGenerator struct {
	log     *logger.Logger
	inliner inline.Inliner
	conv    DocxConverter
}

func NewDocxGenerator(log *logger.Logger, inliner inline.Inliner, conv DocxConverter) *DocxGenerator {
	return &DocxGenerator{log: log.With("generator", "docx"), inliner: inliner, conv: conv}
}

func (g *DocxGenerator) Format() Format { return FormatDOCX }

func (g *DocxGenerator) Generate(ctx context.Context, el Element, fileName string, dl Downloader) error {
	if g.conv == nil || !g.conv.Available() {
		g.log.Error("DOCX converter is not available")
		return ErrDOCXUnavailable
	}

	styled, err := g.inliner.Inline(ctx, el)
	if err != nil {
		return fmt.Errorf("inline styles: %w", err)
	}
	data, err := g.conv.ConvertHTMLToDOCX(ctx, []byte(wordEnvelope(styled.HTML)))
	if err != nil {
		return fmt.Errorf("convert to docx: %w", err)
	}

	return dl.Save(ctx, File{
		Name:        fileName + ".docx",
		ContentType: DocxContentType,
		Data:        data,
	})
}

// wordEnvelope wraps body in the HTML header Word expects: Office
// namespaces, UTF-8 and print view at 90% zoom.
func wordEnvelope(body string) string {
	return `<!DOCTYPE html>
<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>
<head>
<meta charset='utf-8'>
<title>Generated Document</title>
<!--[if gte mso 9]>
<xml>
<w:WordDocument>
<w:View>Print</w:View>
<w:Zoom>90</w:Zoom>
</w:WordDocument>
</xml>
<![endif]-->
</head>
<body>
` + body + `
</body>
</html>
`
}

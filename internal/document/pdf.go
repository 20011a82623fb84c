package document

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/yungbote/ndtmaster-backend/internal/platform/browser"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

// PageRenderer is the headless browser capability the PDF pipeline uses.
type PageRenderer interface {
	Available() bool
	Screenshot(ctx context.Context, html, selector string, viewportWidth int, scale float64) ([]byte, error)
	PrintPDF(ctx context.Context, html string, opts browser.PrintOptions) ([]byte, error)
}

// PDFOptions describe the page. Lengths are centimetres.
type PDFOptions struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginLeft   float64
	MarginBottom float64
	MarginRight  float64
	// Scale is the device pixel ratio of the capture.
	Scale float64
	// JPEGQuality is 1..100.
	JPEGQuality   int
	ViewportWidth int
}

// DefaultPDFOptions: A4 portrait, margins 2 / 1.5 / 2 / 1.5 cm, capture at
// 2x, JPEG quality 98.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageWidth:     21.0,
		PageHeight:    29.7,
		MarginTop:     2,
		MarginLeft:    1.5,
		MarginBottom:  2,
		MarginRight:   1.5,
		Scale:         2,
		JPEGQuality:   98,
		ViewportWidth: 794,
	}
}

func (o PDFOptions) contentWidth() float64  { return o.PageWidth - o.MarginLeft - o.MarginRight }
func (o PDFOptions) contentHeight() float64 { return o.PageHeight - o.MarginTop - o.MarginBottom }

// contentPixels is the content box width in capture pixels (96 dpi times
// Scale).
func (o PDFOptions) contentPixels() int {
	return int(math.Round(o.contentWidth() / 2.54 * 96 * o.Scale))
}

func (o PDFOptions) printOptions() browser.PrintOptions {
	in := func(cm float64) float64 { return cm / 2.54 }
	return browser.PrintOptions{
		PaperWidth:   in(o.PageWidth),
		PaperHeight:  in(o.PageHeight),
		MarginTop:    in(o.MarginTop),
		MarginBottom: in(o.MarginBottom),
		MarginLeft:   in(o.MarginLeft),
		MarginRight:  in(o.MarginRight),
	}
}

// PdfGenerator rasterises the element and lays the image out over A4 pages,
// the way a canvas-to-PDF exporter does.
type PdfGenerator struct {
	log  *logger.Logger
	r    PageRenderer
	opts PDFOptions
}

func NewPdfGenerator(log *logger.Logger, r PageRenderer, opts PDFOptions) *PdfGenerator {
	return &PdfGenerator{log: log.With("generator", "pdf"), r: r, opts: opts}
}

func (g *PdfGenerator) Format() Format { return FormatPDF }

func (g *PdfGenerator) Generate(ctx context.Context, el Element, fileName string, dl Downloader) error {
	if g.r == nil || !g.r.Available() {
		g.log.Error("PDF renderer is not available")
		return ErrPDFUnavailable
	}

	shot, err := g.r.Screenshot(ctx, el.Page, el.Selector, g.opts.ViewportWidth, g.opts.Scale)
	if err != nil {
		return fmt.Errorf("capture element: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return fmt.Errorf("decode capture: %w", err)
	}

	pages, err := paginate(img, g.opts)
	if err != nil {
		return err
	}
	doc, err := pagesHTML(pages, g.opts)
	if err != nil {
		return err
	}
	data, err := g.r.PrintPDF(ctx, doc, g.opts.printOptions())
	if err != nil {
		return fmt.Errorf("print pdf: %w", err)
	}

	return dl.Save(ctx, File{
		Name:        fileName + ".pdf",
		ContentType: "application/pdf",
		Data:        data,
	})
}

// paginate scales img to the content width and cuts it into page-high
// slices on white canvases.
func paginate(img image.Image, o PDFOptions) ([]image.Image, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty capture")
	}
	width := o.contentPixels()
	height := int(math.Round(float64(b.Dy()) * float64(width) / float64(b.Dx())))
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)

	pageH := int(math.Round(float64(width) * o.contentHeight() / o.contentWidth()))
	var pages []image.Image
	for y := 0; y < height; y += pageH {
		h := pageH
		if y+h > height {
			h = height - y
		}
		dc := gg.NewContext(width, h)
		dc.SetColor(color.White)
		dc.Clear()
		dc.DrawImage(scaled.SubImage(image.Rect(0, y, width, y+h)), 0, -y)
		pages = append(pages, dc.Image())
	}
	return pages, nil
}

func pagesHTML(pages []image.Image, o PDFOptions) (string, error) {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><style>`)
	b.WriteString(`html,body{margin:0;padding:0;background:#fff;}`)
	fmt.Fprintf(&b, `.page{width:%.2fcm;page-break-after:always;break-after:page;}`, o.contentWidth())
	b.WriteString(`.page:last-child{page-break-after:auto;break-after:auto;}`)
	b.WriteString(`.page img{display:block;width:100%;}`)
	b.WriteString(`</style></head><body>`)
	for i, p := range pages {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, p, &jpeg.Options{Quality: o.JPEGQuality}); err != nil {
			return "", fmt.Errorf("encode page %d: %w", i+1, err)
		}
		fmt.Fprintf(&b, `<div class="page"><img alt="page %d" src="data:image/jpeg;base64,%s"></div>`,
			i+1, base64.StdEncoding.EncodeToString(buf.Bytes()))
	}
	b.WriteString(`</body></html>`)
	return b.String(), nil
}

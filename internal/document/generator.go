// Package document renders tech cards and exports them as PDF or DOCX.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/ndtmaster-backend/internal/document/inline"
	"github.com/yungbote/ndtmaster-backend/internal/observability"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

// Element is the node to export: a full page plus a selector for its root.
type Element = inline.Element

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

func (f Format) Label() string { return strings.ToUpper(string(f)) }

// ParseFormat accepts "pdf" and "docx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatDOCX:
		return f, nil
	}
	return "", &UnsupportedFormatError{Format: s}
}

var (
	ErrElementMissing  = errors.New("Target element for document generation not found.")
	ErrPDFUnavailable  = errors.New("PDF generation library is not available.")
	ErrDOCXUnavailable = errors.New("DOCX generation library is not available.")
	ErrExportTimeout   = errors.New("Document generation timed out.")
)

type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("Unsupported document format: %s", e.Format)
}

// File is a finished document handed to a Downloader.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Downloader delivers a file to the user: an HTTP attachment or a file on
// disk.
type Downloader interface {
	Save(ctx context.Context, f File) error
}

type Generator interface {
	Format() Format
	// Generate converts el and calls dl.Save exactly once on success and
	// never on failure.
	Generate(ctx context.Context, el Element, fileName string, dl Downloader) error
}

type Service struct {
	log        *logger.Logger
	generators map[Format]Generator
	timeout    time.Duration
}

func NewService(log *logger.Logger, gens ...Generator) *Service {
	s := &Service{
		log:        log.With("service", "DocumentService"),
		generators: make(map[Format]Generator, len(gens)),
	}
	for _, g := range gens {
		s.generators[g.Format()] = g
	}
	return s
}

// WithTimeout bounds every GenerateDocument call by d. Zero means no bound
// beyond the caller's context.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// GenerateDocument dispatches to the generator for format. A call cut off by
// the service timeout fails with ErrExportTimeout and context.DeadlineExceeded.
func (s *Service) GenerateDocument(ctx context.Context, el Element, fileName string, format Format, dl Downloader) error {
	if strings.TrimSpace(el.Page) == "" || strings.TrimSpace(el.Selector) == "" {
		return ErrElementMissing
	}
	g, ok := s.generators[format]
	if !ok {
		return &UnsupportedFormatError{Format: string(format)}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	counted := &countingDownloader{next: dl}
	err := g.Generate(ctx, el, fileName, counted)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = errors.Join(ErrExportTimeout, ctx.Err(), err)
	}
	status := "ok"
	if err != nil {
		status = "error"
		s.log.Warn("Document generation failed", "format", format, "file", fileName, "error", err)
	} else {
		s.log.Info("Document generated", "format", format, "file", fileName, "bytes", counted.size, "duration_ms", time.Since(start).Milliseconds())
	}
	observability.Current().ObserveExport(string(format), status, time.Since(start), counted.size)
	return err
}

type countingDownloader struct {
	next Downloader
	size int
}

func (c *countingDownloader) Save(ctx context.Context, f File) error {
	c.size += len(f.Data)
	return c.next.Save(ctx, f)
}

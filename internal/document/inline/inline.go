// Package inline resolves the styles of a rendered fragment into inline
// style attributes, for consumers that ignore stylesheets (Word).
package inline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/ndtmaster-backend/internal/platform/browser"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

var ErrElementNotFound = errors.New("inline: target element not found")

// Element is a full HTML document and a selector naming the node to export.
type Element struct {
	Page     string
	Selector string
}

type Result struct {
	// HTML is the outerHTML of the styled clone.
	HTML string
	// Elements counts the elements in the clone, root included.
	Elements int
}

type Inliner interface {
	Name() string
	Inline(ctx context.Context, el Element) (Result, error)
}

// StyleResolver is the browser capability BrowserInliner needs.
type StyleResolver interface {
	Available() bool
	InlineStyles(ctx context.Context, html, selector string) (browser.InlineResult, error)
}

// BrowserInliner takes every computed property from a real layout engine.
type BrowserInliner struct {
	r StyleResolver
}

func NewBrowserInliner(r StyleResolver) *BrowserInliner {
	return &BrowserInliner{r: r}
}

func (b *BrowserInliner) Name() string { return "browser" }

func (b *BrowserInliner) Inline(ctx context.Context, el Element) (Result, error) {
	if strings.TrimSpace(el.Selector) == "" {
		return Result{}, ErrElementNotFound
	}
	res, err := b.r.InlineStyles(ctx, el.Page, el.Selector)
	if errors.Is(err, browser.ErrElementNotFound) {
		return Result{}, ErrElementNotFound
	}
	if err != nil {
		return Result{}, err
	}
	if res.Elements != res.SourceElements {
		return Result{}, fmt.Errorf("inline: clone has %d elements, source has %d", res.Elements, res.SourceElements)
	}
	return Result{HTML: res.HTML, Elements: res.Elements}, nil
}

// New prefers the browser when one is reachable and falls back to the
// static cascade otherwise.
func New(log *logger.Logger, r StyleResolver) Inliner {
	if r != nil && r.Available() {
		log.Info("Style inliner selected", "inliner", "browser")
		return NewBrowserInliner(r)
	}
	log.Info("Style inliner selected", "inliner", "static")
	return NewStaticInliner()
}

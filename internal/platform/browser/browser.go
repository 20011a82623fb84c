// Package browser drives a headless Chrome through go-rod for the two jobs
// that need a real layout engine: resolving computed styles and rasterising
// or printing rendered documents.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/yungbote/ndtmaster-backend/internal/platform/ctxutil"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

var (
	ErrUnavailable     = errors.New("browser: no headless chrome available")
	ErrElementNotFound = errors.New("browser: target element not found")
)

const (
	ModeLaunch = "launch"
	ModeRemote = "remote"
	ModeOff    = "off"
)

type Config struct {
	Mode       string
	ControlURL string
	Bin        string
}

// PrintOptions mirror Chrome's Page.printToPDF. Lengths are inches.
type PrintOptions struct {
	PaperWidth   float64
	PaperHeight  float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	Landscape    bool
}

type InlineResult struct {
	HTML           string `json:"html"`
	Elements       int    `json:"elements"`
	SourceElements int    `json:"source"`
}

// Manager owns one Chrome process (or remote connection) and opens a fresh
// tab per operation.
type Manager struct {
	log *logger.Logger
	cfg Config

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func NewManager(log *logger.Logger, cfg Config) *Manager {
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if cfg.Mode == "" {
		cfg.Mode = ModeLaunch
	}
	return &Manager{log: log.With("service", "BrowserManager"), cfg: cfg}
}

// Available reports whether a browser can be reached right now without
// starting one.
func (m *Manager) Available() bool {
	if m == nil {
		return false
	}
	switch m.cfg.Mode {
	case ModeOff:
		return false
	case ModeRemote:
		return strings.TrimSpace(m.cfg.ControlURL) != ""
	}
	if bin := strings.TrimSpace(m.cfg.Bin); bin != "" {
		_, err := exec.LookPath(bin)
		return err == nil
	}
	_, has := launcher.LookPath()
	return has
}

func (m *Manager) ensure(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return m.browser, nil
		}
		m.log.Warn("stale browser connection, reconnecting")
		m.closeLocked()
	}
	if !m.Available() {
		return nil, ErrUnavailable
	}

	controlURL := strings.TrimSpace(m.cfg.ControlURL)
	if m.cfg.Mode == ModeLaunch {
		l := launcher.New().Headless(true).Leakless(false)
		if bin := strings.TrimSpace(m.cfg.Bin); bin != "" {
			l = l.Bin(bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		m.launcher = l
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	m.browser = b
	m.log.Info("browser connected", "mode", m.cfg.Mode)
	return b, nil
}

func (m *Manager) withPage(ctx context.Context, html string, fn func(page *rod.Page) error) error {
	ctx = ctxutil.Default(ctx)
	b, err := m.ensure(ctx)
	if err != nil {
		return err
	}
	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetDocumentContent(html); err != nil {
		return fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	return fn(page)
}

// Screenshot renders page and captures the element matched by selector as
// PNG at the given device scale factor.
func (m *Manager) Screenshot(ctx context.Context, html, selector string, viewportWidth int, scale float64) ([]byte, error) {
	var out []byte
	err := m.withPage(ctx, html, func(page *rod.Page) error {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             viewportWidth,
			Height:            1123,
			DeviceScaleFactor: scale,
		}); err != nil {
			return fmt.Errorf("set viewport: %w", err)
		}
		has, el, err := page.Has(selector)
		if err != nil {
			return fmt.Errorf("query %q: %w", selector, err)
		}
		if !has {
			return ErrElementNotFound
		}
		data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
		if err != nil {
			return fmt.Errorf("element screenshot: %w", err)
		}
		out = data
		return nil
	})
	return out, err
}

// PrintPDF renders html and prints it with Chrome's PDF backend.
func (m *Manager) PrintPDF(ctx context.Context, html string, opts PrintOptions) ([]byte, error) {
	var out []byte
	err := m.withPage(ctx, html, func(page *rod.Page) error {
		r, err := page.PDF(&proto.PagePrintToPDF{
			Landscape:       opts.Landscape,
			PrintBackground: true,
			PaperWidth:      ptr(opts.PaperWidth),
			PaperHeight:     ptr(opts.PaperHeight),
			MarginTop:       ptr(opts.MarginTop),
			MarginBottom:    ptr(opts.MarginBottom),
			MarginLeft:      ptr(opts.MarginLeft),
			MarginRight:     ptr(opts.MarginRight),
		})
		if err != nil {
			return fmt.Errorf("print to pdf: %w", err)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read pdf stream: %w", err)
		}
		out = data
		return nil
	})
	return out, err
}

// inlineJS clones the target, parks it off-screen (still laid out so that
// computed styles resolve), copies every computed property into the style
// attribute of each element in the clone, then removes the clone.
const inlineJS = `(selector) => {
	const node = document.querySelector(selector);
	if (!node) return null;
	const clone = node.cloneNode(true);
	clone.style.position = 'absolute';
	clone.style.left = '-9999px';
	clone.style.top = '-9999px';
	document.body.appendChild(clone);
	const elements = [clone, ...clone.querySelectorAll('*')];
	for (const el of elements) {
		const cs = window.getComputedStyle(el);
		let style = '';
		for (let i = 0; i < cs.length; i++) {
			const name = cs[i];
			style += name + ':' + cs.getPropertyValue(name) + ';';
		}
		el.setAttribute('style', style);
	}
	const html = clone.outerHTML;
	document.body.removeChild(clone);
	return JSON.stringify({html: html, elements: elements.length, source: 1 + node.querySelectorAll('*').length});
}`

func (m *Manager) InlineStyles(ctx context.Context, html, selector string) (InlineResult, error) {
	var out InlineResult
	err := m.withPage(ctx, html, func(page *rod.Page) error {
		res, err := page.Evaluate(&rod.EvalOptions{
			JS:      inlineJS,
			JSArgs:  []interface{}{selector},
			ByValue: true,
		})
		if err != nil {
			return fmt.Errorf("inline styles: %w", err)
		}
		if res == nil || res.Value.Nil() {
			return ErrElementNotFound
		}
		if err := json.Unmarshal([]byte(res.Value.String()), &out); err != nil {
			return fmt.Errorf("decode inline result: %w", err)
		}
		return nil
	})
	return out, err
}

func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *Manager) closeLocked() error {
	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.launcher != nil {
		m.launcher.Kill()
		m.launcher = nil
	}
	return err
}

func ptr[T any](v T) *T { return &v }

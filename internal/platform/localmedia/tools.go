package localmedia

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/ndtmaster-backend/internal/platform/ctxutil"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

var ErrSofficeMissing = errors.New("localmedia: soffice not found in PATH")

// Tools is the glue around the LibreOffice binary (soffice) used to turn
// Word-flavoured HTML into DOCX.
type Tools interface {
	// Available reports whether soffice can be found right now.
	Available() bool
	AssertReady(ctx context.Context) error
	ConvertHTMLToDOCX(ctx context.Context, html []byte) ([]byte, error)
	WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error)
}

type Options struct {
	SofficePath string
	WorkRoot    string
	Timeout     time.Duration
}

// runner abstracts process execution for tests.
type runner interface {
	LookPath(file string) (string, error)
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type tools struct {
	log *logger.Logger
	run runner

	sofficePath    string
	workRoot       string
	defaultTimeout time.Duration
}

func New(log *logger.Logger, opts Options) Tools {
	return newTools(log, opts, osRunner{})
}

func newTools(log *logger.Logger, opts Options, run runner) *tools {
	t := &tools{
		log:            log.With("service", "OfficeTools"),
		run:            run,
		sofficePath:    strings.TrimSpace(opts.SofficePath),
		workRoot:       strings.TrimSpace(opts.WorkRoot),
		defaultTimeout: opts.Timeout,
	}
	if t.sofficePath == "" {
		t.sofficePath = "soffice"
	}
	if t.workRoot == "" {
		t.workRoot = filepath.Join(os.TempDir(), "ndtmaster-office")
	}
	if t.defaultTimeout <= 0 {
		t.defaultTimeout = 2 * time.Minute
	}
	return t
}

func (m *tools) Available() bool {
	_, err := m.run.LookPath(m.sofficePath)
	return err == nil
}

func (m *tools) AssertReady(ctx context.Context) error {
	if _, err := m.run.LookPath(m.sofficePath); err != nil {
		return fmt.Errorf("%w (%s): %v", ErrSofficeMissing, m.sofficePath, err)
	}
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return fmt.Errorf("create workRoot: %w", err)
	}
	return nil
}

func (m *tools) WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error) {
	dir, err := os.MkdirTemp(m.workRoot, "job-")
	if err != nil {
		if mkErr := os.MkdirAll(m.workRoot, 0o755); mkErr != nil {
			return "", func() {}, fmt.Errorf("mkdir workRoot: %w", mkErr)
		}
		if dir, err = os.MkdirTemp(m.workRoot, "job-"); err != nil {
			return "", func() {}, fmt.Errorf("mkdir job dir: %w", err)
		}
	}
	h := sha256.Sum256(data)
	base := hex.EncodeToString(h[:])[:16]
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	path := filepath.Join(dir, base+suffix)
	cleanup := func() { _ = os.RemoveAll(dir) }
	if err := os.WriteFile(path, data, 0o644); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("write temp file: %w", err)
	}
	return path, cleanup, nil
}

// ConvertHTMLToDOCX imports html with the Writer HTML filter and exports it
// as Office Open XML.
func (m *tools) ConvertHTMLToDOCX(ctx context.Context, html []byte) ([]byte, error) {
	ctx = ctxutil.Default(ctx)
	if err := m.AssertReady(ctx); err != nil {
		return nil, err
	}
	if len(html) == 0 {
		return nil, fmt.Errorf("html required")
	}
	inputPath, cleanup, err := m.WriteTempFile(ctx, html, ".html")
	if err != nil {
		return nil, err
	}
	defer cleanup()
	outDir := filepath.Dir(inputPath)

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	start := time.Now()
	out, err := m.run.CombinedOutput(ctx, m.sofficePath,
		"--headless",
		"--nologo",
		"--nolockcheck",
		"--nodefault",
		"--norestore",
		"--infilter=HTML (StarWriter)",
		"--convert-to", "docx:MS Word 2007 XML",
		"--outdir", outDir,
		inputPath,
	)
	if err != nil {
		return nil, fmt.Errorf("soffice convert failed: %w; out=%s", err, string(out))
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	docxPath := filepath.Join(outDir, base+".docx")
	if _, statErr := os.Stat(docxPath); statErr != nil {
		alt, scanErr := newestFileWithExt(outDir, ".docx")
		if scanErr != nil {
			return nil, fmt.Errorf("docx output not found at %s and scan failed: %v; soffice out=%s", docxPath, scanErr, string(out))
		}
		docxPath = alt
	}
	data, err := os.ReadFile(docxPath)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	m.log.Debug("soffice conversion done", "bytes", len(data), "duration_ms", time.Since(start).Milliseconds())
	return data, nil
}

func newestFileWithExt(dir string, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	type candidate struct {
		path string
		mod  time.Time
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{path: filepath.Join(dir, e.Name()), mod: info.ModTime()})
	}
	if len(found) == 0 {
		return "", fmt.Errorf("no %s files in %s", ext, dir)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].mod.After(found[j].mod) })
	return found[0].path, nil
}

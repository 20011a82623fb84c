package inline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/yungbote/ndtmaster-backend/internal/platform/browser"
	"github.com/yungbote/ndtmaster-backend/internal/platform/logger"
)

const testPage = `<!DOCTYPE html>
<html><head><style>
body { font-family: Arial; color: #111; }
.card { padding: 8px; }
.card h1 { font-size: 20px; color: navy; }
h1 { font-size: 30px; color: red !important; }
td { border: 1px solid #000; }
#num { font-weight: bold; }
.pre { white-space: pre-wrap; }
p::first-line { color: green; }
</style></head>
<body>
<div class="card" id="root">
  <h1>Технологическая карта</h1>
  <p id="num" style="color: blue">№ SS-01-001</p>
  <table><tbody><tr><th>Заказчик</th><td>ПАО</td></tr></tbody></table>
  <div class="pre"><span>text</span></div>
</div>
</body></html>`

func parseFragment(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func styleOfFirst(t *testing.T, doc *html.Node, sel string) string {
	t.Helper()
	n := cascadia.Query(doc, cascadia.MustCompile(sel))
	if n == nil {
		t.Fatalf("no match for %q", sel)
	}
	v, ok := attr(n, "style")
	if !ok {
		t.Fatalf("%q has no style attribute", sel)
	}
	return v
}

func TestStaticInlinerAppliesCascade(t *testing.T) {
	el := Element{Page: testPage, Selector: "#root"}
	res, err := NewStaticInliner().Inline(context.Background(), el)
	if err != nil {
		t.Fatalf("Inline: %v", err)
	}

	src := cascadia.Query(parseFragment(t, testPage), cascadia.MustCompile("#root"))
	if want := countElements(src); res.Elements != want {
		t.Fatalf("element count: want=%d got=%d", want, res.Elements)
	}
	if el.Page != testPage {
		t.Fatalf("source page was modified")
	}

	out := parseFragment(t, res.HTML)
	for _, n := range cascadia.QueryAll(out, cascadia.MustCompile("#root, #root *")) {
		if _, ok := attr(n, "style"); !ok {
			t.Fatalf("<%s> has no style attribute", n.Data)
		}
	}

	h1 := styleOfFirst(t, out, "h1")
	if !strings.Contains(h1, "font-size:20px;") {
		t.Fatalf("more specific rule should win: %s", h1)
	}
	if !strings.Contains(h1, "color:red;") {
		t.Fatalf("!important should win: %s", h1)
	}
	if !strings.Contains(h1, "font-family:Arial;") {
		t.Fatalf("font-family should be inherited: %s", h1)
	}

	num := styleOfFirst(t, out, "#num")
	if !strings.Contains(num, "color:blue;") || !strings.Contains(num, "font-weight:bold;") {
		t.Fatalf("inline style should override sheet: %s", num)
	}
	if strings.Contains(num, "green") {
		t.Fatalf("pseudo-element rule leaked: %s", num)
	}

	td := styleOfFirst(t, out, "td")
	if !strings.Contains(td, "border:1px solid #000;") {
		t.Fatalf("td border missing: %s", td)
	}
	span := styleOfFirst(t, out, "span")
	if !strings.Contains(span, "white-space:pre-wrap;") {
		t.Fatalf("white-space should be inherited: %s", span)
	}
	if strings.Contains(span, "padding") {
		t.Fatalf("padding is not inherited: %s", span)
	}
}

func TestStaticInlinerStyleAttributeWithoutSemicolon(t *testing.T) {
	page := `<html><head><style>p { color: red; font-size: 12px; }</style></head>
<body><div id="root"><p style="color: blue">a</p><p style="color:blue; font-weight: bold">b</p><p style="color: ;">c</p></div></body></html>`
	res, err := NewStaticInliner().Inline(context.Background(), Element{Page: page, Selector: "#root"})
	if err != nil {
		t.Fatalf("Inline: %v", err)
	}
	ps := cascadia.QueryAll(parseFragment(t, res.HTML), cascadia.MustCompile("p"))
	if len(ps) != 3 {
		t.Fatalf("want 3 paragraphs, got %d", len(ps))
	}
	want := []string{
		"color:blue;font-size:12px;",
		"color:blue;font-size:12px;font-weight:bold;",
		"color:red;font-size:12px;",
	}
	for i, p := range ps {
		got, _ := attr(p, "style")
		if got != want[i] {
			t.Fatalf("p[%d]: want=%q got=%q", i, want[i], got)
		}
	}
}

func TestStaticInlinerMissingElement(t *testing.T) {
	_, err := NewStaticInliner().Inline(context.Background(), Element{Page: testPage, Selector: "#nope"})
	if !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("want ErrElementNotFound, got %v", err)
	}
	_, err = NewStaticInliner().Inline(context.Background(), Element{Page: testPage})
	if !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("empty selector: want ErrElementNotFound, got %v", err)
	}
}

type fakeResolver struct {
	available bool
	res       browser.InlineResult
	err       error
}

func (f *fakeResolver) Available() bool { return f.available }

func (f *fakeResolver) InlineStyles(ctx context.Context, html, selector string) (browser.InlineResult, error) {
	return f.res, f.err
}

func TestBrowserInliner(t *testing.T) {
	ok := &fakeResolver{available: true, res: browser.InlineResult{HTML: `<div style="a:b;"></div>`, Elements: 1, SourceElements: 1}}
	res, err := NewBrowserInliner(ok).Inline(context.Background(), Element{Page: "<div></div>", Selector: "div"})
	if err != nil {
		t.Fatalf("Inline: %v", err)
	}
	if res.Elements != 1 || res.HTML != `<div style="a:b;"></div>` {
		t.Fatalf("unexpected result: %+v", res)
	}

	missing := &fakeResolver{available: true, err: browser.ErrElementNotFound}
	if _, err := NewBrowserInliner(missing).Inline(context.Background(), Element{Page: "x", Selector: "#a"}); !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("want ErrElementNotFound, got %v", err)
	}

	mismatch := &fakeResolver{available: true, res: browser.InlineResult{Elements: 2, SourceElements: 3}}
	if _, err := NewBrowserInliner(mismatch).Inline(context.Background(), Element{Page: "x", Selector: "#a"}); err == nil {
		t.Fatalf("expected count mismatch error")
	}
}

func TestNewPicksBrowserWhenAvailable(t *testing.T) {
	if got := New(logger.Nop(), &fakeResolver{available: true}).Name(); got != "browser" {
		t.Fatalf("want=%q got=%q", "browser", got)
	}
	if got := New(logger.Nop(), &fakeResolver{}).Name(); got != "static" {
		t.Fatalf("want=%q got=%q", "static", got)
	}
	if got := New(logger.Nop(), nil).Name(); got != "static" {
		t.Fatalf("want=%q got=%q", "static", got)
	}
}

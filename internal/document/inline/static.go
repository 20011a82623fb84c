package inline

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// inherited lists the properties that flow from parent to child when the
// child does not set them.
var inherited = map[string]bool{
	"color":           true,
	"font":            true,
	"font-family":     true,
	"font-size":       true,
	"font-style":      true,
	"font-variant":    true,
	"font-weight":     true,
	"letter-spacing":  true,
	"line-height":     true,
	"text-align":      true,
	"text-indent":     true,
	"text-transform":  true,
	"white-space":     true,
	"word-spacing":    true,
	"visibility":      true,
	"direction":       true,
	"border-collapse": true,
	"border-spacing":  true,
	"caption-side":    true,
	"empty-cells":     true,
	"list-style":      true,
	"list-style-type": true,
	"quotes":          true,
}

type styleRule struct {
	sel   cascadia.Sel
	prio  cascadia.Specificity
	order int
	decls []*css.Declaration
}

type matched struct {
	prop      string
	value     string
	important bool
	inline    bool
	prio      cascadia.Specificity
	order     int
}

// StaticInliner applies the document's own <style> sheets without a layout
// engine: selector matching, specificity, source order, !important, the
// element's inline style and inheritance. Values are kept as authored.
type StaticInliner struct{}

func NewStaticInliner() *StaticInliner { return &StaticInliner{} }

func (s *StaticInliner) Name() string { return "static" }

func (s *StaticInliner) Inline(ctx context.Context, el Element) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	sel := strings.TrimSpace(el.Selector)
	if sel == "" {
		return Result{}, ErrElementNotFound
	}
	group, err := cascadia.ParseGroup(sel)
	if err != nil {
		return Result{}, fmt.Errorf("inline: bad selector %q: %w", sel, err)
	}
	doc, err := html.Parse(strings.NewReader(el.Page))
	if err != nil {
		return Result{}, fmt.Errorf("inline: parse page: %w", err)
	}
	root := cascadia.Query(doc, group)
	if root == nil {
		return Result{}, ErrElementNotFound
	}

	c := &cascade{rules: collectRules(doc), computed: map[*html.Node]*style{}}
	clone := c.cloneStyled(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, clone); err != nil {
		return Result{}, fmt.Errorf("inline: render: %w", err)
	}
	return Result{HTML: buf.String(), Elements: countElements(clone)}, nil
}

func collectRules(doc *html.Node) []styleRule {
	var rules []styleRule
	order := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "style" {
			var text strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					text.WriteString(c.Data)
				}
			}
			sheet, err := parser.Parse(text.String())
			if err == nil {
				for _, r := range sheet.Rules {
					if r.Kind != css.QualifiedRule {
						continue
					}
					for _, raw := range r.Selectors {
						sel, err := cascadia.Parse(strings.TrimSpace(raw))
						if err != nil || sel.PseudoElement() != "" {
							continue
						}
						rules = append(rules, styleRule{sel: sel, prio: sel.Specificity(), order: order, decls: r.Declarations})
						order++
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rules
}

type style struct {
	props  []string
	values map[string]string
}

func (s *style) set(prop, value string) {
	if _, ok := s.values[prop]; !ok {
		s.props = append(s.props, prop)
	}
	s.values[prop] = value
}

func (s *style) String() string {
	var b strings.Builder
	for _, p := range s.props {
		b.WriteString(p)
		b.WriteByte(':')
		b.WriteString(s.values[p])
		b.WriteByte(';')
	}
	return b.String()
}

// parseInlineStyle parses a style attribute. douceur drops the value of a
// final declaration without a terminating ';', so one is added, and blank
// values are skipped.
func parseInlineStyle(raw string) ([]*css.Declaration, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.HasSuffix(raw, ";") {
		raw += ";"
	}
	decls, err := parser.ParseDeclarations(raw)
	if err != nil {
		return nil, err
	}
	out := decls[:0]
	for _, d := range decls {
		if strings.TrimSpace(d.Value) != "" {
			out = append(out, d)
		}
	}
	return out, nil
}

type cascade struct {
	rules    []styleRule
	computed map[*html.Node]*style
}

func (c *cascade) styleOf(n *html.Node) *style {
	if st, ok := c.computed[n]; ok {
		return st
	}
	var parent *style
	if p := n.Parent; p != nil && p.Type == html.ElementNode {
		parent = c.styleOf(p)
	}

	var ms []matched
	for _, r := range c.rules {
		if !r.sel.Match(n) {
			continue
		}
		for _, d := range r.decls {
			if strings.TrimSpace(d.Value) == "" {
				continue
			}
			ms = append(ms, matched{
				prop:      strings.ToLower(d.Property),
				value:     d.Value,
				important: d.Important,
				prio:      r.prio,
				order:     r.order,
			})
		}
	}
	if raw, ok := attr(n, "style"); ok {
		if decls, err := parseInlineStyle(raw); err == nil {
			for i, d := range decls {
				ms = append(ms, matched{
					prop:      strings.ToLower(d.Property),
					value:     d.Value,
					important: d.Important,
					inline:    true,
					order:     len(c.rules) + i,
				})
			}
		}
	}
	sort.SliceStable(ms, func(i, j int) bool { return less(ms[i], ms[j]) })

	st := &style{values: map[string]string{}}
	for _, m := range ms {
		v := m.value
		if strings.EqualFold(v, "inherit") {
			if parent == nil {
				continue
			}
			pv, ok := parent.values[m.prop]
			if !ok {
				continue
			}
			v = pv
		}
		st.set(m.prop, v)
	}
	if parent != nil {
		for _, p := range parent.props {
			if inherited[p] {
				if _, ok := st.values[p]; !ok {
					st.set(p, parent.values[p])
				}
			}
		}
	}
	c.computed[n] = st
	return st
}

// less orders declarations by ascending precedence so later ones win.
func less(a, b matched) bool {
	if a.important != b.important {
		return !a.important
	}
	if a.inline != b.inline {
		return !a.inline
	}
	if a.prio != b.prio {
		return a.prio.Less(b.prio)
	}
	return a.order < b.order
}

// cloneStyled deep copies n and writes the computed style of every source
// element into its copy. The source tree is not modified.
func (c *cascade) cloneStyled(n *html.Node) *html.Node {
	cp := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if n.Type == html.ElementNode {
		cp.Attr = make([]html.Attribute, 0, len(n.Attr)+1)
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == "style" {
				continue
			}
			cp.Attr = append(cp.Attr, a)
		}
		cp.Attr = append(cp.Attr, html.Attribute{Key: "style", Val: c.styleOf(n).String()})
	} else {
		cp.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		cp.AppendChild(c.cloneStyled(ch))
	}
	return cp
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func countElements(n *html.Node) int {
	count := 0
	if n.Type == html.ElementNode {
		count++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countElements(c)
	}
	return count
}

// CLAUDE:SUMMARY Static-HTML document context backing selector resolution over parsed DOM trees.

// Package htmldoc adapts parsed HTML trees to the resolve.DocumentContext
// interface. It evaluates each location strategy kind against an x/net/html
// node tree, which makes snapshot extraction testable without a browser and
// usable against captured page HTML.
//
// Supported strategy kinds:
//   - id:         element whose id attribute equals the expression
//   - class:      element carrying the expression as a class token
//   - attribute:  simple selector "tag[attr=val]", "tag.class", "#id", etc.
//   - role:       element whose role attribute equals the expression
//   - text:       deepest elements whose collapsed text equals the expression
//   - structural: simple selectors with descendant combinators ("ul li a")
package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/cartwatch/resolve"
	"github.com/hazyhaar/cartwatch/selreg"
)

// Document wraps a parsed HTML tree as a resolve.DocumentContext.
type Document struct {
	root *html.Node
}

// Parse reads and parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses an HTML document held in memory.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Find evaluates a location strategy against the whole document.
func (d *Document) Find(_ context.Context, s selreg.Strategy) ([]resolve.Element, error) {
	nodes, err := findNodes(d.root, s)
	if err != nil {
		return nil, err
	}
	return wrapNodes(nodes), nil
}

// node is a single DOM element, scoped for relative lookups.
type node struct {
	n *html.Node
}

func wrapNodes(nodes []*html.Node) []resolve.Element {
	if len(nodes) == 0 {
		return nil
	}
	els := make([]resolve.Element, len(nodes))
	for i, n := range nodes {
		els[i] = &node{n: n}
	}
	return els
}

// Text returns the collapsed visible text of the element subtree.
func (e *node) Text(context.Context) (string, error) {
	return collectText(e.n), nil
}

// Attribute returns the value of the named attribute, empty when absent.
func (e *node) Attribute(_ context.Context, name string) (string, error) {
	return getAttr(e.n, name), nil
}

// Find evaluates a strategy relative to this element's subtree.
func (e *node) Find(_ context.Context, s selreg.Strategy) ([]resolve.Element, error) {
	nodes, err := findNodes(e.n, s)
	if err != nil {
		return nil, err
	}
	// A relative search must not match the scope element itself.
	filtered := nodes[:0]
	for _, n := range nodes {
		if n != e.n {
			filtered = append(filtered, n)
		}
	}
	return wrapNodes(filtered), nil
}

// HTML serialises the element subtree, mostly useful in diagnostics.
func (e *node) HTML() string {
	var buf bytes.Buffer
	html.Render(&buf, e.n)
	return buf.String()
}

func findNodes(root *html.Node, s selreg.Strategy) ([]*html.Node, error) {
	switch s.Kind {
	case selreg.KindID:
		return matchSimple(root, simpleSelector{id: s.Expression}), nil
	case selreg.KindClass:
		return matchSimple(root, simpleSelector{class: s.Expression}), nil
	case selreg.KindRole:
		return matchSimple(root, simpleSelector{attrKey: "role", attrVal: s.Expression}), nil
	case selreg.KindAttribute:
		return matchSimple(root, parseSimpleSelector(s.Expression)), nil
	case selreg.KindStructural:
		return querySelectorAll(root, s.Expression), nil
	case selreg.KindText:
		return matchText(root, s.Expression), nil
	default:
		return nil, fmt.Errorf("htmldoc: unsupported strategy kind %q", s.Kind)
	}
}

// querySelectorAll returns all nodes matching a simple CSS selector,
// with space-separated parts treated as descendant combinators.
func querySelectorAll(root *html.Node, selector string) []*html.Node {
	parts := strings.Fields(selector)
	if len(parts) == 0 {
		return nil
	}

	matches := matchSimple(root, parseSimpleSelector(parts[0]))
	for i := 1; i < len(parts); i++ {
		sel := parseSimpleSelector(parts[i])
		var next []*html.Node
		seen := make(map[*html.Node]bool)
		for _, parent := range matches {
			for _, n := range matchSimple(parent, sel) {
				if n != parent && !seen[n] {
					seen[n] = true
					next = append(next, n)
				}
			}
		}
		matches = next
	}
	return matches
}

// matchText returns the deepest elements whose collapsed text equals want.
// Restricting to the deepest match keeps a label inside nested wrappers from
// matching every ancestor as well.
func matchText(root *html.Node, want string) []*html.Node {
	var results []*html.Node
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		matchedBelow := false
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				matchedBelow = true
			}
		}
		if matchedBelow {
			return true
		}
		if n.Type == html.ElementNode && collectText(n) == want {
			results = append(results, n)
			return true
		}
		return false
	}
	walk(root)
	return results
}

type simpleSelector struct {
	tag     string
	id      string
	class   string
	attrKey string
	attrVal string
}

// parseSimpleSelector parses "tag.class", "#id", "tag[attr=val]", etc.
func parseSimpleSelector(sel string) simpleSelector {
	var s simpleSelector

	if idx := strings.IndexByte(sel, '['); idx >= 0 {
		attrPart := strings.TrimRight(sel[idx+1:], "]")
		sel = sel[:idx]
		if eqIdx := strings.IndexByte(attrPart, '='); eqIdx >= 0 {
			s.attrKey = attrPart[:eqIdx]
			s.attrVal = strings.Trim(attrPart[eqIdx+1:], `"'`)
		} else {
			s.attrKey = attrPart
		}
	}

	if idx := strings.IndexByte(sel, '#'); idx >= 0 {
		s.id = sel[idx+1:]
		sel = sel[:idx]
	}

	if idx := strings.IndexByte(sel, '.'); idx >= 0 {
		s.class = sel[idx+1:]
		sel = sel[:idx]
	}

	s.tag = sel
	return s
}

// matchSimple finds all nodes in the subtree matching a single selector part.
func matchSimple(root *html.Node, s simpleSelector) []*html.Node {
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if matchesSelector(n, s) {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}

func matchesSelector(n *html.Node, s simpleSelector) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" && getAttr(n, "id") != s.id {
		return false
	}
	if s.class != "" {
		found := false
		for _, c := range strings.Fields(getAttr(n, "class")) {
			if c == s.class {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if s.attrKey != "" {
		if s.attrVal != "" {
			if getAttr(n, s.attrKey) != s.attrVal {
				return false
			}
		} else if !hasAttr(n, s.attrKey) {
			return false
		}
	}
	return true
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// collectText extracts the visible text of a node subtree, whitespace-collapsed.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

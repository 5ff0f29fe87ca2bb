// CLAUDE:SUMMARY Rod-backed document context translating location strategies to CSS and XPath queries.
package browse

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/cartwatch/resolve"
	"github.com/hazyhaar/cartwatch/selreg"
)

// pageDoc evaluates location strategies against a live page.
//
// Strategy expressions come from the registry, which the operator curates;
// they are interpolated into CSS and XPath queries without further escaping.
type pageDoc struct {
	page *rod.Page
}

func (d *pageDoc) Find(ctx context.Context, s selreg.Strategy) ([]resolve.Element, error) {
	p := d.page.Context(ctx)

	var els rod.Elements
	var err error
	switch s.Kind {
	case selreg.KindID:
		els, err = p.Elements(fmt.Sprintf(`[id=%q]`, s.Expression))
	case selreg.KindClass:
		els, err = p.Elements("." + s.Expression)
	case selreg.KindRole:
		els, err = p.Elements(fmt.Sprintf(`[role=%q]`, s.Expression))
	case selreg.KindAttribute, selreg.KindStructural:
		els, err = p.Elements(s.Expression)
	case selreg.KindText:
		els, err = p.ElementsX(textXPath("//", s.Expression))
	default:
		return nil, fmt.Errorf("browse: unsupported strategy kind %q", s.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("browse: find %s: %w", s, err)
	}
	return wrapElements(els), nil
}

func textXPath(prefix, text string) string {
	return fmt.Sprintf(`%s*[normalize-space(text())=%q]`, prefix, text)
}

func wrapElements(els rod.Elements) []resolve.Element {
	if len(els) == 0 {
		return nil
	}
	out := make([]resolve.Element, len(els))
	for i, el := range els {
		out[i] = &pageElement{el: el}
	}
	return out
}

type pageElement struct {
	el *rod.Element
}

func (e *pageElement) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *pageElement) Attribute(ctx context.Context, name string) (string, error) {
	val, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", nil
	}
	return *val, nil
}

// Find evaluates a strategy relative to this element's subtree.
func (e *pageElement) Find(ctx context.Context, s selreg.Strategy) ([]resolve.Element, error) {
	el := e.el.Context(ctx)

	var els rod.Elements
	var err error
	switch s.Kind {
	case selreg.KindID:
		els, err = el.Elements(fmt.Sprintf(`[id=%q]`, s.Expression))
	case selreg.KindClass:
		els, err = el.Elements("." + s.Expression)
	case selreg.KindRole:
		els, err = el.Elements(fmt.Sprintf(`[role=%q]`, s.Expression))
	case selreg.KindAttribute, selreg.KindStructural:
		els, err = el.Elements(s.Expression)
	case selreg.KindText:
		els, err = el.ElementsX(textXPath(".//", s.Expression))
	default:
		return nil, fmt.Errorf("browse: unsupported strategy kind %q", s.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("browse: find %s: %w", s, err)
	}
	return wrapElements(els), nil
}

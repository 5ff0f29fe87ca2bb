// CLAUDE:SUMMARY Narrow document capability — DocumentContext finds elements for a strategy, Element exposes text/attribute and scoped search.
package resolve

import (
	"context"

	"github.com/hazyhaar/cartwatch/selreg"
)

// DocumentContext is the narrow capability the resolver needs from a
// document: find the elements matching one strategy. Implementations exist
// for live browser pages (browse) and parsed static HTML (htmldoc); the
// resolver never learns which one it is talking to.
type DocumentContext interface {
	Find(ctx context.Context, s selreg.Strategy) ([]Element, error)
}

// Element is a located document element. Implementations must honor ctx
// cancellation on every call: against a live page each accessor is a CDP
// round-trip.
type Element interface {
	// Text returns the element's visible text, whitespace-collapsed.
	Text(ctx context.Context) (string, error)
	// Attribute returns the named attribute's value, or "" when absent.
	Attribute(ctx context.Context, name string) (string, error)
	// Find evaluates a strategy scoped to this element's subtree.
	Find(ctx context.Context, s selreg.Strategy) ([]Element, error)
}

// Scoped adapts an Element into a DocumentContext rooted at that element, so
// the resolver's fallback algorithm works unchanged inside a repeated item.
func Scoped(el Element) DocumentContext {
	return scopedDoc{el}
}

type scopedDoc struct {
	el Element
}

func (s scopedDoc) Find(ctx context.Context, strat selreg.Strategy) ([]Element, error) {
	return s.el.Find(ctx, strat)
}

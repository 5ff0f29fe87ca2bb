// CLAUDE:SUMMARY Walks registered selector entries over a page and builds typed order/cart extractions.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/cartwatch/fault"
	"github.com/hazyhaar/cartwatch/idgen"
	"github.com/hazyhaar/cartwatch/resolve"
	"github.com/hazyhaar/cartwatch/selreg"
)

// Schema names the registry entries an extraction walks, plus the item
// attribute that carries the product id. Zero fields fall back to the
// conventional names via defaults().
type Schema struct {
	PageID string

	Container string // unique list container, hard requirement
	Item      string // repeated item row, resolved relative to the container

	IDAttribute string // attribute on the item row carrying the product id

	NameField        string
	PriceField       string
	QuantityField    string // optional: absent means quantity 1
	LineTotalField   string // order pages only; optional, derived when absent
	CategoryField    string // optional
	ImageField       string // optional, src attribute of the match
	UnavailableField string // cart pages only: presence marks out-of-stock
	CountField       string // optional page-level "38 Produtos" counter
}

func (s *Schema) defaults(kind string) {
	if s.Container == "" {
		s.Container = kind + "_list"
	}
	if s.Item == "" {
		s.Item = kind + "_item"
	}
	if s.IDAttribute == "" {
		s.IDAttribute = "data-product-id"
	}
	if s.NameField == "" {
		s.NameField = "item_name"
	}
	if s.PriceField == "" {
		s.PriceField = "item_price"
	}
	if s.QuantityField == "" {
		s.QuantityField = "item_quantity"
	}
	if s.LineTotalField == "" {
		s.LineTotalField = "item_total"
	}
	if s.CategoryField == "" {
		s.CategoryField = "item_category"
	}
	if s.ImageField == "" {
		s.ImageField = "item_image"
	}
	if s.UnavailableField == "" {
		s.UnavailableField = "item_unavailable"
	}
	if s.CountField == "" {
		s.CountField = "item_count"
	}
}

// Extractor builds typed snapshots from a live or parsed page.
type Extractor struct {
	reg    *selreg.Registry
	res    *resolve.Resolver
	logger *slog.Logger
	ids    idgen.Generator
}

// New creates an Extractor over a populated registry and a resolver.
func New(reg *selreg.Registry, res *resolve.Resolver, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		reg:    reg,
		res:    res,
		logger: logger,
		ids:    idgen.Prefixed("run_", idgen.Default),
	}
}

// Order extracts the baseline order items from an order page.
func (e *Extractor) Order(ctx context.Context, doc resolve.DocumentContext, schema Schema) (*Extraction[OrderItem], error) {
	schema.defaults("order")

	items, warnings, total, err := walkItems(ctx, e, doc, schema, func(ctx context.Context, item resolve.Element, scoped resolve.DocumentContext) (OrderItem, error) {
		var out OrderItem

		id, err := item.Attribute(ctx, schema.IDAttribute)
		if err != nil || id == "" {
			return out, fmt.Errorf("missing %s attribute", schema.IDAttribute)
		}
		out.ProductID = id

		out.Name, err = e.fieldText(ctx, schema.PageID, schema.NameField, scoped)
		if err != nil {
			return out, fmt.Errorf("name: %w", err)
		}

		priceText, err := e.fieldText(ctx, schema.PageID, schema.PriceField, scoped)
		if err != nil {
			return out, fmt.Errorf("price: %w", err)
		}
		out.UnitPrice, err = ParseMoney(priceText)
		if err != nil {
			return out, err
		}

		out.Quantity = 1
		if qtyText, ok := e.optionalText(ctx, schema.PageID, schema.QuantityField, scoped); ok {
			out.Quantity, err = ParseQuantity(qtyText)
			if err != nil {
				return out, err
			}
		}

		out.LineTotal = Round2(out.UnitPrice * float64(out.Quantity))
		if totalText, ok := e.optionalText(ctx, schema.PageID, schema.LineTotalField, scoped); ok {
			if v, err := ParseMoney(totalText); err == nil {
				out.LineTotal = Round2(v)
			}
		}

		if cat, ok := e.optionalText(ctx, schema.PageID, schema.CategoryField, scoped); ok {
			out.Category = cat
		}
		if img, ok := e.optionalAttr(ctx, schema.PageID, schema.ImageField, scoped, "src"); ok {
			out.ImageURL = img
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	out := &Extraction[OrderItem]{RunID: e.ids(), Items: items, TotalAvailable: total, Warnings: warnings}
	e.logger.Info("snapshot: order extracted",
		"run", out.RunID, "page", schema.PageID, "items", len(out.Items), "warnings", len(out.Warnings))
	return out, nil
}

// Cart extracts the current cart items from a cart page.
func (e *Extractor) Cart(ctx context.Context, doc resolve.DocumentContext, schema Schema) (*Extraction[CartItem], error) {
	schema.defaults("cart")

	items, warnings, total, err := walkItems(ctx, e, doc, schema, func(ctx context.Context, item resolve.Element, scoped resolve.DocumentContext) (CartItem, error) {
		var out CartItem

		id, err := item.Attribute(ctx, schema.IDAttribute)
		if err != nil || id == "" {
			return out, fmt.Errorf("missing %s attribute", schema.IDAttribute)
		}
		out.ProductID = id

		out.Name, err = e.fieldText(ctx, schema.PageID, schema.NameField, scoped)
		if err != nil {
			return out, fmt.Errorf("name: %w", err)
		}

		priceText, err := e.fieldText(ctx, schema.PageID, schema.PriceField, scoped)
		if err != nil {
			return out, fmt.Errorf("price: %w", err)
		}
		out.Price, err = ParseMoney(priceText)
		if err != nil {
			return out, err
		}

		out.Quantity = 1
		if qtyText, ok := e.optionalText(ctx, schema.PageID, schema.QuantityField, scoped); ok {
			out.Quantity, err = ParseQuantity(qtyText)
			if err != nil {
				return out, err
			}
		}

		out.Availability = Available
		if entry, err := e.reg.Entry(schema.PageID, schema.UnavailableField); err == nil {
			if _, present := e.res.TryResolve(ctx, entry, scoped); present {
				out.Availability = OutOfStock
			}
		}
		if out.Quantity == 0 {
			out.Availability = OutOfStock
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	out := &Extraction[CartItem]{RunID: e.ids(), Items: items, TotalAvailable: total, Warnings: warnings}
	e.logger.Info("snapshot: cart extracted",
		"run", out.RunID, "page", schema.PageID, "items", len(out.Items), "warnings", len(out.Warnings))
	return out, nil
}

// walkItems resolves the container, enumerates item rows, and applies
// build to each. A failing item is skipped with a warning; a missing
// container fails the call.
func walkItems[T any](ctx context.Context, e *Extractor, doc resolve.DocumentContext, schema Schema, build func(context.Context, resolve.Element, resolve.DocumentContext) (T, error)) ([]T, []string, int, error) {
	var warnings []string

	containerEntry, err := e.reg.Entry(schema.PageID, schema.Container)
	if err != nil {
		return nil, nil, 0, err
	}
	containerRes, err := e.res.Resolve(ctx, containerEntry, doc)
	if err != nil {
		return nil, nil, 0, err
	}
	if !containerEntry.Verified {
		warnings = append(warnings, fmt.Sprintf("container %s resolved through unverified entry", schema.Container))
	}

	itemEntry, err := e.reg.Entry(schema.PageID, schema.Item)
	if err != nil {
		return nil, nil, 0, err
	}
	rows, err := findAll(ctx, containerRes.Element, itemEntry)
	if err != nil {
		return nil, nil, 0, err
	}

	items := make([]T, 0, len(rows))
	for i, row := range rows {
		item, err := build(ctx, row, resolve.Scoped(row))
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, 0, fault.Wrap(fault.CodeTimeout, true, ctx.Err(), "extraction cancelled")
			}
			warnings = append(warnings, fmt.Sprintf("item %d skipped: %v", i, err))
			e.logger.Warn("snapshot: item skipped", "page", schema.PageID, "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}

	total := len(items)
	if countEntry, err := e.reg.Entry(schema.PageID, schema.CountField); err == nil {
		if res, ok := e.res.TryResolve(ctx, countEntry, doc); ok {
			if text, err := res.Element.Text(ctx); err == nil {
				if n, err := ParseCount(text); err == nil {
					total = n
				}
			}
		}
	}

	return items, warnings, total, nil
}

// findAll enumerates repeated rows under a scope element: the entry's
// strategies are tried in ranked order and the first one yielding any
// matches wins. Unlike unique resolution, many matches are the point.
func findAll(ctx context.Context, scope resolve.Element, entry *selreg.Entry) ([]resolve.Element, error) {
	for _, s := range entry.Strategies() {
		rows, err := scope.Find(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fault.Wrap(fault.CodeTimeout, true, ctx.Err(), "row enumeration cancelled")
			}
			continue
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	// An order or cart list with zero rows is a legitimate empty snapshot.
	return nil, nil
}

func (e *Extractor) fieldText(ctx context.Context, pageID, name string, scoped resolve.DocumentContext) (string, error) {
	entry, err := e.reg.Entry(pageID, name)
	if err != nil {
		return "", err
	}
	res, err := e.res.Resolve(ctx, entry, scoped)
	if err != nil {
		return "", err
	}
	return res.Element.Text(ctx)
}

func (e *Extractor) optionalText(ctx context.Context, pageID, name string, scoped resolve.DocumentContext) (string, bool) {
	entry, err := e.reg.Entry(pageID, name)
	if err != nil {
		return "", false
	}
	res, ok := e.res.TryResolve(ctx, entry, scoped)
	if !ok {
		return "", false
	}
	text, err := res.Element.Text(ctx)
	if err != nil {
		return "", false
	}
	return text, true
}

func (e *Extractor) optionalAttr(ctx context.Context, pageID, name string, scoped resolve.DocumentContext, attr string) (string, bool) {
	entry, err := e.reg.Entry(pageID, name)
	if err != nil {
		return "", false
	}
	res, ok := e.res.TryResolve(ctx, entry, scoped)
	if !ok {
		return "", false
	}
	val, err := res.Element.Attribute(ctx, attr)
	if err != nil || val == "" {
		return "", false
	}
	return val, true
}

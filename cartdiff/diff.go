// CLAUDE:SUMMARY Pure deterministic reconciliation of a baseline order against the current cart.

// Package cartdiff reconciles a baseline order snapshot against the current
// cart and categorizes every product into added, removed, quantity-changed,
// price-changed, or now-unavailable. The comparison is a pure function over
// two immutable slices: no I/O, no document access, safe from any goroutine.
//
// Products are joined by ProductID. Id stability across the two extractions
// is a precondition: a product whose id differs between order and cart
// contexts shows up as one add plus one remove.
package cartdiff

import (
	"math"
	"sort"

	"github.com/hazyhaar/cartwatch/snapshot"
)

// priceEpsilon separates real price changes from floating-point noise.
// Sub-cent deltas are never a real price distinction.
const priceEpsilon = 0.001

// QuantityChange records a product present in both snapshots whose
// quantity moved.
type QuantityChange struct {
	Item             snapshot.CartItem `json:"item"`
	OriginalQuantity int               `json:"originalQuantity"`
	NewQuantity      int               `json:"newQuantity"`
}

// PriceChange records a product present in both snapshots whose price moved.
type PriceChange struct {
	Item          snapshot.CartItem `json:"item"`
	OriginalPrice float64           `json:"originalPrice"`
	NewPrice      float64           `json:"newPrice"`
}

// Summary carries the category counts plus the total price delta.
type Summary struct {
	AddedCount           int     `json:"addedCount"`
	RemovedCount         int     `json:"removedCount"`
	QuantityChangedCount int     `json:"quantityChangedCount"`
	PriceChangedCount    int     `json:"priceChangedCount"`
	UnavailableCount     int     `json:"unavailableCount"`
	PriceDifference      float64 `json:"priceDifference"`
}

// CartDiff is the categorized comparison of two snapshots.
type CartDiff struct {
	Added           []snapshot.CartItem `json:"added"`
	Removed         []snapshot.CartItem `json:"removed"`
	QuantityChanged []QuantityChange    `json:"quantityChanged"`
	PriceChanged    []PriceChange       `json:"priceChanged"`
	NowUnavailable  []snapshot.CartItem `json:"nowUnavailable"`
	Summary         Summary             `json:"summary"`
}

// Diff compares a baseline order against the current cart, keyed by
// ProductID. It is total: any well-typed input produces a diff, and both
// inputs empty produce an all-empty diff with zero price difference.
//
// Unavailability (out-of-stock or quantity zero) takes precedence for the
// NowUnavailable category but does not suppress the quantity and price
// checks: an unavailable item with a price move appears in both lists.
func Diff(baseline []snapshot.OrderItem, current []snapshot.CartItem) *CartDiff {
	base := make(map[string]snapshot.OrderItem, len(baseline))
	for _, it := range baseline {
		base[it.ProductID] = it
	}
	cur := make(map[string]snapshot.CartItem, len(current))
	for _, it := range current {
		cur[it.ProductID] = it
	}

	// Union of ids in sorted order keeps the diff deterministic regardless
	// of input ordering.
	seen := make(map[string]bool, len(base)+len(cur))
	ids := make([]string, 0, len(base)+len(cur))
	for id := range base {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for id := range cur {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	d := &CartDiff{}
	for _, id := range ids {
		b, inBase := base[id]
		c, inCur := cur[id]

		switch {
		case !inBase:
			d.Added = append(d.Added, c)
		case !inCur:
			d.Removed = append(d.Removed, removedItem(b))
		default:
			if c.Availability == snapshot.OutOfStock || c.Quantity == 0 {
				marked := c
				marked.FromOriginalOrder = true
				marked.OriginalQuantity = b.Quantity
				d.NowUnavailable = append(d.NowUnavailable, marked)
			}
			if b.Quantity != c.Quantity {
				d.QuantityChanged = append(d.QuantityChanged, QuantityChange{
					Item:             c,
					OriginalQuantity: b.Quantity,
					NewQuantity:      c.Quantity,
				})
			}
			if math.Abs(b.UnitPrice-c.Price) > priceEpsilon {
				d.PriceChanged = append(d.PriceChanged, PriceChange{
					Item:          c,
					OriginalPrice: b.UnitPrice,
					NewPrice:      c.Price,
				})
			}
		}
	}

	var baseTotal, curTotal float64
	for _, it := range baseline {
		baseTotal += it.LineTotal
	}
	for _, it := range current {
		curTotal += it.Price * float64(it.Quantity)
	}

	d.Summary = Summary{
		AddedCount:           len(d.Added),
		RemovedCount:         len(d.Removed),
		QuantityChangedCount: len(d.QuantityChanged),
		PriceChangedCount:    len(d.PriceChanged),
		UnavailableCount:     len(d.NowUnavailable),
		PriceDifference:      snapshot.Round2(curTotal - baseTotal),
	}
	return d
}

// removedItem converts a baseline order line into the cart-shaped record
// used for the removed category.
func removedItem(b snapshot.OrderItem) snapshot.CartItem {
	return snapshot.CartItem{
		ProductID:         b.ProductID,
		Name:              b.Name,
		Quantity:          0,
		Price:             b.UnitPrice,
		Availability:      snapshot.UnknownAvailability,
		FromOriginalOrder: true,
		OriginalQuantity:  b.Quantity,
	}
}

// CLAUDE:SUMMARY Typed order and cart snapshot records produced by page extraction.

// Package snapshot extracts typed order and cart records from a resolved
// page. It walks a registered selector set through the resolver, parses
// locale-formatted text into typed fields, and tolerates item-level noise:
// a malformed item is skipped with a warning, but a missing container
// fails the whole extraction.
package snapshot

// Availability describes the purchasability of a cart item.
type Availability string

const (
	Available           Availability = "available"
	OutOfStock          Availability = "out-of-stock"
	UnknownAvailability Availability = "unknown"
)

// OrderItem is one line of a placed order, the diff baseline.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
	Category  string  `json:"category,omitempty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// CartItem is one line of the current cart.
type CartItem struct {
	ProductID         string       `json:"productId"`
	Name              string       `json:"name"`
	Quantity          int          `json:"quantity"`
	Price             float64      `json:"price"`
	Availability      Availability `json:"availability"`
	FromOriginalOrder bool         `json:"fromOriginalOrder,omitempty"`
	OriginalQuantity  int          `json:"originalQuantity,omitempty"`
}

// Extraction is the outcome of one snapshot call. Warnings record items
// that were skipped; the caller must carry them alongside any diff built
// from the items so consumers know the data may be incomplete. RunID ties
// the extraction to its log lines.
type Extraction[T any] struct {
	RunID          string   `json:"runId"`
	Items          []T      `json:"items"`
	TotalAvailable int      `json:"totalAvailable"`
	Warnings       []string `json:"warnings,omitempty"`
}

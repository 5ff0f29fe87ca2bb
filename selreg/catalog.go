// CLAUDE:SUMMARY Catalog — durable side of the registry, replaying SQLite publications into the in-memory index and persisting new ones.
package selreg

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/cartwatch/selreg/internal/store"
)

// Catalog is the durable publication log behind a Registry. The Registry
// itself stays a pure in-memory index; the Catalog owns all disk I/O.
type Catalog struct {
	store  *store.Store
	logger *slog.Logger
}

// OpenCatalog opens (or creates) the catalog database at path.
func OpenCatalog(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return &Catalog{store: s, logger: logger}, nil
}

// Close closes the catalog database.
func (c *Catalog) Close() error {
	return c.store.Close()
}

// LoadInto replays every stored publication into the registry in page/version
// order, then applies the stored active pins.
func (c *Catalog) LoadInto(ctx context.Context, reg *Registry) error {
	pubs, err := c.store.ListPublications(ctx, "")
	if err != nil {
		return err
	}
	for _, p := range pubs {
		ps, err := ParsePageSet([]byte(p.Payload))
		if err != nil {
			return err
		}
		if err := reg.Register(ps); err != nil {
			return err
		}
	}

	active, err := c.store.ListActive(ctx)
	if err != nil {
		return err
	}
	for pageID, v := range active {
		if err := reg.Pin(pageID, v); err != nil {
			return err
		}
	}

	c.logger.Info("selreg: catalog loaded", "publications", len(pubs), "pins", len(active))
	return nil
}

// Publish registers a page set and, on success, appends it to the catalog.
// Idempotent re-registration of identical content skips the append.
func (c *Catalog) Publish(ctx context.Context, reg *Registry, ps *PageSet, publishedBy string) error {
	if err := reg.Register(ps); err != nil {
		return err
	}

	payload, err := EncodePageSet(ps)
	if err != nil {
		return err
	}
	_, err = c.store.RecordPublication(ctx, &store.Publication{
		PageID:      ps.PageID,
		Version:     ps.Version,
		Payload:     string(payload),
		PublishedBy: publishedBy,
	})
	return err
}

// PinActive pins a version in the registry and records the pin durably.
func (c *Catalog) PinActive(ctx context.Context, reg *Registry, pageID string, version int) error {
	if err := reg.Pin(pageID, version); err != nil {
		return err
	}
	return c.store.SetActive(ctx, pageID, version)
}

// UnpinActive removes a pin from the registry and the catalog.
func (c *Catalog) UnpinActive(ctx context.Context, reg *Registry, pageID string) error {
	reg.Unpin(pageID)
	return c.store.ClearActive(ctx, pageID)
}

// Stats holds catalog statistics.
type Stats struct {
	Publications int `json:"publications"`
}

// Stats returns catalog statistics.
func (c *Catalog) Stats(ctx context.Context) (*Stats, error) {
	n, err := c.store.CountPublications(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Publications: n}, nil
}

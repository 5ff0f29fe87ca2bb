// CLAUDE:SUMMARY Main selreg orchestrator — versioned in-memory index of page selector sets with append-only registration and version pinning.
// Package selreg is the versioned registry of element-location strategies for
// the watched storefront.
//
// Selector sets are discovered out-of-band (devtools inspection, capture
// tooling) and published as immutable versions: a correction is a new
// version, never an in-place edit. The registry indexes publications in
// memory and always exposes the highest version for a page unless pinned.
//
// Flows:
//
//	Load:    JSON files / catalog store → Register (ascending versions) → Pin active
//	Lookup:  resolver asks Entry(page, name) → fallback chain for one element
//	Publish: new version via HTTP/MCP → Register → catalog store
//
// Usage:
//
//	reg := selreg.New(logger)
//	if err := selreg.LoadDir(os.DirFS(dir), reg); err != nil { ... }
//	entry, err := reg.Entry("cart", "cart_list")
package selreg

import (
	"log/slog"
	"sort"
	"strconv"
	"sync"
)

// Registry indexes published page selector sets. Safe for concurrent readers;
// registration normally happens once at process start, but the lock keeps
// late publications (HTTP/MCP) safe too.
type Registry struct {
	logger *slog.Logger

	mu     sync.RWMutex
	sets   map[string][]*PageSet // pageID → publications, ascending version
	pinned map[string]int        // pageID → pinned version (0 = unpinned)
}

// New creates an empty Registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		sets:   make(map[string][]*PageSet),
		pinned: make(map[string]int),
	}
}

// Register publishes a page set. Versions are append-only monotonic: the set's
// version must be exactly current max+1, or equal an existing version with
// identical content (idempotent re-registration). Identical re-registration is
// a no-op; same version with different content fails with ConflictError.
func (r *Registry) Register(ps *PageSet) error {
	if err := ps.validate(); err != nil {
		return &ValidationError{PageID: ps.PageID, Cause: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.sets[ps.PageID]
	for _, e := range existing {
		if e.Version == ps.Version {
			if e.fingerprint() == ps.fingerprint() {
				return nil // idempotent re-registration
			}
			return &ConflictError{
				PageID:  ps.PageID,
				Version: ps.Version,
				Reason:  "version already published with different content",
			}
		}
	}

	max := 0
	if n := len(existing); n > 0 {
		max = existing[n-1].Version
	}
	if ps.Version != max+1 {
		return &ConflictError{
			PageID:  ps.PageID,
			Version: ps.Version,
			Reason:  "versions are append-only; expected " + strconv.Itoa(max+1),
		}
	}

	r.sets[ps.PageID] = append(existing, ps)
	r.logger.Info("selreg: page set registered",
		"page", ps.PageID, "version", ps.Version, "entries", len(ps.Entries))
	return nil
}

// Page returns the active selector set for a page: the pinned version when one
// is pinned, otherwise the highest published version.
func (r *Registry) Page(pageID string) (*PageSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pageLocked(pageID)
}

func (r *Registry) pageLocked(pageID string) (*PageSet, error) {
	sets := r.sets[pageID]
	if len(sets) == 0 {
		return nil, &NotFoundError{PageID: pageID}
	}
	if pin := r.pinned[pageID]; pin > 0 {
		for _, ps := range sets {
			if ps.Version == pin {
				return ps, nil
			}
		}
		// A pin can only be set on an existing version, so this is unreachable
		// short of a programming error; fall through to the highest version.
	}
	return sets[len(sets)-1], nil
}

// PageVersion returns a specific published version of a page set.
func (r *Registry) PageVersion(pageID string, version int) (*PageSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ps := range r.sets[pageID] {
		if ps.Version == version {
			return ps, nil
		}
	}
	return nil, &NotFoundError{PageID: pageID}
}

// Entry returns a named entry from the page's active set.
func (r *Registry) Entry(pageID, name string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ps, err := r.pageLocked(pageID)
	if err != nil {
		return nil, err
	}
	e, ok := ps.Entries[name]
	if !ok {
		return nil, &NotFoundError{PageID: pageID, Name: name}
	}
	return e, nil
}

// Pages returns the sorted ids of all registered pages.
func (r *Registry) Pages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sets))
	for id := range r.sets {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Versions returns the published versions for a page, ascending.
func (r *Registry) Versions(pageID string) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sets := r.sets[pageID]
	if len(sets) == 0 {
		return nil, &NotFoundError{PageID: pageID}
	}
	out := make([]int, len(sets))
	for i, ps := range sets {
		out[i] = ps.Version
	}
	return out, nil
}

// Pin fixes the version exposed by Page/Entry for a page. Pinning a version
// that was never published fails with NotFoundError.
func (r *Registry) Pin(pageID string, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ps := range r.sets[pageID] {
		if ps.Version == version {
			r.pinned[pageID] = version
			r.logger.Info("selreg: page pinned", "page", pageID, "version", version)
			return nil
		}
	}
	return &NotFoundError{PageID: pageID}
}

// Unpin restores highest-version selection for a page.
func (r *Registry) Unpin(pageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pinned, pageID)
}

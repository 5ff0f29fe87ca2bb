// CLAUDE:SUMMARY JSON selector-definition codec — one file per page version plus a master index mapping pages to versions and the active pin.
package selreg

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
)

// SchemaVersion is the current selector-definition file schema.
const SchemaVersion = 1

// pageFile is the on-disk shape of one page-version publication.
type pageFile struct {
	SchemaVersion int               `json:"schema_version"`
	Page          string            `json:"page"`
	Version       int               `json:"version"`
	URLPattern    string            `json:"url_pattern"`
	LastValidated string            `json:"last_validated,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Selectors     map[string]*Entry `json:"selectors"`
}

// Index is the master index file: it maps each logical page id to its
// available versions and the currently-active one.
type Index struct {
	Pages map[string]IndexPage `json:"pages"`
}

// IndexPage lists the published versions for one page.
type IndexPage struct {
	Versions []int `json:"versions"`
	Active   int   `json:"active"`
}

// IndexFileName is the master index file name inside a selector directory.
const IndexFileName = "index.json"

// ParsePageSet decodes a selector-definition file.
func ParsePageSet(data []byte) (*PageSet, error) {
	var f pageFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("selreg: decode page file: %w", err)
	}
	if f.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("selreg: unsupported schema_version %d (want %d)", f.SchemaVersion, SchemaVersion)
	}
	ps := &PageSet{
		PageID:        f.Page,
		Version:       f.Version,
		URLPattern:    f.URLPattern,
		Entries:       f.Selectors,
		Notes:         f.Notes,
		LastValidated: f.LastValidated,
	}
	if err := ps.validate(); err != nil {
		return nil, &ValidationError{PageID: f.Page, Cause: err}
	}
	return ps, nil
}

// EncodePageSet serialises a page set to the selector-definition file format.
func EncodePageSet(ps *PageSet) ([]byte, error) {
	f := pageFile{
		SchemaVersion: SchemaVersion,
		Page:          ps.PageID,
		Version:       ps.Version,
		URLPattern:    ps.URLPattern,
		LastValidated: ps.LastValidated,
		Notes:         ps.Notes,
		Selectors:     ps.Entries,
	}
	return json.MarshalIndent(&f, "", "  ")
}

// PageFileName returns the conventional file name for a page version,
// e.g. "cart_v3.json".
func PageFileName(pageID string, version int) string {
	return fmt.Sprintf("%s_v%d.json", pageID, version)
}

// LoadDir loads a selector directory into the registry: reads the master
// index, registers every listed version in ascending order, and pins each
// page's active version. Missing or malformed individual page files abort the
// load; the registry is left with whatever was registered before the failure.
func LoadDir(fsys fs.FS, reg *Registry) error {
	data, err := fs.ReadFile(fsys, IndexFileName)
	if err != nil {
		return fmt.Errorf("selreg: read index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("selreg: decode index: %w", err)
	}

	pages := make([]string, 0, len(idx.Pages))
	for id := range idx.Pages {
		pages = append(pages, id)
	}
	sort.Strings(pages)

	for _, pageID := range pages {
		ip := idx.Pages[pageID]
		versions := append([]int(nil), ip.Versions...)
		sort.Ints(versions)

		for _, v := range versions {
			name := PageFileName(pageID, v)
			b, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("selreg: read %s: %w", name, err)
			}
			ps, err := ParsePageSet(b)
			if err != nil {
				return fmt.Errorf("selreg: %s: %w", name, err)
			}
			if ps.PageID != pageID || ps.Version != v {
				return fmt.Errorf("selreg: %s: file declares page %q v%d", name, ps.PageID, ps.Version)
			}
			if err := reg.Register(ps); err != nil {
				return err
			}
		}

		if ip.Active > 0 {
			if err := reg.Pin(pageID, ip.Active); err != nil {
				return fmt.Errorf("selreg: pin active for %q: %w", pageID, err)
			}
		}
	}
	return nil
}

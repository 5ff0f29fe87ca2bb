// CLAUDE:SUMMARY Core selector types — Strategy (kind + expression + stability), Entry (primary + ranked fallbacks), PageSet (versioned per-page map).
package selreg

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind classifies how a strategy's expression locates elements. The set is
// closed: the resolver switches over it, and anything outside it is rejected
// at registration time.
type Kind string

const (
	// KindID matches by element id attribute. Expression: the id value.
	KindID Kind = "id"
	// KindAttribute matches by attribute presence or value.
	// Expression: "[data-testid=order-list]" or "div[data-sku]".
	KindAttribute Kind = "attribute"
	// KindRole matches by ARIA role. Expression: the role value.
	KindRole Kind = "role"
	// KindClass matches by CSS class. Expression: the class name.
	KindClass Kind = "class"
	// KindText matches elements whose visible text equals the expression.
	KindText Kind = "text"
	// KindStructural matches by a structural CSS path with descendant
	// combinators. Most brittle against markup churn, lowest typical score.
	KindStructural Kind = "structural"
)

func (k Kind) valid() bool {
	switch k {
	case KindID, KindAttribute, KindRole, KindClass, KindText, KindStructural:
		return true
	}
	return false
}

// Strategy is a single named rule for locating a document element.
type Strategy struct {
	Kind       Kind   `json:"kind"`
	Expression string `json:"expression"`
	// Stability estimates (0-100) how likely the strategy keeps working as
	// the target site's markup evolves. Higher = more durable.
	Stability int `json:"score"`
}

func (s Strategy) String() string {
	return fmt.Sprintf("%s:%s", s.Kind, s.Expression)
}

func (s Strategy) validate() error {
	if !s.Kind.valid() {
		return fmt.Errorf("unknown strategy kind %q", s.Kind)
	}
	if s.Expression == "" {
		return fmt.Errorf("empty expression for %s strategy", s.Kind)
	}
	if s.Stability < 0 || s.Stability > 100 {
		return fmt.Errorf("stability %d out of range [0,100]", s.Stability)
	}
	return nil
}

// Entry is a named element-location rule: a primary strategy plus an ordered
// fallback chain, ranked by non-increasing stability.
type Entry struct {
	Name      string     `json:"name"`
	Primary   Strategy   `json:"primary"`
	Fallbacks []Strategy `json:"fallbacks,omitempty"`
	// Verified marks entries confirmed against the live site. Unverified
	// entries are still usable; callers may apply stricter validation.
	Verified bool `json:"verified"`
	// Reason documents why the primary strategy was chosen, for the next
	// person who has to repair the entry after a site redesign.
	Reason string `json:"reason,omitempty"`
}

func (e *Entry) validate() error {
	if e.Name == "" {
		return fmt.Errorf("entry with empty name")
	}
	if err := e.Primary.validate(); err != nil {
		return fmt.Errorf("entry %q primary: %w", e.Name, err)
	}
	for i, f := range e.Fallbacks {
		if err := f.validate(); err != nil {
			return fmt.Errorf("entry %q fallback[%d]: %w", e.Name, i, err)
		}
	}
	if !sort.SliceIsSorted(e.Fallbacks, func(i, j int) bool {
		return e.Fallbacks[i].Stability > e.Fallbacks[j].Stability
	}) {
		return fmt.Errorf("entry %q: fallbacks not ordered by descending stability", e.Name)
	}
	return nil
}

// Strategies returns primary followed by fallbacks, in resolution order.
func (e *Entry) Strategies() []Strategy {
	out := make([]Strategy, 0, 1+len(e.Fallbacks))
	out = append(out, e.Primary)
	out = append(out, e.Fallbacks...)
	return out
}

// PageSet is an immutable, versioned publication of all selector entries for
// one logical page. Corrections produce a new version, never an in-place edit.
type PageSet struct {
	PageID     string            `json:"page"`
	Version    int               `json:"version"`
	URLPattern string            `json:"url_pattern"`
	Entries    map[string]*Entry `json:"selectors"`
	// Notes and LastValidated travel with the publication for the selector
	// discovery workflow; the resolver never reads them.
	Notes         string `json:"notes,omitempty"`
	LastValidated string `json:"last_validated,omitempty"`
}

func (ps *PageSet) validate() error {
	if ps.PageID == "" {
		return fmt.Errorf("page set with empty page id")
	}
	if ps.Version < 1 {
		return fmt.Errorf("page %q: version %d < 1", ps.PageID, ps.Version)
	}
	if ps.URLPattern == "" {
		return fmt.Errorf("page %q: empty url pattern", ps.PageID)
	}
	if len(ps.Entries) == 0 {
		return fmt.Errorf("page %q: no entries", ps.PageID)
	}
	for name, e := range ps.Entries {
		if e == nil {
			return fmt.Errorf("page %q: nil entry %q", ps.PageID, name)
		}
		if e.Name == "" {
			e.Name = name
		}
		if e.Name != name {
			return fmt.Errorf("page %q: entry key %q does not match entry name %q", ps.PageID, name, e.Name)
		}
		if err := e.validate(); err != nil {
			return fmt.Errorf("page %q: %w", ps.PageID, err)
		}
	}
	return nil
}

// fingerprint returns a canonical serialization used to detect whether two
// publications of the same (page, version) carry identical content.
func (ps *PageSet) fingerprint() string {
	names := make([]string, 0, len(ps.Entries))
	for n := range ps.Entries {
		names = append(names, n)
	}
	sort.Strings(names)

	type canon struct {
		PageID     string   `json:"page"`
		Version    int      `json:"version"`
		URLPattern string   `json:"url_pattern"`
		Entries    []*Entry `json:"entries"`
	}
	c := canon{PageID: ps.PageID, Version: ps.Version, URLPattern: ps.URLPattern}
	for _, n := range names {
		c.Entries = append(c.Entries, ps.Entries[n])
	}
	b, _ := json.Marshal(c)
	return string(b)
}

package selreg

import "fmt"

// NotFoundError is returned when a page id or entry name is not registered.
// It indicates a deployment/configuration defect, not a transient site issue,
// and is always fatal to the calling operation.
type NotFoundError struct {
	PageID string
	Name   string // empty when the page itself is missing
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("selreg: no selector set for page %q", e.PageID)
	}
	return fmt.Sprintf("selreg: page %q has no entry %q", e.PageID, e.Name)
}

// ConflictError is returned when Register sees an existing (page, version)
// with different content, or a version that breaks append-only monotonicity.
type ConflictError struct {
	PageID  string
	Version int
	Reason  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("selreg: conflict registering page %q version %d: %s", e.PageID, e.Version, e.Reason)
}

// ValidationError is returned when a page set fails structural validation.
type ValidationError struct {
	PageID string
	Cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("selreg: invalid page set %q: %v", e.PageID, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// CLAUDE:SUMMARY Cross-boundary error taxonomy — stable codes with a recoverable flag for retry decisions at higher layers.
// Package fault defines the error codes cartwatch surfaces across component
// boundaries. Every fault carries a stable Code and a Recoverable flag so
// callers (orchestration, review surfaces) can decide whether to retry at a
// higher layer or abort, without parsing message strings.
package fault

import (
	"errors"
	"fmt"
)

// Code identifies a failure class across the cartwatch boundary.
type Code string

const (
	// CodeSelector: no strategy in an entry's chain produced a unique match,
	// including the all-ambiguous case.
	CodeSelector Code = "SELECTOR_ERROR"
	// CodeValidation: the page or document is not in the state the caller
	// expected (wrong page type, unexpected content shape).
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeNetwork: boundary-layer transport failure, passed through.
	CodeNetwork Code = "NETWORK_ERROR"
	// CodeTimeout: a bounded wait expired.
	CodeTimeout Code = "TIMEOUT_ERROR"
	// CodeAuth: the session is not authenticated for the requested page.
	CodeAuth Code = "AUTH_ERROR"
	// CodeUnknown: anything that does not fit the classes above.
	CodeUnknown Code = "UNKNOWN_ERROR"
)

// Fault is a coded error. All cartwatch packages wrap their typed errors in
// (or expose them as) a Fault before they cross the service boundary.
type Fault struct {
	Code        Code
	Message     string
	Recoverable bool
	Cause       error
}

func (f *Fault) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Code, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Fault) Unwrap() error { return f.Cause }

// New creates a Fault with the given code and message.
func New(code Code, recoverable bool, format string, args ...any) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...), Recoverable: recoverable}
}

// Wrap attaches a code to an underlying error.
func Wrap(code Code, recoverable bool, cause error, message string) *Fault {
	return &Fault{Code: code, Message: message, Recoverable: recoverable, Cause: cause}
}

// CodeOf extracts the Code from err, walking the wrap chain.
// Errors without a Fault in the chain report CodeUnknown.
func CodeOf(err error) Code {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return CodeUnknown
}

// Recoverable reports whether err carries a recoverable Fault.
// Unclassified errors are treated as non-recoverable.
func Recoverable(err error) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Recoverable
	}
	return false
}

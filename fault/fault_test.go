package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf_Direct(t *testing.T) {
	err := New(CodeSelector, false, "no strategy matched %q", "order_list")
	if got := CodeOf(err); got != CodeSelector {
		t.Fatalf("CodeOf: got %s, want %s", got, CodeSelector)
	}
}

func TestCodeOf_Wrapped(t *testing.T) {
	inner := New(CodeTimeout, true, "strategy wait expired")
	err := fmt.Errorf("extract cart: %w", inner)
	if got := CodeOf(err); got != CodeTimeout {
		t.Fatalf("CodeOf through wrap: got %s, want %s", got, CodeTimeout)
	}
	if !Recoverable(err) {
		t.Fatal("Recoverable: timeout fault should be recoverable")
	}
}

func TestCodeOf_Unclassified(t *testing.T) {
	err := errors.New("plain error")
	if got := CodeOf(err); got != CodeUnknown {
		t.Fatalf("CodeOf: got %s, want %s", got, CodeUnknown)
	}
	if Recoverable(err) {
		t.Fatal("Recoverable: unclassified errors must not be recoverable")
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	f := Wrap(CodeNetwork, true, cause, "fetch page")
	if !errors.Is(f, cause) {
		t.Fatal("Wrap: cause not reachable via errors.Is")
	}
	want := "NETWORK_ERROR: fetch page: connection reset"
	if f.Error() != want {
		t.Fatalf("Error: got %q, want %q", f.Error(), want)
	}
}

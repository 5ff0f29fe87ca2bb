package browse

import "testing"

func TestShouldBlock(t *testing.T) {
	set := map[string]bool{"images": true, "fonts": true}

	cases := []struct {
		resType string
		want    bool
	}{
		{"Image", true},
		{"Font", true},
		{"Media", false},
		{"Stylesheet", false},
		{"Document", false},
	}
	for _, c := range cases {
		if got := shouldBlock(set, c.resType); got != c.want {
			t.Errorf("shouldBlock(%q) = %v, want %v", c.resType, got, c.want)
		}
	}
}

func TestTextXPath(t *testing.T) {
	got := textXPath(".//", "Meu Carrinho")
	want := `.//*[normalize-space(text())="Meu Carrinho"]`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.defaults()
	if cfg.MemoryLimit != 1<<30 {
		t.Errorf("memory limit: got %d", cfg.MemoryLimit)
	}
	if cfg.RecycleInterval <= 0 || cfg.NavigateTimeout <= 0 {
		t.Error("intervals not defaulted")
	}
	if cfg.Stealth == nil || !*cfg.Stealth {
		t.Error("stealth should default on")
	}
	if cfg.Logger == nil {
		t.Error("logger not defaulted")
	}
}

package selreg

import (
	"strings"
	"testing"
	"testing/fstest"
)

const cartV1 = `{
  "schema_version": 1,
  "page": "cart",
  "version": 1,
  "url_pattern": "https://mercado.example/cart*",
  "last_validated": "2026-07-02",
  "notes": "initial capture",
  "selectors": {
    "cart_list": {
      "name": "cart_list",
      "primary": {"kind": "attribute", "expression": "[data-testid=cart-items]", "score": 90},
      "fallbacks": [
        {"kind": "class", "expression": "cart-items-container", "score": 55},
        {"kind": "structural", "expression": "main section ul", "score": 25}
      ],
      "reason": "testid attributes survive layout redesigns",
      "verified": true
    }
  }
}`

func TestParsePageSet(t *testing.T) {
	ps, err := ParsePageSet([]byte(cartV1))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ps.PageID != "cart" || ps.Version != 1 {
		t.Fatalf("identity: got %s v%d", ps.PageID, ps.Version)
	}
	e := ps.Entries["cart_list"]
	if e == nil {
		t.Fatal("cart_list entry missing")
	}
	if e.Primary.Stability != 90 {
		t.Fatalf("primary score: got %d", e.Primary.Stability)
	}
	if len(e.Fallbacks) != 2 || e.Fallbacks[1].Kind != KindStructural {
		t.Fatalf("fallbacks: got %+v", e.Fallbacks)
	}
	if !e.Verified {
		t.Fatal("verified flag lost")
	}
}

func TestParsePageSet_SchemaVersion(t *testing.T) {
	bad := strings.Replace(cartV1, `"schema_version": 1`, `"schema_version": 2`, 1)
	if _, err := ParsePageSet([]byte(bad)); err == nil {
		t.Fatal("expected schema_version error")
	}
}

func TestParsePageSet_UnsortedFallbacks(t *testing.T) {
	bad := strings.Replace(cartV1, `"score": 55`, `"score": 10`, 1)
	if _, err := ParsePageSet([]byte(bad)); err == nil {
		t.Fatal("expected validation error for ascending fallbacks")
	}
}

func TestEncodePageSet_Roundtrip(t *testing.T) {
	ps, err := ParsePageSet([]byte(cartV1))
	if err != nil {
		t.Fatal(err)
	}
	data, err := EncodePageSet(ps)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := ParsePageSet(data)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if back.fingerprint() != ps.fingerprint() {
		t.Fatal("roundtrip changed content")
	}
	if back.Notes != "initial capture" || back.LastValidated != "2026-07-02" {
		t.Fatalf("metadata lost: %q %q", back.Notes, back.LastValidated)
	}
}

func TestLoadDir(t *testing.T) {
	cartV2 := strings.Replace(
		strings.Replace(cartV1, `"version": 1`, `"version": 2`, 1),
		"cart-items-container", "cart-items-wrap", 1)

	fsys := fstest.MapFS{
		"index.json": &fstest.MapFile{Data: []byte(`{
			"pages": {
				"cart": {"versions": [1, 2], "active": 1}
			}
		}`)},
		"cart_v1.json": &fstest.MapFile{Data: []byte(cartV1)},
		"cart_v2.json": &fstest.MapFile{Data: []byte(cartV2)},
	}

	reg := New(nil)
	if err := LoadDir(fsys, reg); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Active pin from the index wins over the highest version.
	ps, err := reg.Page("cart")
	if err != nil {
		t.Fatal(err)
	}
	if ps.Version != 1 {
		t.Fatalf("active version: got %d, want 1", ps.Version)
	}

	versions, err := reg.Versions("cart")
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 {
		t.Fatalf("versions: got %v", versions)
	}
}

func TestLoadDir_MissingPageFile(t *testing.T) {
	fsys := fstest.MapFS{
		"index.json": &fstest.MapFile{Data: []byte(`{
			"pages": {"cart": {"versions": [1], "active": 1}}
		}`)},
	}
	if err := LoadDir(fsys, New(nil)); err == nil {
		t.Fatal("expected error for missing page file")
	}
}

func TestPageFileName(t *testing.T) {
	if got := PageFileName("order_detail", 4); got != "order_detail_v4.json" {
		t.Fatalf("got %q", got)
	}
}

package selreg

import (
	"context"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestCatalog_PublishAndReplay(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	cat, err := OpenCatalog(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	reg := New(nil)
	if err := cat.Publish(ctx, reg, testSet("cart", 1), "rig-1"); err != nil {
		t.Fatalf("publish v1: %v", err)
	}
	if err := cat.Publish(ctx, reg, testSet("cart", 2), "rig-1"); err != nil {
		t.Fatalf("publish v2: %v", err)
	}
	if err := cat.PinActive(ctx, reg, "cart", 1); err != nil {
		t.Fatalf("pin: %v", err)
	}

	// Idempotent re-publication does not duplicate catalog rows.
	if err := cat.Publish(ctx, reg, testSet("cart", 1), "rig-2"); err != nil {
		t.Fatalf("re-publish: %v", err)
	}
	stats, err := cat.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Publications != 2 {
		t.Fatalf("publications: got %d, want 2", stats.Publications)
	}
	if err := cat.Close(); err != nil {
		t.Fatal(err)
	}

	// A fresh process replays the catalog into an empty registry.
	cat2, err := OpenCatalog(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer cat2.Close()

	reg2 := New(nil)
	if err := cat2.LoadInto(ctx, reg2); err != nil {
		t.Fatalf("load: %v", err)
	}
	ps, err := reg2.Page("cart")
	if err != nil {
		t.Fatal(err)
	}
	if ps.Version != 1 {
		t.Fatalf("replayed active: got v%d, want pinned v1", ps.Version)
	}

	versions, _ := reg2.Versions("cart")
	if len(versions) != 2 {
		t.Fatalf("replayed versions: got %v", versions)
	}
}

func TestCatalog_UnpinActive(t *testing.T) {
	ctx := context.Background()
	cat, err := OpenCatalog(filepath.Join(t.TempDir(), "catalog.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	reg := New(nil)
	if err := cat.Publish(ctx, reg, testSet("orders", 1), ""); err != nil {
		t.Fatal(err)
	}
	if err := cat.Publish(ctx, reg, testSet("orders", 2), ""); err != nil {
		t.Fatal(err)
	}
	if err := cat.PinActive(ctx, reg, "orders", 1); err != nil {
		t.Fatal(err)
	}
	if err := cat.UnpinActive(ctx, reg, "orders"); err != nil {
		t.Fatal(err)
	}
	ps, err := reg.Page("orders")
	if err != nil {
		t.Fatal(err)
	}
	if ps.Version != 2 {
		t.Fatalf("after unpin: got v%d, want 2", ps.Version)
	}
}

package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM narrative_cache").Scan(&count); err != nil {
		t.Errorf("table narrative_cache: %v", err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestNarrativeCache(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	ctx := context.Background()
	c := NewNarrativeCache(d)

	if _, _, ok, err := c.Lookup(ctx, "intro.md"); err != nil || ok {
		t.Fatalf("Lookup on empty cache = ok %v err %v, want miss", ok, err)
	}

	if err := c.Store(ctx, "intro.md", `"v1"`, []byte("# One")); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := c.Store(ctx, "intro.md", `"v2"`, []byte("# Two")); err != nil {
		t.Fatalf("Store (update): %v", err)
	}

	etag, body, ok, err := c.Lookup(ctx, "intro.md")
	if err != nil || !ok {
		t.Fatalf("Lookup = ok %v err %v", ok, err)
	}
	if etag != `"v2"` || string(body) != "# Two" {
		t.Errorf("Lookup = %q %q, want v2 body", etag, body)
	}

	n, err := c.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()
	if d.Path() != path {
		t.Errorf("Path() = %q, want %q", d.Path(), path)
	}
}

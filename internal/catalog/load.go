package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
)

// CatalogFile is the name of the catalog file relative to the data root.
const CatalogFile = "chapters.json"

// ErrCatalogFetch wraps every failure to fetch or decode the catalog. Without a
// catalog nothing can be rendered, so callers treat it as fatal.
var ErrCatalogFetch = errors.New("catalog fetch failed")

// Load fetches chapters.json from src and decodes it.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	data, err := src.Fetch(ctx, CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogFetch, err)
	}
	var chapters []Chapter
	if err := json.Unmarshal(data, &chapters); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrCatalogFetch, CatalogFile, err)
	}
	return New(chapters), nil
}

// Holder publishes the current catalog snapshot. Readers get a consistent
// snapshot; a reload swaps it atomically and never mutates the old one.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder returns a Holder publishing c.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Get returns the current snapshot.
func (h *Holder) Get() *Catalog { return h.current.Load() }

// Reload loads a fresh catalog from src and publishes it. On failure the
// previous snapshot stays in place.
func (h *Holder) Reload(ctx context.Context, src Source) (*Catalog, error) {
	c, err := Load(ctx, src)
	if err != nil {
		return nil, err
	}
	h.current.Store(c)
	return c, nil
}

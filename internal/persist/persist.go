// Package persist stores small named values on the client between visits.
package persist

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
)

// Store gets, sets and clears string values by name.
type Store interface {
	Get(name string) (string, bool)
	Set(name, value string) error
	Clear(name string) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	return v, ok
}

func (m *MemoryStore) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	m.writes++
	return nil
}

func (m *MemoryStore) Clear(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
	m.writes++
	return nil
}

// Writes returns how many times Set or Clear has been called.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// CookieStore reads cookies from a request and writes Set-Cookie headers to
// the response. Values are URL-encoded on the wire.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	path   string
	maxAge time.Duration
}

// NewCookieStore returns a Store backed by the cookies of r. Cookies are
// written with the given path and max age.
func NewCookieStore(w http.ResponseWriter, r *http.Request, path string, maxAge time.Duration) *CookieStore {
	if path == "" {
		path = "/"
	}
	return &CookieStore{w: w, r: r, path: path, maxAge: maxAge}
}

func (s *CookieStore) Get(name string) (string, bool) {
	c, err := s.r.Cookie(name)
	if err != nil {
		return "", false
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return c.Value, true
	}
	return v, true
}

func (s *CookieStore) Set(name, value string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(value),
		Path:     s.path,
		MaxAge:   int(s.maxAge / time.Second),
		Expires:  time.Now().Add(s.maxAge),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *CookieStore) Clear(name string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   s.path,
		MaxAge: -1,
	})
	return nil
}

// EncodeSelection renders a coordinate as the persisted selection value.
func EncodeSelection(c catalog.Coordinate) string {
	b, _ := json.Marshal(c)
	return string(b)
}

// DecodeSelection parses a persisted selection value.
func DecodeSelection(value string) (catalog.Coordinate, error) {
	var c catalog.Coordinate
	if err := json.Unmarshal([]byte(value), &c); err != nil {
		return catalog.Coordinate{}, fmt.Errorf("decoding selection %q: %w", value, err)
	}
	return c, nil
}

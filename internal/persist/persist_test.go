package persist

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get("latest"); ok {
		t.Fatal("Get on empty store returned ok")
	}
	if err := s.Set("latest", "x"); err != nil {
		t.Fatal(err)
	}
	if v, ok := s.Get("latest"); !ok || v != "x" {
		t.Errorf("Get = %q, %v", v, ok)
	}
	if err := s.Clear("latest"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get("latest"); ok {
		t.Error("value survived Clear")
	}
	if s.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", s.Writes())
	}
}

func TestCookieStoreRoundTrip(t *testing.T) {
	value := EncodeSelection(catalog.Coordinate{Chapter: 2, Lecture: 3})

	rec := httptest.NewRecorder()
	s := NewCookieStore(rec, httptest.NewRequest(http.MethodGet, "/", nil), "/course/", 24*time.Hour)
	if err := s.Set("latest", value); err != nil {
		t.Fatal(err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Path != "/course/" || c.MaxAge != 86400 {
		t.Errorf("cookie path %q max-age %d", c.Path, c.MaxAge)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	got, ok := NewCookieStore(httptest.NewRecorder(), req, "/", time.Hour).Get("latest")
	if !ok || got != value {
		t.Fatalf("Get = %q, %v, want %q", got, ok, value)
	}
	coord, err := DecodeSelection(got)
	if err != nil {
		t.Fatal(err)
	}
	if coord != (catalog.Coordinate{Chapter: 2, Lecture: 3}) {
		t.Errorf("DecodeSelection = %+v", coord)
	}
}

func TestCookieStoreClear(t *testing.T) {
	rec := httptest.NewRecorder()
	s := NewCookieStore(rec, httptest.NewRequest(http.MethodGet, "/", nil), "", time.Hour)
	if err := s.Clear("latest"); err != nil {
		t.Fatal(err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("Clear cookies = %+v", cookies)
	}
}

func TestEncodeSelection(t *testing.T) {
	if got := EncodeSelection(catalog.Coordinate{Chapter: 1, Lecture: 1}); got != `{"chapter":1,"lecture":1}` {
		t.Errorf("EncodeSelection = %s", got)
	}
	if _, err := DecodeSelection("not json"); err == nil {
		t.Error("DecodeSelection accepted garbage")
	}
}

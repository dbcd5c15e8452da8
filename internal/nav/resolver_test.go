package nav

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
)

// sampleCatalog has 3 chapters with 2, 3 and 1 lectures.
func sampleCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Chapter{
		{ID: 1, Title: "Getting Started", Videos: []catalog.Lecture{
			{ID: 1, Title: "Intro - Overview", Href: "https://youtu.be/a1", MD: "1-1.md"},
			{ID: 2, Title: "Setup, Tools", Href: "https://youtu.be/a2", MD: "1-2.md"},
		}},
		{ID: 2, Title: "Offline", Videos: []catalog.Lecture{
			{ID: 1, Title: "Service Worker", Href: "https://youtu.be/b1", MD: "2-1.md"},
			{ID: 2, Title: "Cache API", Href: "https://youtu.be/b2", MD: "2-2.md"},
			{ID: 3, Title: "IndexedDB", Href: "https://youtu.be/b3", MD: "2-3.md"},
		}},
		{ID: 3, Title: "Wrap Up", Videos: []catalog.Lecture{
			{ID: 1, Title: "Next Steps", Href: "https://youtu.be/c1", MD: "3-1.md"},
		}},
	})
}

func TestInitialValidDeepLink(t *testing.T) {
	c := sampleCatalog()
	r := NewResolver(c)

	for ci, ch := range c.Chapters() {
		for li := range ch.Videos {
			coord := catalog.Coordinate{Chapter: ci + 1, Lecture: li + 1}
			d := r.Initial(fmt.Sprintf("?%d.%d.anything", coord.Chapter, coord.Lecture), "")

			want := ch.Videos[li]
			want.Chapter = coord.Chapter
			if diff := cmp.Diff(want, d.Lecture); diff != "" {
				t.Errorf("Initial(%s) lecture mismatch (-want +got):\n%s", coord, diff)
			}
			if d.Persist == nil || *d.Persist != coord {
				t.Errorf("Initial(%s) persist = %v, want %s", coord, d.Persist, coord)
			}
			if d.Err != nil {
				t.Errorf("Initial(%s) err = %v", coord, d.Err)
			}
		}
	}
}

func TestInitialNotFound(t *testing.T) {
	r := NewResolver(sampleCatalog())

	tests := []struct {
		query string
		want  error
	}{
		{"?9.1.x", ErrOutOfRange},
		{"?1.9.x", ErrOutOfRange},
		{"?0.1.x", ErrOutOfRange},
		{"?abc", ErrMalformedDeepLink},
		{"?1.", ErrMalformedDeepLink},
		{"?1.2", ErrMalformedDeepLink},
	}
	for _, tt := range tests {
		// A valid stored selection must not rescue a bad deep link.
		d := r.Initial(tt.query, `{"chapter":2,"lecture":3}`)
		if !d.Lecture.IsError() {
			t.Errorf("Initial(%q) = %+v, want NotFound", tt.query, d.Lecture)
		}
		if d.Lecture.Href != DefaultNotFound.Href || d.Lecture.MD != DefaultNotFound.MD {
			t.Errorf("Initial(%q) NotFound content = %+v", tt.query, d.Lecture)
		}
		if d.Persist != nil {
			t.Errorf("Initial(%q) persist = %v, want nil", tt.query, d.Persist)
		}
		if !errors.Is(d.Err, tt.want) {
			t.Errorf("Initial(%q) err = %v, want %v", tt.query, d.Err, tt.want)
		}
	}
}

func TestInitialNoQueryNoStored(t *testing.T) {
	r := NewResolver(sampleCatalog())
	for _, q := range []string{"", "?"} {
		d := r.Initial(q, "")
		if d.Lecture.Chapter != 1 || d.Lecture.ID != 1 {
			t.Errorf("Initial(%q) = %s, want 1.1", q, d.Lecture.Coordinate())
		}
		if d.Persist == nil || *d.Persist != (catalog.Coordinate{Chapter: 1, Lecture: 1}) {
			t.Errorf("Initial(%q) persist = %v, want 1.1", q, d.Persist)
		}
	}
}

func TestInitialStoredSelection(t *testing.T) {
	r := NewResolver(sampleCatalog())
	d := r.Initial("", `{"chapter":2,"lecture":3}`)
	if d.Lecture.Title != "IndexedDB" || d.Lecture.Chapter != 2 {
		t.Errorf("Initial = %+v, want IndexedDB in chapter 2", d.Lecture)
	}
	if d.Persist != nil {
		t.Errorf("persist = %v, want nil", d.Persist)
	}
	if d.Reset {
		t.Error("Reset set for a usable stored selection")
	}
}

func TestInitialUnusableStoredSelection(t *testing.T) {
	r := NewResolver(sampleCatalog())
	for _, stored := range []string{`{"chapter":7,"lecture":1}`, `garbage`, `{"chapter":1,"lecture":0}`} {
		d := r.Initial("", stored)
		if d.Lecture.Coordinate() != (catalog.Coordinate{Chapter: 1, Lecture: 1}) {
			t.Errorf("Initial(stored %s) = %s, want 1.1", stored, d.Lecture.Coordinate())
		}
		if d.Persist == nil || !d.Reset {
			t.Errorf("Initial(stored %s) persist %v reset %v, want default persisted", stored, d.Persist, d.Reset)
		}
	}
}

func TestInitialEmptyCatalog(t *testing.T) {
	r := NewResolver(catalog.New(nil))
	d := r.Initial("", "")
	if !d.Lecture.IsError() || d.Persist != nil {
		t.Errorf("Initial on empty catalog = %+v persist %v", d.Lecture, d.Persist)
	}
}

func TestClick(t *testing.T) {
	r := NewResolver(sampleCatalog())
	d, err := r.Click(2, 1)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if d.Lecture.Title != "Service Worker" || d.Persist == nil {
		t.Errorf("Click(2,1) = %+v persist %v", d.Lecture, d.Persist)
	}

	if _, err := r.Click(4, 1); !errors.Is(err, ErrUnknownLecture) {
		t.Errorf("Click(4,1) err = %v, want ErrUnknownLecture", err)
	}
}

func TestCustomNotFound(t *testing.T) {
	r := NewResolver(sampleCatalog())
	r.NotFound = catalog.Lecture{Title: "Nope", Href: "https://youtu.be/zzz", MD: "missing.md"}
	d := r.Initial("?5.5.x", "")
	if !d.Lecture.IsError() || d.Lecture.Title != "Nope" {
		t.Errorf("Initial = %+v", d.Lecture)
	}
}

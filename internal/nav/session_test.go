package nav

import (
	"context"
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/persist"
)

func newTestSession(t *testing.T, store persist.Store) (*Session, *MemoryHistory) {
	t.Helper()
	h := NewMemoryHistory()
	return NewSession(NewResolver(sampleCatalog()), store, h, WithBase("/course/")), h
}

func TestSessionDeepLinkPersistsSynchronously(t *testing.T) {
	store := persist.NewMemoryStore()
	s, h := newTestSession(t, store)

	out, err := s.Handle(context.Background(), DeepLinkRequest{Query: "?2.2.cache-api", URL: "/course/?2.2.cache-api"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got, _ := store.Get(DefaultCookieName); got != `{"chapter":2,"lecture":2}` {
		t.Errorf("stored = %q", got)
	}
	if out.Effects.History != HistoryReplace || h.Replaces != 1 || h.Pushes != 0 {
		t.Errorf("history effect %q replaces %d pushes %d", out.Effects.History, h.Replaces, h.Pushes)
	}
	if s.Active() != "2.2" || s.Expanded() != 2 || out.Effects.Focus != "2.2" {
		t.Errorf("active %q expanded %d focus %q", s.Active(), s.Expanded(), out.Effects.Focus)
	}

	if _, err := s.Handle(context.Background(), DeepLinkRequest{}); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second DeepLinkRequest err = %v, want ErrAlreadyInitialized", err)
	}
}

func TestSessionNotFoundLeavesStoreUntouched(t *testing.T) {
	store := persist.NewMemoryStore()
	store.Set(DefaultCookieName, `{"chapter":1,"lecture":2}`)
	s, h := newTestSession(t, store)

	out, err := s.Handle(context.Background(), DeepLinkRequest{Query: "?9.1.x", URL: "/course/?9.1.x"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !out.Lecture.IsError() || !errors.Is(out.Err, ErrOutOfRange) {
		t.Errorf("outcome = %+v", out)
	}
	if store.Writes() != 1 {
		t.Errorf("store writes = %d, want only the setup write", store.Writes())
	}
	if got, _ := store.Get(DefaultCookieName); got != `{"chapter":1,"lecture":2}` {
		t.Errorf("stored = %q", got)
	}
	// The NotFound page still gets a history entry but no focus.
	if h.Replaces != 1 || out.Effects.Focus != "" || s.Expanded() != 0 {
		t.Errorf("replaces %d focus %q expanded %d", h.Replaces, out.Effects.Focus, s.Expanded())
	}
}

func TestSessionClickRequiresInitialization(t *testing.T) {
	s, _ := newTestSession(t, persist.NewMemoryStore())
	if _, err := s.Handle(context.Background(), ClickRequest{Chapter: 1, Lecture: 1}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("err = %v, want ErrNotInitialized", err)
	}
}

func TestSessionClick(t *testing.T) {
	store := persist.NewMemoryStore()
	s, h := newTestSession(t, store)
	ctx := context.Background()
	if _, err := s.Handle(ctx, DeepLinkRequest{URL: "/course/"}); err != nil {
		t.Fatal(err)
	}

	out, err := s.Handle(ctx, ClickRequest{Chapter: 1, Lecture: 2})
	if err != nil {
		t.Fatalf("click: %v", err)
	}
	if out.URL != "/course/?1.2.setup-tools" {
		t.Errorf("URL = %q", out.URL)
	}
	if out.Effects.History != HistoryPush || h.Pushes != 1 || h.Len() != 2 {
		t.Errorf("history %q pushes %d len %d", out.Effects.History, h.Pushes, h.Len())
	}
	if got, _ := store.Get(DefaultCookieName); got != `{"chapter":1,"lecture":2}` {
		t.Errorf("stored = %q", got)
	}
	if s.Active() != "1.2" {
		t.Errorf("active = %q", s.Active())
	}

	if _, err := s.Handle(ctx, ClickRequest{Chapter: 3, Lecture: 4}); !errors.Is(err, ErrUnknownLecture) {
		t.Errorf("unknown click err = %v", err)
	}
}

func TestSessionPopWithoutEntry(t *testing.T) {
	store := persist.NewMemoryStore()
	s, h := newTestSession(t, store)
	ctx := context.Background()
	if _, err := s.Handle(ctx, DeepLinkRequest{}); err != nil {
		t.Fatal(err)
	}
	writes := store.Writes()

	out, err := s.Handle(ctx, PopRequest{})
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if !out.Noop || store.Writes() != writes || h.Pushes != 0 {
		t.Errorf("pop nil entry = %+v, writes %d", out, store.Writes())
	}
}

func TestSessionPopNotFoundDoesNotFocus(t *testing.T) {
	s, _ := newTestSession(t, persist.NewMemoryStore())
	ctx := context.Background()
	if _, err := s.Handle(ctx, DeepLinkRequest{Query: "?1.1.x"}); err != nil {
		t.Fatal(err)
	}
	out, err := s.Handle(ctx, PopRequest{Entry: &Entry{Lecture: DefaultNotFound, URL: "/?9.9.x"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Effects.Focus != "" || !out.Lecture.IsError() {
		t.Errorf("outcome = %+v", out)
	}
	if s.Active() != "1.1" {
		t.Errorf("active changed to %q", s.Active())
	}
}

func TestSessionLatestWins(t *testing.T) {
	s, _ := newTestSession(t, persist.NewMemoryStore())
	ctx := context.Background()
	if _, err := s.Handle(ctx, DeepLinkRequest{}); err != nil {
		t.Fatal(err)
	}
	first, _ := s.Handle(ctx, ClickRequest{Chapter: 1, Lecture: 2})
	second, _ := s.Handle(ctx, ClickRequest{Chapter: 2, Lecture: 1})

	if second.Token <= first.Token {
		t.Errorf("tokens not increasing: %d then %d", first.Token, second.Token)
	}
	if s.IsLatest(first.Token) || !s.IsLatest(second.Token) {
		t.Error("only the second click should be latest")
	}
	if s.Active() != "2.1" {
		t.Errorf("active = %q, want 2.1", s.Active())
	}
}

func TestResume(t *testing.T) {
	s := Resume(NewResolver(sampleCatalog()), persist.NewMemoryStore(), &Directive{}, "1.1", WithID("abc"))
	if !s.Initialized() || s.ID != "abc" || s.Active() != "1.1" {
		t.Errorf("Resume = %+v", s)
	}
	if _, err := s.Handle(context.Background(), ClickRequest{Chapter: 2, Lecture: 1}); err != nil {
		t.Errorf("click after resume: %v", err)
	}
}

func TestDirective(t *testing.T) {
	d := &Directive{}
	d.Push(Entry{URL: "/?1.1.a"})
	if d.Op != HistoryPush || d.Entry == nil || d.Entry.URL != "/?1.1.a" {
		t.Errorf("Directive = %+v", d)
	}
}

// After the initial load and any number of clicks, popping to any earlier
// entry shows exactly the lecture recorded there, without touching the store
// or the history.
func TestPopRestoresRecordedLecture(t *testing.T) {
	c := sampleCatalog()
	chapters := c.Chapters()

	rapid.Check(t, func(rt *rapid.T) {
		store := persist.NewMemoryStore()
		h := NewMemoryHistory()
		s := NewSession(NewResolver(c), store, h)
		ctx := context.Background()

		if _, err := s.Handle(ctx, DeepLinkRequest{URL: "/"}); err != nil {
			rt.Fatal(err)
		}
		recorded := []catalog.Coordinate{{Chapter: 1, Lecture: 1}}

		clicks := rapid.IntRange(0, 12).Draw(rt, "clicks")
		for i := 0; i < clicks; i++ {
			ch := rapid.IntRange(1, len(chapters)).Draw(rt, "chapter")
			lec := rapid.IntRange(1, len(chapters[ch-1].Videos)).Draw(rt, "lecture")
			if _, err := s.Handle(ctx, ClickRequest{Chapter: ch, Lecture: lec}); err != nil {
				rt.Fatal(err)
			}
			recorded = append(recorded, catalog.Coordinate{Chapter: ch, Lecture: lec})
		}

		back := rapid.IntRange(0, len(recorded)-1).Draw(rt, "back")
		entry := h.Go(-back)
		if entry == nil {
			rt.Fatalf("Go(-%d) left the stack of %d", back, h.Len())
		}

		writes, pushes, replaces := store.Writes(), h.Pushes, h.Replaces
		out, err := s.Handle(ctx, PopRequest{Entry: entry})
		if err != nil {
			rt.Fatal(err)
		}

		want := recorded[len(recorded)-1-back]
		if out.Lecture.Coordinate() != want {
			rt.Fatalf("pop shows %s, want %s", out.Lecture.Coordinate(), want)
		}
		if out.Effects.Persist != nil || out.Effects.History != HistoryNone {
			rt.Fatalf("pop effects = %+v", out.Effects)
		}
		if store.Writes() != writes || h.Pushes != pushes || h.Replaces != replaces {
			rt.Fatal("pop mutated the store or history")
		}
	})
}

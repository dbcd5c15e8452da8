package nav

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/deeplink"
	"github.com/ziadkadry99/walkthrough/internal/log"
	"github.com/ziadkadry99/walkthrough/internal/persist"
)

// DefaultCookieName is the name of the persisted selection.
const DefaultCookieName = "latest"

// Request is a navigation request consumed by Session.Handle.
type Request interface {
	request()
}

// DeepLinkRequest is the initial page load. Query is the raw query string and
// URL the page URL recorded in history.
type DeepLinkRequest struct {
	Query string
	URL   string
}

// ClickRequest selects a lecture from the navigation tree. URL is the deep
// link of the entry; when empty it is built from the session base.
type ClickRequest struct {
	Chapter int
	Lecture int
	URL     string
}

// PopRequest is a back/forward navigation carrying the stored history entry,
// which is nil when the entry has no state.
type PopRequest struct {
	Entry *Entry
}

func (DeepLinkRequest) request() {}
func (ClickRequest) request()    {}
func (PopRequest) request()      {}

// Effects lists the side effects of a navigation.
type Effects struct {
	Persist *catalog.Coordinate
	History HistoryOp
	// Focus is the nav entry ID that becomes active and visible, or empty.
	Focus string
}

// Outcome is the result of handling a request.
type Outcome struct {
	Lecture catalog.Lecture
	URL     string
	Effects Effects

	// Expanded is the chapter whose lecture list is open, or 0.
	Expanded int

	// Err classifies a NotFound lecture. It does not fail the request.
	Err error

	// Token orders outcomes of the same session; the highest is the latest.
	Token uint64

	// Noop is set for a pop without a history entry.
	Noop bool
}

// EntryID returns the nav entry ID of a lecture, or "" for NotFound.
func EntryID(lec catalog.Lecture) string {
	if lec.IsError() {
		return ""
	}
	return lec.Coordinate().String()
}

// Session holds the navigation state of one open page.
type Session struct {
	ID string

	resolver   *Resolver
	store      persist.Store
	history    History
	base       string
	cookieName string
	logger     zerolog.Logger

	initialized bool
	active      string
	expanded    int
	token       uint64
}

// Option configures a Session.
type Option func(*Session)

// WithBase sets the page URL deep links are built against.
func WithBase(base string) Option {
	return func(s *Session) { s.base = base }
}

// WithCookieName sets the name of the persisted selection.
func WithCookieName(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithID sets the session ID instead of generating one.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.ID = id
		}
	}
}

// NewSession returns an uninitialized session. The first request must be a
// DeepLinkRequest.
func NewSession(r *Resolver, store persist.Store, h History, opts ...Option) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		resolver:   r,
		store:      store,
		history:    h,
		base:       "/",
		cookieName: DefaultCookieName,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.WithComponent("nav").With().Str(log.FieldSessionID, s.ID).Logger()
	return s
}

// Resume returns a session whose initial load already happened, for hosts
// that handle every request of a page with a fresh Session value. active is
// the nav entry ID currently shown.
func Resume(r *Resolver, store persist.Store, h History, active string, opts ...Option) *Session {
	s := NewSession(r, store, h, opts...)
	s.initialized = true
	s.active = active
	return s
}

// Active returns the nav entry ID currently shown, or "".
func (s *Session) Active() string { return s.active }

// Expanded returns the chapter whose lecture list is open, or 0.
func (s *Session) Expanded() int { return s.expanded }

// Initialized reports whether the initial load has been handled.
func (s *Session) Initialized() bool { return s.initialized }

// IsLatest reports whether token belongs to the most recent outcome. Results
// of older requests are stale and should be dropped.
func (s *Session) IsLatest(token uint64) bool { return token == s.token }

// Handle processes one navigation request.
func (s *Session) Handle(ctx context.Context, req Request) (Outcome, error) {
	logger := log.WithContext(ctx, s.logger)
	switch req := req.(type) {
	case DeepLinkRequest:
		return s.deepLink(logger, req)
	case ClickRequest:
		return s.click(logger, req)
	case PopRequest:
		return s.pop(logger, req)
	default:
		return Outcome{}, fmt.Errorf("unsupported request %T", req)
	}
}

func (s *Session) next() uint64 {
	s.token++
	return s.token
}

func (s *Session) save(coord *catalog.Coordinate) error {
	if coord == nil {
		return nil
	}
	if err := s.store.Set(s.cookieName, persist.EncodeSelection(*coord)); err != nil {
		return fmt.Errorf("persisting selection %s: %w", coord, err)
	}
	return nil
}

func (s *Session) deepLink(logger zerolog.Logger, req DeepLinkRequest) (Outcome, error) {
	if s.initialized {
		return Outcome{}, ErrAlreadyInitialized
	}
	stored, _ := s.store.Get(s.cookieName)
	d := s.resolver.Initial(req.Query, stored)

	// The persisted selection is written before anything is rendered so that
	// a reload right after a deep link lands on the same lecture.
	if err := s.save(d.Persist); err != nil {
		return Outcome{}, err
	}

	entry := Entry{Lecture: d.Lecture, URL: req.URL}
	s.history.Replace(entry)
	s.initialized = true
	s.active = EntryID(d.Lecture)
	s.expanded = d.Lecture.Chapter

	ev := logger.Debug().Str(log.FieldEvent, "nav.initial").Str(log.FieldQuery, req.Query)
	if d.Err != nil {
		ev = logger.Info().Str(log.FieldEvent, "nav.not_found").Str(log.FieldQuery, req.Query).Err(d.Err)
	} else if d.Reset {
		ev = logger.Info().Str(log.FieldEvent, "nav.stored_reset").Str("stored", stored)
	}
	ev.Int(log.FieldChapter, d.Lecture.Chapter).Int(log.FieldLecture, d.Lecture.ID).Msg("initial selection")

	return Outcome{
		Lecture:  d.Lecture,
		URL:      req.URL,
		Effects:  Effects{Persist: d.Persist, History: HistoryReplace, Focus: s.active},
		Expanded: s.expanded,
		Err:      d.Err,
		Token:    s.next(),
	}, nil
}

func (s *Session) click(logger zerolog.Logger, req ClickRequest) (Outcome, error) {
	if !s.initialized {
		return Outcome{}, ErrNotInitialized
	}
	d, err := s.resolver.Click(req.Chapter, req.Lecture)
	if err != nil {
		return Outcome{}, err
	}
	url := req.URL
	if url == "" {
		url = deeplink.Build(s.base, d.Lecture.Chapter, d.Lecture.ID, d.Lecture.Title)
	}
	if err := s.save(d.Persist); err != nil {
		return Outcome{}, err
	}
	s.history.Push(Entry{Lecture: d.Lecture, URL: url})
	s.active = EntryID(d.Lecture)

	logger.Debug().Str(log.FieldEvent, "nav.click").
		Int(log.FieldChapter, req.Chapter).Int(log.FieldLecture, req.Lecture).
		Msg("lecture selected")

	return Outcome{
		Lecture:  d.Lecture,
		URL:      url,
		Effects:  Effects{Persist: d.Persist, History: HistoryPush},
		Expanded: s.expanded,
		Token:    s.next(),
	}, nil
}

func (s *Session) pop(logger zerolog.Logger, req PopRequest) (Outcome, error) {
	if req.Entry == nil {
		logger.Debug().Str(log.FieldEvent, "nav.pop_empty").Msg("pop without state ignored")
		return Outcome{Noop: true, Expanded: s.expanded, Token: s.next()}, nil
	}
	lec := req.Entry.Lecture
	focus := ""
	if !lec.IsError() {
		focus = EntryID(lec)
		s.active = focus
		s.expanded = lec.Chapter
	}

	logger.Debug().Str(log.FieldEvent, "nav.pop").
		Int(log.FieldChapter, lec.Chapter).Int(log.FieldLecture, lec.ID).
		Msg("history entry restored")

	return Outcome{
		Lecture:  lec,
		URL:      req.Entry.URL,
		Effects:  Effects{Focus: focus},
		Expanded: s.expanded,
		Token:    s.next(),
	}, nil
}

package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/log"
	"github.com/ziadkadry99/walkthrough/internal/nav"
	"github.com/ziadkadry99/walkthrough/internal/persist"
	"github.com/ziadkadry99/walkthrough/internal/present"
)

// sessionHeader carries the page's navigation session ID on api requests.
const sessionHeader = "X-Session-ID"

// navigateRequest is the JSON body for the api/navigate endpoint.
type navigateRequest struct {
	Chapter int    `json:"chapter"`
	Lecture int    `json:"lecture"`
	Seq     uint64 `json:"seq"`
}

// popRequest is the JSON body for the api/pop endpoint.
type popRequest struct {
	Entry *nav.Entry `json:"entry"`
	Seq   uint64     `json:"seq"`
}

// navigateResponse is returned by api/navigate and api/pop.
type navigateResponse struct {
	Entry   *nav.Entry    `json:"entry,omitempty"`
	History nav.HistoryOp `json:"history,omitempty"`
	Title   string        `json:"title"`
	Content string        `json:"content"`
	Focus   string        `json:"focus,omitempty"`
	Seq     uint64        `json:"seq"`
}

// pageData holds the data passed to the page template.
type pageData struct {
	SiteTitle  string
	BasePath   string
	SessionID  string
	Tree       template.HTML
	Content    present.Content
	Entry      nav.Entry
	LiveReload bool
}

// origin returns the scheme and host the request was addressed to.
func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

// linkBase is the page URL deep links are built against.
func (s *Server) linkBase(r *http.Request) string {
	return origin(r) + s.cfg.BasePath
}

func (s *Server) newSession(w http.ResponseWriter, r *http.Request, c *catalog.Catalog, h nav.History, resume bool) *nav.Session {
	resolver := &nav.Resolver{Catalog: c, NotFound: s.notFound}
	store := persist.NewCookieStore(w, r, s.cfg.BasePath, s.cfg.CookieMaxAge)
	opts := []nav.Option{
		nav.WithBase(s.linkBase(r)),
		nav.WithCookieName(s.cfg.CookieName),
		nav.WithID(r.Header.Get(sessionHeader)),
	}
	if resume {
		return nav.Resume(resolver, store, h, "", opts...)
	}
	return nav.NewSession(resolver, store, h, opts...)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	c := s.catalogs.Get()
	history := &nav.Directive{}
	sess := s.newSession(w, r, c, history, false)
	ctx := log.ContextWithSessionID(r.Context(), sess.ID)
	logger := log.FromContext(ctx, "viewer")

	out, err := sess.Handle(ctx, nav.DeepLinkRequest{Query: r.URL.RawQuery, URL: origin(r) + r.URL.RequestURI()})
	if err != nil {
		s.metrics.navigations.WithLabelValues("initial", "error").Inc()
		logger.Error().Err(err).Msg("initial navigation failed")
		http.Error(w, "navigation failed", http.StatusInternalServerError)
		return
	}
	s.countNavigation("initial", out)

	content := s.presentLecture(ctx, out.Lecture)
	data := pageData{
		SiteTitle:  s.cfg.Title,
		BasePath:   s.cfg.BasePath,
		SessionID:  sess.ID,
		Tree:       template.HTML(nav.BuildTree(c, s.linkBase(r), out.Lecture).ToHTML()),
		Content:    content,
		Entry:      *history.Entry,
		LiveReload: s.cfg.LiveReload,
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "page", data); err != nil {
		logger.Error().Err(err).Msg("rendering page")
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	history := &nav.Directive{}
	sess := s.newSession(w, r, s.catalogs.Get(), history, true)
	ctx := log.ContextWithSessionID(r.Context(), sess.ID)

	out, err := sess.Handle(ctx, nav.ClickRequest{Chapter: req.Chapter, Lecture: req.Lecture})
	if errors.Is(err, nav.ErrUnknownLecture) {
		s.metrics.navigations.WithLabelValues("click", "error").Inc()
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.metrics.navigations.WithLabelValues("click", "error").Inc()
		logger := log.FromContext(ctx, "viewer")
		logger.Error().Err(err).Msg("click navigation failed")
		writeError(w, http.StatusInternalServerError, "navigation failed")
		return
	}
	s.countNavigation("click", out)

	html, err := s.renderContent(s.presentLecture(ctx, out.Lecture))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "rendering failed")
		return
	}
	writeJSON(w, http.StatusOK, navigateResponse{
		Entry:   history.Entry,
		History: out.Effects.History,
		Title:   out.Lecture.Title,
		Content: html,
		Focus:   nav.EntryID(out.Lecture),
		Seq:     req.Seq,
	})
}

func (s *Server) handlePop(w http.ResponseWriter, r *http.Request) {
	var req popRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Entry == nil {
		s.metrics.navigations.WithLabelValues("pop", "noop").Inc()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// A pop never persists, so no cookie can be written here.
	sess := s.newSession(w, r, s.catalogs.Get(), &nav.Directive{}, true)
	ctx := log.ContextWithSessionID(r.Context(), sess.ID)
	out, err := sess.Handle(ctx, nav.PopRequest{Entry: req.Entry})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "navigation failed")
		return
	}
	s.countNavigation("pop", out)

	html, err := s.renderContent(s.presentLecture(ctx, out.Lecture))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "rendering failed")
		return
	}
	writeJSON(w, http.StatusOK, navigateResponse{
		Title:   out.Lecture.Title,
		Content: html,
		Focus:   out.Effects.Focus,
		Seq:     req.Seq,
	})
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	data, err := s.src.Fetch(r.Context(), name)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, catalog.ErrNotFound) {
			status = http.StatusNotFound
		}
		logger := log.FromContext(r.Context(), "viewer")
		logger.Debug().Err(err).Str(log.FieldFile, name).Msg("data fetch failed")
		http.Error(w, http.StatusText(status), status)
		return
	}
	ctype := mime.TypeByExtension(path.Ext(name))
	if path.Ext(name) == ".md" {
		ctype = "text/markdown; charset=utf-8"
	}
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	_, _ = w.Write(data)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "chroma.css" {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write(s.chromaCSS)
		return
	}
	a, ok := assets[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", a.contentType)
	_, _ = w.Write([]byte(a.body))
}

func (s *Server) presentLecture(ctx context.Context, lec catalog.Lecture) present.Content {
	c := s.presenter.Present(ctx, lec)
	if c.Err != nil {
		s.metrics.narrativeFailures.Inc()
	}
	return c
}

func (s *Server) renderContent(c present.Content) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "content", c); err != nil {
		s.logger.Error().Err(err).Msg("rendering content")
		return "", err
	}
	return buf.String(), nil
}

func (s *Server) countNavigation(kind string, out nav.Outcome) {
	result := "ok"
	switch {
	case out.Noop:
		result = "noop"
	case out.Lecture.IsError():
		result = "not_found"
	}
	s.metrics.navigations.WithLabelValues(kind, result).Inc()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Package viewer serves the lecture viewer page and the JSON endpoints its
// script uses for in-page navigation.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/log"
	"github.com/ziadkadry99/walkthrough/internal/present"
)

// Config holds server configuration.
type Config struct {
	Port         int
	BasePath     string // must start and end with "/"
	Title        string
	CookieName   string
	CookieMaxAge time.Duration
	AllowAll     bool // allow all CORS origins (dev mode)
	RateLimit    int  // requests per RateWindow on api routes, 0 disables
	RateWindow   time.Duration
	LiveReload   bool
}

// Server is the lecture viewer host.
type Server struct {
	cfg       Config
	catalogs  *catalog.Holder
	src       catalog.Source
	presenter *present.Presenter
	notFound  catalog.Lecture
	hub       *Hub
	metrics   *metrics
	registry  *prometheus.Registry
	tmpl      *template.Template
	chromaCSS []byte
	logger    zerolog.Logger

	router     chi.Router
	httpServer *http.Server
}

// New creates a viewer server. notFound is the lecture shown for
// unresolvable deep links.
func New(cfg Config, catalogs *catalog.Holder, src catalog.Source, p *present.Presenter, notFound catalog.Lecture) (*Server, error) {
	if cfg.BasePath == "" {
		cfg.BasePath = "/"
	}
	if cfg.Title == "" {
		cfg.Title = "Walkthrough"
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	css, err := p.CSS()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:       cfg,
		catalogs:  catalogs,
		src:       src,
		presenter: p,
		notFound:  notFound,
		hub:       NewHub(),
		metrics:   newMetrics(reg),
		registry:  reg,
		tmpl:      tmpl,
		chromaCSS: css,
		logger:    log.WithComponent("viewer"),
	}
	s.router = s.buildRouter()
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	viewer := func(r chi.Router) {
		r.Get("/", s.handlePage)
		r.Get("/data/*", s.handleData)
		r.Get("/assets/{name}", s.handleAsset)
		if s.cfg.LiveReload {
			r.Get("/ws/reload", s.hub.ServeHTTP)
		}
		r.Route("/api", func(r chi.Router) {
			if s.cfg.RateLimit > 0 {
				r.Use(rateLimit(s.cfg.RateLimit, s.cfg.RateWindow))
			}
			r.Post("/navigate", s.handleNavigate)
			r.Post("/pop", s.handlePop)
		})
	}
	if s.cfg.BasePath == "/" {
		viewer(r)
	} else {
		r.Route(strings.TrimSuffix(s.cfg.BasePath, "/"), viewer)
	}

	return r
}

func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Hub returns the live reload hub.
func (s *Server) Hub() *Hub { return s.hub }

// Run listens on the configured port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str(log.FieldEvent, "viewer.listening").Str("addr", addr).Str(log.FieldPath, s.cfg.BasePath).Msg("viewer listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.Close()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Reload reloads the catalog when it changed and tells connected pages to
// refresh. It has the signature of a watch handler.
func (s *Server) Reload(ctx context.Context, changed []string) {
	for _, name := range changed {
		if name != catalog.CatalogFile {
			continue
		}
		if _, err := s.catalogs.Reload(ctx, s.src); err != nil {
			s.metrics.reloads.WithLabelValues("failed").Inc()
			s.logger.Error().Err(err).Str(log.FieldEvent, "viewer.reload_failed").Msg("catalog reload failed, keeping previous catalog")
			return
		}
		s.logger.Info().Str(log.FieldEvent, "viewer.catalog_reloaded").Int("chapters", s.catalogs.Get().Len()).Msg("catalog reloaded")
	}
	s.metrics.reloads.WithLabelValues("ok").Inc()
	s.hub.BroadcastReload(changed)
}

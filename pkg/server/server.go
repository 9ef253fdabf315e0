// Package server serves the display surfaces and the configurator API over
// HTTP.
//
// Routes:
//
//	GET  /display?config=<token>       HTML display page
//	GET  /display.txt?config=<token>   terminal text surface (w, h query params)
//	GET  /s/{id}                       redirect a short link to /display
//	GET  /api/widgets                  registered widget descriptors
//	POST /api/encode                   DisplayConfig JSON -> token
//	GET  /api/decode?config=<token>    token -> DisplayConfig JSON
//	POST /api/links                    token -> short link
//	GET  /healthz                      liveness
//
// The display routes never fail on a bad token: they render the default
// configuration instead and flag the fallback in the X-Signboard-Fallback
// response header.
package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/signboard/pkg/cache"
	"github.com/matzehuels/signboard/pkg/codec"
	"github.com/matzehuels/signboard/pkg/compose"
	"github.com/matzehuels/signboard/pkg/display"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/shortlink"
	"github.com/matzehuels/signboard/pkg/widget"
)

// FallbackHeader is set to "true" when a display route substituted the
// default configuration for an undecodable token.
const FallbackHeader = "X-Signboard-Fallback"

// Default text surface size.
const (
	DefaultTextWidth  = 120
	DefaultTextHeight = 40
	maxTextSize       = 1000
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Addr is the listen address for ListenAndServe.
	Addr string

	// BaseURL prefixes the URLs returned by the API. Empty means
	// relative URLs.
	BaseURL string

	// DecodeCacheSize bounds the number of decoded tokens kept in memory.
	DecodeCacheSize int

	// RefreshSeconds is the meta refresh interval of the HTML page.
	RefreshSeconds int

	// Registry resolves widget types. Required.
	Registry *widget.Registry

	// Links stores short links. Nil disables the short link routes.
	Links *shortlink.Store

	Logger *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	opts    Options
	logger  *log.Logger
	decoded *lru.Cache[string, decoded]
	renders singleflight.Group
	keys    cache.Keyer
	router  chi.Router
}

type decoded struct {
	cfg layout.DisplayConfig
	ok  bool
}

// New creates a server.
func New(opts Options) (*Server, error) {
	if opts.Registry == nil {
		return nil, errors.New("server: registry is required")
	}
	if opts.DecodeCacheSize < 1 {
		opts.DecodeCacheSize = 256
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	decodedCache, err := lru.New[string, decoded](opts.DecodeCacheSize)
	if err != nil {
		return nil, err
	}
	s := &Server{opts: opts, logger: logger, decoded: decodedCache, keys: cache.NewDefaultKeyer()}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/display?"+r.URL.RawQuery, http.StatusFound)
	})
	r.Get("/display", s.handleDisplayHTML)
	r.Get("/display.txt", s.handleDisplayText)
	r.Get("/s/{id}", s.handleLink)

	r.Route("/api", func(r chi.Router) {
		r.Get("/widgets", s.handleWidgets)
		r.Post("/encode", s.handleEncode)
		r.Get("/decode", s.handleDecode)
		r.Post("/links", s.handleShorten)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// decode resolves a token through the decode cache.
func (s *Server) decode(token string) (layout.DisplayConfig, bool) {
	if d, ok := s.decoded.Get(token); ok {
		return d.cfg.Clone(), d.ok
	}
	cfg, err := codec.Decode(token)
	d := decoded{cfg: cfg, ok: err == nil}
	if err != nil {
		if token != "" {
			s.logger.Warn("undecodable token, using default", "err", err)
		}
		d.cfg = layout.Default()
	}
	s.decoded.Add(token, d)
	return d.cfg.Clone(), d.ok
}

func (s *Server) compose(token string) (compose.Composition, bool) {
	cfg, ok := s.decode(token)
	return compose.Compose(cfg, s.opts.Registry), ok
}

// render collapses concurrent renders of the same key.
func (s *Server) render(key string, fn func() ([]byte, error)) ([]byte, error) {
	v, err, _ := s.renders.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Server) handleDisplayHTML(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("config")
	comp, ok := s.compose(token)
	body, err := s.render(s.keys.RenderKey(token, display.SurfaceHTML, 0, 0), func() ([]byte, error) {
		var buf bytes.Buffer
		err := display.HTML(r.Context(), &buf, comp, display.HTMLOptions{RefreshSeconds: s.opts.RefreshSeconds})
		return buf.Bytes(), err
	})
	if err != nil {
		s.logger.Error("render html", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	setFallback(w, ok)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

func (s *Server) handleDisplayText(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := q.Get("config")
	width := intParam(q.Get("w"), DefaultTextWidth)
	height := intParam(q.Get("h"), DefaultTextHeight)

	comp, ok := s.compose(token)
	body, _ := s.render(s.keys.RenderKey(token, display.SurfaceTerminal, width, height), func() ([]byte, error) {
		return []byte(ansi.Strip(display.Terminal(r.Context(), comp, width, height)) + "\n"), nil
	})
	setFallback(w, ok)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(body)
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	if s.opts.Links == nil {
		http.NotFound(w, r)
		return
	}
	token, err := s.opts.Links.Resolve(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, shortlink.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("resolve link", "err", err)
		http.Error(w, "link store unavailable", http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, "/display?config="+token, http.StatusFound)
}

func setFallback(w http.ResponseWriter, ok bool) {
	if !ok {
		w.Header().Set(FallbackHeader, "true")
	}
}

func intParam(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return min(n, maxTextSize)
}

// logRequests logs every request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-formfill/internal/metrics"
	"github.com/goliatone/go-formfill/pkg/client"
	"github.com/goliatone/go-formfill/pkg/render"
	"github.com/goliatone/go-formfill/pkg/renderers/html"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/submission"
)

// Backend is the remote form service the host forwards to. *client.Service
// satisfies it.
type Backend interface {
	submission.Submitter
	PublicForms(ctx context.Context) ([]schema.Summary, error)
	PublicForm(ctx context.Context, formID string) (schema.Form, error)
	VerificationData(ctx context.Context, req client.VerificationRequest) (client.VerificationData, error)
	RevokeParticipation(ctx context.Context, req client.VerificationRequest) error
}

var _ Backend = (*client.Service)(nil)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and handler logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records submissions and requests and exposes /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithRenderer replaces the HTML page renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithBasePath mounts every page under prefix, for example "/isa-form".
func WithBasePath(prefix string) Option {
	return func(s *Server) {
		s.basePath = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// WithAssetPrefix points stylesheet links somewhere other than the bundled
// asset route.
func WithAssetPrefix(prefix string) Option {
	return func(s *Server) {
		s.assetPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// WithPublicOrigin fixes the domain reported to the backend. When unset the
// request origin is used.
func WithPublicOrigin(origin string) Option {
	return func(s *Server) {
		s.publicOrigin = strings.TrimRight(strings.TrimSpace(origin), "/")
	}
}

// WithRedirectDelay sets how long the success page waits before returning to
// the list.
func WithRedirectDelay(delay time.Duration) Option {
	return func(s *Server) {
		if delay >= 0 {
			s.redirectDelay = delay
		}
	}
}

// WithOptionCheck rejects choice answers outside the declared options.
func WithOptionCheck(enabled bool) Option {
	return func(s *Server) {
		s.optionCheck = enabled
	}
}

// Server hosts the form pages, the JSON API, and the bundled assets.
type Server struct {
	backend       Backend
	renderer      render.Renderer
	logger        *slog.Logger
	metrics       *metrics.Metrics
	basePath      string
	assetPrefix   string
	publicOrigin  string
	redirectDelay time.Duration
	optionCheck   bool
	api           *apiDescription
	router        chi.Router
}

// New wires the routes. The backend is required.
func New(backend Backend, opts ...Option) (*Server, error) {
	if backend == nil {
		return nil, errors.New("server: backend is required")
	}
	s := &Server{
		backend:       backend,
		logger:        slog.Default(),
		redirectDelay: submission.DefaultRedirectDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderer == nil {
		renderer, err := html.New()
		if err != nil {
			return nil, fmt.Errorf("server: html renderer: %w", err)
		}
		s.renderer = renderer
	}
	if s.assetPrefix == "" {
		s.assetPrefix = s.basePath + "/assets"
	}

	api, err := loadAPIDescription(context.Background())
	if err != nil {
		return nil, err
	}
	s.api = api
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics(s.metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	if s.basePath == "" {
		s.mount(r)
		return r
	}
	r.Route(s.basePath, s.mount)
	return r
}

func (s *Server) mount(r chi.Router) {
	r.Get("/", s.handleList)
	r.Get("/form/{formID}", s.handleForm)
	r.Post("/form/{formID}", s.handleFormPost)
	r.Get("/verify", s.handleVerify)
	r.Post("/verify/revoke", s.handleRevoke)
	r.Handle("/assets/*", http.StripPrefix(s.basePath+"/assets/", http.FileServer(http.FS(html.AssetsFS()))))

	r.Route("/api", func(r chi.Router) {
		r.Get("/openapi.json", s.handleAPIDescription)
		r.Get("/forms", s.handleAPIForms)
		r.Get("/forms/{formID}", s.handleAPIForm)
		r.Post("/forms/{formID}/validate", s.handleAPIValidate)
		r.Post("/forms/{formID}/responses", s.handleAPISubmit)
	})
}

// origin is the domain reported to the backend with submissions and
// verification lookups.
func (s *Server) origin(r *http.Request) string {
	if s.publicOrigin != "" {
		return s.publicOrigin
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (s *Server) renderOptions() render.RenderOptions {
	return render.RenderOptions{BasePath: s.basePath, AssetPrefix: s.assetPrefix}
}

// Package http serves the data-entry page and its htmx partials.
package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"dataentry/internal/cache"
	"dataentry/internal/fetch"
	"dataentry/internal/log"
	"dataentry/internal/middleware/ratelimit"
	"dataentry/internal/middleware/security"
	"dataentry/internal/middleware/trace"
	"dataentry/internal/services"
	"dataentry/internal/session"
	"dataentry/internal/sheets"
	"dataentry/internal/view"
	appweb "dataentry/web"
)

// sessionCleanupInterval is how often expired sessions are swept.
const sessionCleanupInterval = time.Minute

// SubmissionStats reports submission counters for /metrics.
type SubmissionStats interface {
	Stats() services.Stats
}

// FetchStats reports results-endpoint counters for /metrics.
type FetchStats interface {
	GetMetrics() fetch.Metrics
}

// Options configures a Server. Sessions and Taxonomy are required.
type Options struct {
	Addr               string
	Sessions           *session.Store
	Taxonomy           sheets.TaxonomyReader
	Submissions        SubmissionStats
	Fetches            FetchStats
	RateLimitPerMinute int
	SessionsPerMinute  int // new sessions per client IP
	Logger             *log.Logger
}

// Server wraps http.Server with the application's dependencies.
type Server struct {
	http.Server

	templates   *template.Template
	sessions    *session.Store
	taxonomy    sheets.TaxonomyReader
	submissions SubmissionStats
	fetches     FetchStats

	cacheManager     *cache.Manager
	rateLimiter      *ratelimit.Limiter
	sessionLimiter   *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	headers          *security.HeadersMiddleware

	logger       *log.Logger
	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates, mounts the routes and starts the
// session sweeper.
func NewServer(opts Options) (*Server, error) {
	if opts.Sessions == nil {
		return nil, errors.New("http server: sessions are required")
	}
	if opts.Taxonomy == nil {
		return nil, errors.New("http server: taxonomy is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector(opts.Logger)

	s := &Server{
		templates:        t,
		sessions:         opts.Sessions,
		taxonomy:         opts.Taxonomy,
		submissions:      opts.Submissions,
		fetches:          opts.Fetches,
		cacheManager:     cache.NewManager(opts.Logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		sessionLimiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.SessionsPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, opts.Logger),
		headers:          security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		logger:           logger,
		startedAt:        time.Now(),
	}

	s.cacheManager.Register(s.sessions)
	s.cacheManager.StartCleanup(sessionCleanupInterval)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	// Entry edits
	mux.Handle("/entry/field", s.limited(s.handleEntryField))
	mux.Handle("/entry/date", s.limited(s.handleEntryDate))
	mux.Handle("/entry/time", s.limited(s.handleEntryTime))
	mux.Handle("/entry/submit", s.limited(s.handleEntrySubmit))

	// Results partials
	mux.HandleFunc("/ui/results", s.handleResults)
	mux.Handle("/ui/results/prev", s.limited(s.handleResultsPrev))
	mux.Handle("/ui/results/next", s.limited(s.handleResultsNext))
	mux.Handle("/ui/results/page", s.limited(s.handleResultsPage))

	return s.traceMiddleware.Middleware(
		s.securityDetector.Middleware(
			s.headers.Middleware(mux)))
}

// limited applies the per-client rate limit to a mutating handler.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited)(h)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
	)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests, slow down").Write(w)
}

// startSession resolves the page's session, starting one only while the
// client is under its session creation limit.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request) (*view.View, bool) {
	if v, ok := s.sessions.Lookup(r); ok {
		return v, true
	}
	if !s.sessionLimiter.Allow(s.securityDetector.ExtractClientIP(r)) {
		s.onRateLimited(w, r)
		return nil, false
	}
	return s.sessions.Resolve(w, r), true
}

// liveSession returns the request's existing session. Partials never start
// one; without it the page has to be reloaded.
func (s *Server) liveSession(w http.ResponseWriter, r *http.Request) (*view.View, bool) {
	v, ok := s.sessions.Lookup(r)
	if !ok {
		ErrorResponse(http.StatusGone, "Session expired, please reload the page").Write(w)
	}
	return v, ok
}

// Shutdown stops the background sweepers, closes every session and then
// shuts the listener down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		s.sessionLimiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
		s.sessions.Close()
	})

	return shutdownErr
}

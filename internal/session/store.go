// Package session maps browser cookies to form views.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"dataentry/internal/cache"
	"dataentry/internal/log"
	"dataentry/internal/view"
)

// CookieName is the cookie carrying the session id.
const CookieName = "session_id"

const (
	DefaultTTL     = 30 * time.Minute
	DefaultMaxSize = 1000
)

// Factory builds the view for a new session id.
type Factory func(id string) *view.View

// Options configures a Store. NewView is required.
type Options struct {
	NewView      Factory
	TTL          time.Duration
	MaxSize      int
	SecureCookie bool
	Logger       *log.Logger
	Now          func() time.Time
}

// Store keeps one view per session in an LRU cache with TTL. A view leaving
// the cache, by eviction, expiry, deletion or purge, is closed.
type Store struct {
	views   *cache.LRUCache[*view.View]
	newView Factory
	ttl     time.Duration
	secure  bool
	logger  *log.Logger

	// serialises get-or-create so one id never gets two views
	mu sync.Mutex
}

var _ cache.Cleaner = (*Store)(nil)

func NewStore(opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}

	s := &Store{
		newView: opts.NewView,
		ttl:     opts.TTL,
		secure:  opts.SecureCookie,
		logger:  opts.Logger.WithComponent(log.ComponentSession),
	}

	cacheOpts := []cache.Option[*view.View]{cache.WithEvictHook(s.onEvict)}
	if opts.Now != nil {
		cacheOpts = append(cacheOpts, cache.WithClock[*view.View](opts.Now))
	}
	s.views = cache.NewLRUCache(opts.MaxSize, opts.TTL, cacheOpts...)
	return s
}

func (s *Store) onEvict(id string, v *view.View) {
	v.Close()
	s.logger.Debug("Session closed", log.FieldSessionID, id, log.FieldOperation, log.OpEvict)
}

// Get returns the live view for id and extends its lifetime.
func (s *Store) Get(id string) (*view.View, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := s.views.Get(id)
	if !ok {
		return nil, false
	}
	s.views.Touch(id)
	return v, true
}

// Create starts a new session with a random id.
func (s *Store) Create() *view.View {
	id := uuid.NewString()
	v := s.newView(id)
	s.views.Set(id, v)
	s.logger.Debug("Session created", log.FieldSessionID, id)
	return v
}

// Lookup returns the live view named by the request's session cookie. It never
// creates a session.
func (s *Store) Lookup(r *http.Request) (*view.View, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return s.Get(c.Value)
}

// Resolve returns the view for the request's session cookie, starting a new
// session and setting the cookie when there is none or it has expired.
func (s *Store) Resolve(w http.ResponseWriter, r *http.Request) *view.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(CookieName); err == nil {
		if v, ok := s.Get(c.Value); ok {
			return v
		}
	}

	v := s.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    v.ID(),
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return v
}

// Delete ends a session.
func (s *Store) Delete(id string) {
	s.views.Delete(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.views.Size()
}

// CleanExpired closes every expired session.
func (s *Store) CleanExpired() int {
	return s.views.CleanExpired()
}

// Close ends every session and returns how many were open.
func (s *Store) Close() int {
	n := s.views.Purge()
	s.logger.Info("Sessions closed", log.FieldOperation, log.OpShutdown, "sessions", n)
	return n
}

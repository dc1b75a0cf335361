package session

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataentry/internal/view"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore(t *testing.T, maxSize int, c *clock) *Store {
	t.Helper()
	opts := Options{
		MaxSize: maxSize,
		TTL:     time.Minute,
		NewView: func(id string) *view.View {
			return view.New(view.Options{SessionID: id, RefreshInterval: time.Hour})
		},
	}
	if c != nil {
		opts.Now = c.Now
	}
	s := NewStore(opts)
	t.Cleanup(func() { s.Close() })
	return s
}

func cookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", CookieName)
	return nil
}

func TestResolveCreatesAndReuses(t *testing.T) {
	s := newStore(t, 10, nil)

	rec := httptest.NewRecorder()
	v := s.Resolve(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	c := cookieFrom(t, rec)
	assert.Equal(t, v.ID(), c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 1, s.Len())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	again := s.Resolve(rec, req)
	assert.Same(t, v, again)
	assert.Empty(t, rec.Result().Cookies())
}

func TestResolveUnknownCookieStartsNewSession(t *testing.T) {
	s := newStore(t, 10, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
	rec := httptest.NewRecorder()
	v := s.Resolve(rec, req)

	assert.NotEqual(t, "stale", v.ID())
	assert.Equal(t, v.ID(), cookieFrom(t, rec).Value)
}

func TestEvictionClosesView(t *testing.T) {
	s := newStore(t, 2, nil)

	a := s.Create()
	b := s.Create()
	_, ok := s.Get(a.ID())
	require.True(t, ok)
	c := s.Create()

	assert.True(t, b.Closed(), "least recently used view should be closed")
	assert.False(t, a.Closed())
	assert.False(t, c.Closed())
	assert.Equal(t, 2, s.Len())
}

func TestExpiryClosesView(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newStore(t, 10, clk)

	keep := s.Create()
	drop := s.Create()

	clk.Advance(40 * time.Second)
	_, ok := s.Get(keep.ID())
	require.True(t, ok)
	clk.Advance(40 * time.Second)

	assert.Equal(t, 1, s.CleanExpired())
	assert.True(t, drop.Closed())
	assert.False(t, keep.Closed())

	_, ok = s.Get(drop.ID())
	assert.False(t, ok)
}

func TestDeleteAndClose(t *testing.T) {
	s := newStore(t, 10, nil)
	a := s.Create()
	b := s.Create()

	s.Delete(a.ID())
	assert.True(t, a.Closed())

	assert.Equal(t, 1, s.Close())
	assert.True(t, b.Closed())
	assert.Zero(t, s.Len())
}

func TestLookupNeverCreates(t *testing.T) {
	s := newStore(t, 10, nil)

	_, ok := s.Lookup(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
	_, ok = s.Lookup(req)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())

	v := s.Create()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: v.ID()})
	got, ok := s.Lookup(req)
	require.True(t, ok)
	assert.Same(t, v, got)
}

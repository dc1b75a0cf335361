package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataentry/internal/core"
)

func sampleEntry() core.FormEntry {
	return core.FormEntry{
		Date:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Time:        time.Date(2024, 5, 1, 8, 45, 0, 0, time.UTC),
		Category:    "Option 1",
		SubCategory: "Option 2",
		ItemName:    "Apple",
		Quantity:    "3",
		Comments:    "not sent",
	}
}

func TestQuery(t *testing.T) {
	q := Query(sampleEntry())

	assert.Equal(t, "2024-05-01T12:00:00.000Z", q.Get("date"))
	assert.Equal(t, "08:45:00", q.Get("time"))
	assert.Equal(t, "Option 1", q.Get("category"))
	assert.Equal(t, "Option 2", q.Get("subCategory"))
	assert.Equal(t, "Apple", q.Get("itemName"))
	assert.Equal(t, "3", q.Get("quantity"))
	assert.True(t, q.Has("totalPrice"), "empty totalPrice is still sent")
	assert.Empty(t, q.Get("totalPrice"))
	assert.False(t, q.Has("comments"))
}

func TestClientFetch(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"t1","body":"b1","userId":9},{"id":2,"title":"t2","body":"b2"}]`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/posts?lang=en", srv.Client(), time.Second)
	require.NoError(t, err)

	rows, err := c.Fetch(context.Background(), sampleEntry())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, core.ResultRow{ID: 1, Title: "t1", Body: "b1"}, rows[0])

	assert.Equal(t, "en", got.Get("lang"), "endpoint query is preserved")
	assert.Equal(t, "3", got.Get("quantity"))
	assert.Equal(t, "", got.Get("totalPrice"))
}

func TestClientFetchErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		c, err := NewClient(srv.URL, srv.Client(), time.Second)
		require.NoError(t, err)
		_, err = c.Fetch(context.Background(), sampleEntry())
		assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":1}`))
		}))
		defer srv.Close()

		c, err := NewClient(srv.URL, srv.Client(), time.Second)
		require.NoError(t, err)
		_, err = c.Fetch(context.Background(), sampleEntry())
		assert.ErrorContains(t, err, "decode rows")
	})

	t.Run("cancelled", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		c, err := NewClient(srv.URL, srv.Client(), 5*time.Second)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = c.Fetch(ctx, sampleEntry())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewClientRejectsBadEndpoint(t *testing.T) {
	_, err := NewClient("ftp://example.com/posts", nil, 0)
	assert.Error(t, err)

	_, err = NewClient("://nope", nil, 0)
	assert.Error(t, err)

	c, err := NewClient(DefaultEndpoint, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
}

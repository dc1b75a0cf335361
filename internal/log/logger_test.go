package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dataentry/internal/core"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Level: slog.LevelDebug, Component: ComponentFetch})

	l.Info("fetched", FieldRows, 3)
	l.WithComponent(ComponentView).Debug("rendered")

	out := buf.String()
	if !strings.Contains(out, "component=fetch") || !strings.Contains(out, "rows=3") {
		t.Fatalf("missing fields in %q", out)
	}
	if !strings.Contains(out, "component=view") {
		t.Fatalf("WithComponent not applied: %q", out)
	}
}

func TestFromContext(t *testing.T) {
	l := Discard().WithComponent(ComponentHTTP)
	ctx := NewContext(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Fatalf("expected stored logger")
	}
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("fallback component = %q", got.Component())
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("request id not propagated: %q", buf.String())
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	ctx := context.Background()

	e := core.FormEntry{
		Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Time:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Category: "Option 1", SubCategory: "Option 2", ItemName: "Apple", Quantity: "3",
	}
	sl.LogSubmission(ctx, "s1", e)
	sl.LogError(ctx, "fetch failed", errors.New("boom"), ComponentFetch, OpFetch, nil)

	r := httptest.NewRequest(http.MethodPost, "/entry/submit", nil)
	sl.LogHTTPEnd(ctx, r, http.StatusInternalServerError, 12, "10.0.0.1")

	out := buf.String()
	for _, want := range []string{"item_name=Apple", "session_id=s1", "error=boom", "level=ERROR", "status_code=500"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

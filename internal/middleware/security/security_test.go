package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		name       string
		method     string
		target     string
		userAgent  string
		suspicious bool
	}{
		{"plain form post", http.MethodPost, "/entry/field", "Mozilla/5.0", false},
		{"results poll", http.MethodGet, "/ui/results", "Mozilla/5.0", false},
		{"path traversal", http.MethodGet, "/static/../../etc/passwd", "Mozilla/5.0", true},
		{"dotenv probe", http.MethodGet, "/.env", "Mozilla/5.0", true},
		{"script in query", http.MethodGet, "/?q=%3Cscript%3E", "Mozilla/5.0", true},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "Mozilla/5.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.userAgent)
			if got := d.DetectSuspiciousRequest(r); got != tt.suspicious {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.suspicious)
			}
		})
	}

	if got := d.GetMetrics().SuspiciousRequests; got != 5 {
		t.Errorf("SuspiciousRequests = %d, want 5", got)
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector(nil)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:5555"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := d.ExtractClientIP(r); got != "203.0.113.9" {
		t.Errorf("untrusted peer: got %q", got)
	}

	r.RemoteAddr = "10.1.2.3:5555"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.1.2.3")
	if got := d.ExtractClientIP(r); got != "198.51.100.1" {
		t.Errorf("trusted proxy: got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "not-an-ip")
	r.Header.Set("X-Real-IP", "198.51.100.7")
	if got := d.ExtractClientIP(r); got != "198.51.100.7" {
		t.Errorf("fallback to X-Real-IP: got %q", got)
	}
	if got := d.GetMetrics().InvalidIPAttempts; got != 1 {
		t.Errorf("InvalidIPAttempts = %d, want 1", got)
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector(nil)
	if err := d.AddTrustedProxy("nope"); err == nil {
		t.Fatal("expected error for invalid CIDR")
	}
	if err := d.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:5555"
	r.Header.Set("X-Real-IP", "198.51.100.2")
	if got := d.ExtractClientIP(r); got != "198.51.100.2" {
		t.Errorf("got %q", got)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing CSP")
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must only be sent over TLS")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}

func TestHeadersSkipEmptyValues(t *testing.T) {
	h := NewHeadersMiddleware(HeadersConfig{XFrameOptions: "SAMEORIGIN"}).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, ok := rr.Header()["Content-Security-Policy"]; ok {
		t.Error("empty CSP should not be sent")
	}
	if rr.Header().Get("X-Frame-Options") != "SAMEORIGIN" {
		t.Error("X-Frame-Options not applied")
	}
}

func TestStaticAssetMiddleware(t *testing.T) {
	h := StaticAssetMiddleware(3600)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	if got := rr.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", got)
	}
}

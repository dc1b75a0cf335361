package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newParser(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"name": "quantity", "value": 3, "comments": "  weekly\u0007 "}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if name := parser.Get("name"); name != "quantity" {
		t.Errorf("Get('name') = %q, want 'quantity'", name)
	}
	if value := parser.Get("value"); value != "3" {
		t.Errorf("Get('value') = %q, want '3'", value)
	}
	if c := parser.Get("comments"); c != "weekly" {
		t.Errorf("Get('comments') = %q, want sanitized 'weekly'", c)
	}
	if !parser.Has("value") || parser.Has("missing") {
		t.Error("Has() mismatch for JSON body")
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	parser := newParser(t, "name=itemName&itemName=Oat+milk&totalPrice=")

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if got := parser.Get("itemName"); got != "Oat milk" {
		t.Errorf("Get('itemName') = %q, want 'Oat milk'", got)
	}
	if !parser.Has("totalPrice") {
		t.Error("empty values are still present")
	}
	if parser.Has("quantity") {
		t.Error("absent key reported present")
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	parser := newParser(t, "")
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	body := "comments=" + strings.Repeat("x", maxBodyBytes)
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestFieldEdit(t *testing.T) {
	tests := []struct {
		body      string
		wantName  string
		wantValue string
	}{
		{"name=quantity&value=3", "quantity", "3"},
		{"name=itemName&itemName=Bread&quantity=2", "itemName", "Bread"},
		{"name=quantity&value=&quantity=7", "quantity", ""},
		{"value=3", "", "3"},
	}
	for _, tt := range tests {
		name, value := fieldEdit(newParser(t, tt.body))
		if name != tt.wantName || value != tt.wantValue {
			t.Errorf("fieldEdit(%q) = (%q, %q), want (%q, %q)", tt.body, name, value, tt.wantName, tt.wantValue)
		}
	}
}

func TestEntryUpdatesOrdersEmptyFirst(t *testing.T) {
	p := newParser(t, "quantity=2&totalPrice=&category=Food&comments=&unknown=x")
	got := entryUpdates(p)

	want := []FieldUpdate{
		{Name: "comments", Value: ""},
		{Name: "totalPrice", Value: ""},
		{Name: "category", Value: "Food"},
		{Name: "quantity", Value: "2"},
	}
	if len(got) != len(want) {
		t.Fatalf("entryUpdates() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("update %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParsePageNumber(t *testing.T) {
	if n, err := ParsePageNumber(url.Values{"n": {" 4 "}}); err != nil || n != 4 {
		t.Errorf("ParsePageNumber = %d, %v", n, err)
	}
	if _, err := ParsePageNumber(url.Values{}); err == nil {
		t.Error("expected error for missing n")
	}
	if _, err := ParsePageNumber(url.Values{"n": {"two"}}); err == nil {
		t.Error("expected error for non-numeric n")
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		allowed []string
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, []string{http.MethodPost}, false},
		{"HEAD allowed with multiple", http.MethodHead, []string{http.MethodGet, http.MethodHead}, false},
		{"GET not allowed", http.MethodGet, []string{http.MethodPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireMethod(req, tt.allowed...)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestRequirePOST(t *testing.T) {
	postReq := httptest.NewRequest(http.MethodPost, "/test", nil)
	if result := RequirePOST(postReq); result != nil {
		t.Error("RequirePOST should allow POST requests")
	}

	getReq := httptest.NewRequest(http.MethodGet, "/test", nil)
	if result := RequirePOST(getReq); result == nil {
		t.Error("RequirePOST should reject GET requests")
	}
}

func TestPageNumbers(t *testing.T) {
	if got := pageNumbers(0); len(got) != 0 {
		t.Errorf("pageNumbers(0) = %v", got)
	}
	got := pageNumbers(3)
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("pageNumbers(3) = %v", got)
	}
}

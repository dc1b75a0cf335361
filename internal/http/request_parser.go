package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"dataentry/internal/core"
)

// maxBodyBytes bounds form bodies; entries are a handful of short fields.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON (htmx json-enc) and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if p.err == nil && len(p.body) > maxBodyBytes {
			p.err = errors.New("request body too large")
		}
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was sent at all, even with an empty value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData != nil && p.formData.Has(key)
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseBody reads and parses the request body, answering 400 on failure.
func parseBody(r *http.Request) (*RequestBodyParser, *HTMXResponseBuilder) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, BadRequestError("Invalid request format")
	}
	return p, nil
}

// fieldEdit extracts a single field edit. The value is taken from "value"
// when present, otherwise from the input named after the field, which is what
// an htmx trigger inside the form posts.
func fieldEdit(p *RequestBodyParser) (name, value string) {
	name = p.Get("name")
	if p.Has("value") {
		return name, p.Get("value")
	}
	return name, p.Get(name)
}

// FieldUpdate is one text field write.
type FieldUpdate struct {
	Name  string
	Value string
}

var submittedFields = []string{
	core.FieldCategory,
	core.FieldSubCategory,
	core.FieldItemName,
	core.FieldComments,
	core.FieldQuantity,
	core.FieldTotalPrice,
}

// entryUpdates lists the text fields present in a submitted form. Empty values
// come first so clearing one of quantity/totalPrice never undoes the other.
func entryUpdates(p *RequestBodyParser) []FieldUpdate {
	var empty, filled []FieldUpdate
	for _, name := range submittedFields {
		if !p.Has(name) {
			continue
		}
		u := FieldUpdate{Name: name, Value: p.Get(name)}
		if u.Value == "" {
			empty = append(empty, u)
		} else {
			filled = append(filled, u)
		}
	}
	return append(empty, filled...)
}

// ParsePageNumber reads the n query parameter of a page jump.
func ParsePageNumber(query url.Values) (int, error) {
	return strconv.Atoi(strings.TrimSpace(query.Get("n")))
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

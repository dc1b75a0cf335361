package http

import (
	"bytes"
	"html/template"
	"strings"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// executeTemplate renders name into a string.
func executeTemplate(t *template.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// pageNumbers lists 1..total for the page jump buttons.
func pageNumbers(total int) []int {
	nums := make([]int, total)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

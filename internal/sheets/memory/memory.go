package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ports "dataentry/internal/sheets"
)

// DefaultOptions is the option set offered by both selects when no seed files exist.
var DefaultOptions = []string{"Option 1", "Option 2"}

var _ ports.TaxonomyReader = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	cats []string
	subs []string
}

func New(cats, subs []string) *Store {
	return &Store{cats: dedupe(cats), subs: dedupe(subs)}
}

// NewFromFiles seeds options from base/seed_categories.txt and
// base/seed_subcategories.txt, falling back to DefaultOptions.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	subs := readLines(filepath.Join(base, "seed_subcategories.txt"))
	if len(cats) == 0 {
		cats = DefaultOptions
	}
	if len(subs) == 0 {
		subs = DefaultOptions
	}
	return New(cats, subs)
}

// List returns categories and subcategories.
func (s *Store) List(_ context.Context) ([]string, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cats := append([]string(nil), s.cats...)
	subs := append([]string(nil), s.subs...)
	return cats, subs, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe drops blanks and repeats, preserving first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreList(t *testing.T) {
	s := New([]string{"A", "B", "A", " "}, []string{"X", "Y", "X"})
	cats, subs, err := s.List(context.Background())
	if err != nil || len(cats) != 2 || len(subs) != 2 {
		t.Fatalf("unexpected list: cats=%v subs=%v err=%v", cats, subs, err)
	}

	// Callers get copies.
	cats[0] = "changed"
	again, _, _ := s.List(context.Background())
	if again[0] != "A" {
		t.Fatalf("store mutated through returned slice: %v", again)
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	cats, subs, _ := s.List(context.Background())
	if len(cats) != 2 || cats[0] != "Option 1" || cats[1] != "Option 2" {
		t.Fatalf("expected default options, got %v", cats)
	}
	if len(subs) != 2 || subs[1] != "Option 2" {
		t.Fatalf("expected default options, got %v", subs)
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_categories.txt", "# header\nFruit\nVeg\nFruit\n\n")
	mustWrite("seed_subcategories.txt", "# header\nFresh\nFresh\nFrozen\n\n")

	s = NewFromFiles(dir)
	cats, subs, _ = s.List(context.Background())
	if len(cats) != 2 || cats[0] != "Fruit" || cats[1] != "Veg" {
		t.Fatalf("unexpected cats: %v", cats)
	}
	if len(subs) != 2 || subs[0] != "Fresh" || subs[1] != "Frozen" {
		t.Fatalf("unexpected subs: %v", subs)
	}
}

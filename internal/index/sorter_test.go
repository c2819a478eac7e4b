package index_test

import (
	"testing"

	"github.com/temirov/dirindex/internal/index"
)

func TestSortEntriesOrdersDirectoriesBeforeFiles(t *testing.T) {
	input := []index.Entry{
		{Name: "b.txt"},
		{Name: "Zeta", IsDirectory: true},
		{Name: "a.txt"},
		{Name: "alpha", IsDirectory: true},
		{Name: "C.txt"},
	}
	sorted := index.SortEntries(input)
	expectedNames := []string{"alpha", "Zeta", "a.txt", "b.txt", "C.txt"}
	for entryIndex, expectedName := range expectedNames {
		if sorted[entryIndex].Name != expectedName {
			t.Fatalf("position %d: got %q, want %q (full order %+v)", entryIndex, sorted[entryIndex].Name, expectedName, sorted)
		}
	}
	if input[0].Name != "b.txt" {
		t.Fatalf("input slice was reordered")
	}
}

func TestSortEntriesIsStableForEqualKeys(t *testing.T) {
	input := []index.Entry{
		{Name: "README"},
		{Name: "readme"},
		{Name: "ReadMe"},
	}
	sorted := index.SortEntries(input)
	for entryIndex := range input {
		if sorted[entryIndex].Name != input[entryIndex].Name {
			t.Fatalf("expected listing order preserved for equal keys, got %+v", sorted)
		}
	}
}

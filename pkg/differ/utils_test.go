package differ

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"", "Document"},
		{"a", "a"},
		{"a.b[0].c", "a → b[0] → c"},
		{"[1]", "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatPath(tt.path); got != tt.expected {
				t.Errorf("FormatPath(%q) = %q, expected %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestChangeTypeSymbols(t *testing.T) {
	expected := map[ChangeType]string{
		ChangeTypeAdded:     "+",
		ChangeTypeRemoved:   "−",
		ChangeTypeModified:  "~",
		ChangeTypeUnchanged: "=",
		ChangeType("bogus"): "?",
	}
	for ct, symbol := range expected {
		if got := ct.Symbol(); got != symbol {
			t.Errorf("Expected %s symbol %q, got %q", ct, symbol, got)
		}
	}

	if ChangeTypeAdded.Color() == ChangeTypeRemoved.Color() {
		t.Error("Expected added and removed to use different colors")
	}
}

func TestGetChangesAtLevel(t *testing.T) {
	changes := []*DiffChange{
		{Path: ""},
		{Path: "a"},
		{Path: "a.b"},
		{Path: "[0].a"},
		{Path: "a.b[2].c"},
	}

	var got []string
	for _, c := range GetChangesAtLevel(changes, 1) {
		got = append(got, c.Path)
	}
	if diff := cmp.Diff([]string{"a.b", "[0].a"}, got); diff != "" {
		t.Errorf("Level 1 mismatch (-want +got):\n%s", diff)
	}

	if n := len(GetChangesAtLevel(changes, 0)); n != 2 {
		t.Errorf("Expected 2 changes at level 0, got %d", n)
	}
}

func TestHasNestedChanges(t *testing.T) {
	if HasNestedChanges(nil) {
		t.Error("Expected nil change to have no nested changes")
	}

	quiet := &DiffChange{Children: []*DiffChange{{Type: ChangeTypeUnchanged}}}
	if HasNestedChanges(quiet) {
		t.Error("Expected unchanged children to report no nested changes")
	}

	busy := &DiffChange{Children: []*DiffChange{{Type: ChangeTypeUnchanged}, {Type: ChangeTypeRemoved}}}
	if !HasNestedChanges(busy) {
		t.Error("Expected removed child to report nested changes")
	}
}

func TestParseChangeTypes(t *testing.T) {
	types, err := ParseChangeTypes("added, Removed,,modified")
	if err != nil {
		t.Fatalf("ParseChangeTypes failed: %v", err)
	}
	if diff := cmp.Diff([]ChangeType{ChangeTypeAdded, ChangeTypeRemoved, ChangeTypeModified}, types); diff != "" {
		t.Errorf("Types mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseChangeTypes("added,renamed"); err == nil {
		t.Error("Expected error for unknown change type")
	}
}

func TestFilterChangesByTypes(t *testing.T) {
	changes := []*DiffChange{
		{Path: "a", Type: ChangeTypeAdded},
		{Path: "b", Type: ChangeTypeUnchanged},
		{Path: "c", Type: ChangeTypeRemoved},
	}

	if got := FilterChangesByTypes(changes); len(got) != 3 {
		t.Errorf("Expected empty filter to keep all changes, got %d", len(got))
	}

	got := FilterChangesByTypes(changes, ChangeTypeAdded, ChangeTypeRemoved)
	if len(got) != 2 || got[0].Path != "a" || got[1].Path != "c" {
		t.Errorf("Expected changes a and c, got %d changes", len(got))
	}
}

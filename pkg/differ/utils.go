package differ

import (
	"fmt"
	"strings"
)

// FormatPath renders a change path for display.
func FormatPath(path string) string {
	if path == "" {
		return "Document"
	}
	return strings.ReplaceAll(path, ".", " → ")
}

// HasNestedChanges reports whether any direct child of change is not unchanged.
func HasNestedChanges(change *DiffChange) bool {
	if change == nil {
		return false
	}
	for _, child := range change.Children {
		if child.Type != ChangeTypeUnchanged {
			return true
		}
	}
	return false
}

func FilterChangesByType(changes []*DiffChange, changeType ChangeType) []*DiffChange {
	var out []*DiffChange
	for _, c := range changes {
		if c.Type == changeType {
			out = append(out, c)
		}
	}
	return out
}

// FilterChangesByTypes keeps changes whose type is in types. An empty set
// keeps everything.
func FilterChangesByTypes(changes []*DiffChange, types ...ChangeType) []*DiffChange {
	if len(types) == 0 {
		return changes
	}
	keep := make(map[ChangeType]bool, len(types))
	for _, t := range types {
		keep[t] = true
	}
	var out []*DiffChange
	for _, c := range changes {
		if keep[c.Type] {
			out = append(out, c)
		}
	}
	return out
}

// GetChangesAtLevel keeps changes whose path has exactly level '.' separators.
// Index segments do not count, so "[0].a" is at level 0.
func GetChangesAtLevel(changes []*DiffChange, level int) []*DiffChange {
	var out []*DiffChange
	for _, c := range changes {
		if strings.Count(c.Path, ".") == level {
			out = append(out, c)
		}
	}
	return out
}

// ParseChangeTypes parses a comma separated list such as "added,removed".
func ParseChangeTypes(list string) ([]ChangeType, error) {
	var types []ChangeType
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		t := ChangeType(part)
		if !t.Valid() {
			return nil, fmt.Errorf("unknown change type '%s' (want added, removed, modified or unchanged)", part)
		}
		types = append(types, t)
	}
	return types, nil
}

func generateDescription(result *DiffResult) string {
	if !result.HasChanges {
		return "No differences found"
	}

	parts := []string{}

	if result.Summary.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", result.Summary.Added))
	}
	if result.Summary.Removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", result.Summary.Removed))
	}
	if result.Summary.Modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", result.Summary.Modified))
	}

	changed := result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return fmt.Sprintf("%s (%d of %d nodes changed)", strings.Join(parts, ", "), changed, result.Summary.Total)
}

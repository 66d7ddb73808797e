package differ

import "github.com/wonderfulspam/stage-smith/pkg/document"

type ChangeType string

const (
	ChangeTypeAdded     ChangeType = "added"
	ChangeTypeRemoved   ChangeType = "removed"
	ChangeTypeModified  ChangeType = "modified"
	ChangeTypeUnchanged ChangeType = "unchanged"
)

// ChangeTypes lists every change type in display order.
var ChangeTypes = []ChangeType{ChangeTypeAdded, ChangeTypeRemoved, ChangeTypeModified, ChangeTypeUnchanged}

// Symbol returns the one-character marker used when listing changes.
func (t ChangeType) Symbol() string {
	switch t {
	case ChangeTypeAdded:
		return "+"
	case ChangeTypeRemoved:
		return "−"
	case ChangeTypeModified:
		return "~"
	case ChangeTypeUnchanged:
		return "="
	default:
		return "?"
	}
}

// Color names the terminal color a change of this type is drawn in.
func (t ChangeType) Color() string {
	switch t {
	case ChangeTypeAdded:
		return "green"
	case ChangeTypeRemoved:
		return "red"
	case ChangeTypeModified:
		return "yellow"
	case ChangeTypeUnchanged:
		return "faint"
	default:
		return "default"
	}
}

// Valid reports whether t is one of the four known change types.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeTypeAdded, ChangeTypeRemoved, ChangeTypeModified, ChangeTypeUnchanged:
		return true
	}
	return false
}

// DiffChange is one node of the change tree. OldValue and NewValue are nil
// when that side is absent. Children is set only when both sides are
// sequences or both are records.
type DiffChange struct {
	Type     ChangeType      `json:"type" yaml:"type"`
	Path     string          `json:"path" yaml:"path"`
	OldValue *document.Value `json:"oldValue,omitempty" yaml:"oldValue,omitempty"`
	NewValue *document.Value `json:"newValue,omitempty" yaml:"newValue,omitempty"`
	Children []*DiffChange   `json:"children,omitempty" yaml:"children,omitempty"`
}

type Summary struct {
	Added     int `json:"added" yaml:"added"`
	Removed   int `json:"removed" yaml:"removed"`
	Modified  int `json:"modified" yaml:"modified"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Total     int `json:"total" yaml:"total"`
}

// Count returns the number of changes of type t.
func (s Summary) Count(t ChangeType) int {
	switch t {
	case ChangeTypeAdded:
		return s.Added
	case ChangeTypeRemoved:
		return s.Removed
	case ChangeTypeModified:
		return s.Modified
	case ChangeTypeUnchanged:
		return s.Unchanged
	}
	return 0
}

// DiffResult holds the change tree and its pre-order flattening. Changes
// shares nodes with Root and is not serialized.
type DiffResult struct {
	Root        *DiffChange   `json:"root" yaml:"root"`
	Changes     []*DiffChange `json:"-" yaml:"-"`
	Summary     Summary       `json:"summary" yaml:"summary"`
	HasChanges  bool          `json:"has_changes" yaml:"has_changes"`
	Description string        `json:"description" yaml:"description"`
}

package renderer

import (
	"fmt"
	"strings"

	"github.com/wonderfulspam/stage-smith/pkg/differ"
)

// Format is an output format.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
)

// Formats lists every supported output format.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatMermaid, FormatDOT}

// ParseFormat parses a format name, ignoring case. The empty string selects
// the table format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatTable, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s (supported: table, json, yaml, mermaid, dot)", s)
}

// IsVisual reports whether f is a diagram format.
func (f Format) IsVisual() bool {
	return f == FormatMermaid || f == FormatDOT
}

// Options control how results are rendered.
type Options struct {
	Format Format
	// Color enables ANSI colors in table output when the terminal supports it.
	Color bool
	// WrapWidth wraps long values in table output. Zero disables wrapping.
	WrapWidth int
	// ChangedOnly hides unchanged nodes of a diff.
	ChangedOnly bool
	// Only restricts listed diff changes to these types.
	Only []differ.ChangeType
}

// changeView is a change without its subtree, used when a filtered flat list
// is encoded.
type changeView struct {
	Type     differ.ChangeType `json:"type" yaml:"type"`
	Path     string            `json:"path" yaml:"path"`
	OldValue any               `json:"oldValue,omitempty" yaml:"oldValue,omitempty"`
	NewValue any               `json:"newValue,omitempty" yaml:"newValue,omitempty"`
}

type filteredDiff struct {
	Summary     differ.Summary `json:"summary" yaml:"summary"`
	HasChanges  bool           `json:"has_changes" yaml:"has_changes"`
	Description string         `json:"description" yaml:"description"`
	Changes     []changeView   `json:"changes" yaml:"changes"`
}

package differ

import (
	"github.com/wonderfulspam/stage-smith/pkg/document"
)

type options struct {
	maxDepth int
}

// Option configures a comparison.
type Option func(*options)

// WithMaxDepth overrides document.DefaultMaxDepth for one comparison.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// Compare diffs two documents. A null document is treated like an absent one.
// The only error is a *document.DepthError when either side nests deeper than
// the configured limit.
func Compare(oldDoc, newDoc document.Value, opts ...Option) (*DiffResult, error) {
	return CompareOptional(&oldDoc, &newDoc, opts...)
}

// CompareOptional is Compare for roots that may be absent. A nil side is
// absent, so the root itself can be reported as added or removed.
func CompareOptional(oldDoc, newDoc *document.Value, opts ...Option) (*DiffResult, error) {
	o := options{maxDepth: document.DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}

	var docs []document.Value
	if oldDoc != nil {
		docs = append(docs, *oldDoc)
	}
	if newDoc != nil {
		docs = append(docs, *newDoc)
	}
	if err := document.CheckDepth(o.maxDepth, docs...); err != nil {
		return nil, err
	}

	root := compareValues(oldDoc, newDoc, "")
	result := &DiffResult{
		Root:    root,
		Changes: Flatten(root),
	}
	result.Summary = summarize(result.Changes)
	result.HasChanges = root.Type != ChangeTypeUnchanged
	result.Description = generateDescription(result)

	return result, nil
}

// DeepEqual reports whether a and b are structurally equal. Sequences are
// order-sensitive; record field order is ignored.
func DeepEqual(a, b document.Value) bool {
	return a.Equal(b)
}

func isAbsent(v *document.Value) bool {
	return v == nil || v.IsNull()
}

func compareValues(oldVal, newVal *document.Value, path string) *DiffChange {
	switch {
	case isAbsent(oldVal) && isAbsent(newVal):
		return &DiffChange{Type: ChangeTypeUnchanged, Path: path, OldValue: oldVal, NewValue: newVal}
	case isAbsent(oldVal):
		return &DiffChange{Type: ChangeTypeAdded, Path: path, NewValue: newVal}
	case isAbsent(newVal):
		return &DiffChange{Type: ChangeTypeRemoved, Path: path, OldValue: oldVal}
	}

	oldKind, newKind := oldVal.Kind(), newVal.Kind()

	if !oldVal.IsContainer() || !newVal.IsContainer() {
		changeType := ChangeTypeModified
		if oldVal.Equal(*newVal) {
			changeType = ChangeTypeUnchanged
		}
		return &DiffChange{Type: changeType, Path: path, OldValue: oldVal, NewValue: newVal}
	}

	switch {
	case oldKind == document.KindSequence && newKind == document.KindSequence:
		return compareSequences(oldVal, newVal, path)
	case oldKind == document.KindRecord && newKind == document.KindRecord:
		return compareRecords(oldVal, newVal, path)
	default:
		return &DiffChange{Type: ChangeTypeModified, Path: path, OldValue: oldVal, NewValue: newVal}
	}
}

// compareSequences aligns elements by index, not by content.
func compareSequences(oldSeq, newSeq *document.Value, path string) *DiffChange {
	oldItems, newItems := oldSeq.Items(), newSeq.Items()
	n := max(len(oldItems), len(newItems))

	children := make([]*DiffChange, 0, n)
	for i := 0; i < n; i++ {
		var oldItem, newItem *document.Value
		if i < len(oldItems) {
			oldItem = &oldItems[i]
		}
		if i < len(newItems) {
			newItem = &newItems[i]
		}
		children = append(children, compareValues(oldItem, newItem, document.IndexPath(path, i)))
	}

	return containerChange(oldSeq, newSeq, path, children)
}

// compareRecords walks old's fields in order, then fields only new has.
func compareRecords(oldRec, newRec *document.Value, path string) *DiffChange {
	oldFields, newFields := oldRec.Fields(), newRec.Fields()

	children := make([]*DiffChange, 0, len(oldFields)+len(newFields))
	for i := range oldFields {
		var newVal *document.Value
		if v, ok := newRec.Get(oldFields[i].Name); ok {
			newVal = &v
		}
		children = append(children, compareValues(&oldFields[i].Value, newVal, document.FieldPath(path, oldFields[i].Name)))
	}
	for i := range newFields {
		if oldRec.Has(newFields[i].Name) {
			continue
		}
		children = append(children, compareValues(nil, &newFields[i].Value, document.FieldPath(path, newFields[i].Name)))
	}

	return containerChange(oldRec, newRec, path, children)
}

func containerChange(oldVal, newVal *document.Value, path string, children []*DiffChange) *DiffChange {
	change := &DiffChange{
		Type:     ChangeTypeUnchanged,
		Path:     path,
		OldValue: oldVal,
		NewValue: newVal,
		Children: children,
	}
	for _, child := range children {
		if child.Type != ChangeTypeUnchanged {
			change.Type = ChangeTypeModified
			break
		}
	}
	return change
}

// Flatten lists root and all its descendants in pre-order.
func Flatten(root *DiffChange) []*DiffChange {
	if root == nil {
		return nil
	}
	var out []*DiffChange
	var walk func(c *DiffChange)
	walk = func(c *DiffChange) {
		out = append(out, c)
		for _, child := range c.Children {
			walk(child)
		}
	}
	walk(root)
	return out
}

func summarize(changes []*DiffChange) Summary {
	var s Summary
	for _, c := range changes {
		switch c.Type {
		case ChangeTypeAdded:
			s.Added++
		case ChangeTypeRemoved:
			s.Removed++
		case ChangeTypeModified:
			s.Modified++
		case ChangeTypeUnchanged:
			s.Unchanged++
		}
	}
	s.Total = len(changes)
	return s
}

// Leaves returns the changes that have no children, in pre-order.
func (r *DiffResult) Leaves() []*DiffChange {
	var out []*DiffChange
	for _, c := range r.Changes {
		if len(c.Children) == 0 {
			out = append(out, c)
		}
	}
	return out
}

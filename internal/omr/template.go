package omr

import (
	"errors"
	"fmt"
)

// FieldKind says whether a template range carries identity data or answer marks.
type FieldKind string

const (
	FieldIdentity      FieldKind = "identity"
	FieldAnswerSegment FieldKind = "answer_segment"
)

// FieldDef is one named byte range on a scanner line.
// Start and End are 1-indexed and inclusive, matching how form layouts
// are specified on paper.
type FieldDef struct {
	Label string    `json:"label"`
	Kind  FieldKind `json:"kind"`
	Start int       `json:"start"`
	End   int       `json:"end"`
}

// Width returns the number of character slots the field covers.
func (f FieldDef) Width() int { return f.End - f.Start + 1 }

// Template describes the fixed-width layout of one scanner form.
type Template struct {
	ID             string     `json:"id,omitempty"`
	Name           string     `json:"name,omitempty"`
	TotalQuestions int        `json:"total_questions"`
	Fields         []FieldDef `json:"fields"`
}

// Validate enforces the structural invariants a template must satisfy
// before any line can be decoded against it.
func (t Template) Validate() error {
	if t.TotalQuestions <= 0 {
		return errors.New("template: total_questions must be positive")
	}
	hasSegment := false
	for i, f := range t.Fields {
		if f.Start < 1 {
			return fmt.Errorf("template: field %d (%s): start must be >= 1", i, f.Label)
		}
		if f.End < f.Start {
			return fmt.Errorf("template: field %d (%s): end < start", i, f.Label)
		}
		switch f.Kind {
		case FieldIdentity, FieldAnswerSegment:
		default:
			return fmt.Errorf("template: field %d (%s): unknown kind %q", i, f.Label, f.Kind)
		}
		if f.Kind == FieldAnswerSegment {
			hasSegment = true
		}
	}
	if !hasSegment {
		return errors.New("template: no answer segment defined")
	}
	return nil
}

// AnswerSegments returns the answer-segment fields in template order.
func (t Template) AnswerSegments() []FieldDef {
	var out []FieldDef
	for _, f := range t.Fields {
		if f.Kind == FieldAnswerSegment {
			out = append(out, f)
		}
	}
	return out
}

// IdentityFields returns the identity fields in template order.
func (t Template) IdentityFields() []FieldDef {
	var out []FieldDef
	for _, f := range t.Fields {
		if f.Kind == FieldIdentity {
			out = append(out, f)
		}
	}
	return out
}

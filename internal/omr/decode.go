package omr

import (
	"fmt"
	"unicode"
)

// Mark is one decoded answer slot: "A".."E", or empty when the student
// left the question blank (or the scanner produced something unreadable).
type Mark string

const MarkBlank Mark = ""

// IsBlank reports whether the slot holds no answer.
func (m Mark) IsBlank() bool { return m == MarkBlank }

// DecodeConfig carries the per-exam character conventions. Scanners for
// different exam standards use different mark alphabets and blank markers,
// so these are explicit inputs rather than package globals.
type DecodeConfig struct {
	// ValidMarks is the set of accepted answer letters (upper case).
	ValidMarks map[rune]bool
	// BlankChar is the character the scanner emits for "no answer".
	BlankChar rune
}

// DefaultDecodeConfig matches the national five-choice forms: A-E with a
// space as the blank marker.
func DefaultDecodeConfig() DecodeConfig {
	return DecodeConfig{
		ValidMarks: map[rune]bool{'A': true, 'B': true, 'C': true, 'D': true, 'E': true},
		BlankChar:  ' ',
	}
}

// Segment is the decoded content of one answer-segment field.
type Segment struct {
	Label string
	Marks []Mark
}

// DecodeSegments reads every answer-segment range out of line. A segment
// that extends past the end of the line is right-padded with blanks and
// noted in the warnings. Characters outside the mark alphabet and the
// blank marker decode as blank but are tallied; a single warning carries
// the tally so data-quality problems stay visible without failing the line.
func DecodeSegments(line string, segments []FieldDef, cfg DecodeConfig) (segs []Segment, warnings []string, slotCount int) {
	runes := []rune(line)
	unexpected := 0

	for _, def := range segments {
		marks := make([]Mark, 0, def.Width())
		outOfBounds := false
		for pos := def.Start; pos <= def.End; pos++ {
			if pos-1 >= len(runes) {
				marks = append(marks, MarkBlank)
				outOfBounds = true
				continue
			}
			ch := unicode.ToUpper(runes[pos-1])
			switch {
			case cfg.ValidMarks[ch]:
				marks = append(marks, Mark(ch))
			case runes[pos-1] == cfg.BlankChar:
				marks = append(marks, MarkBlank)
			default:
				marks = append(marks, MarkBlank)
				unexpected++
			}
		}
		if outOfBounds {
			warnings = append(warnings, fmt.Sprintf("segment out of bounds: %s", def.Label))
		}
		slotCount += len(marks)
		segs = append(segs, Segment{Label: def.Label, Marks: marks})
	}

	if unexpected > 0 {
		warnings = append(warnings, fmt.Sprintf("%d unexpected character(s) decoded as blank", unexpected))
	}
	return segs, warnings, slotCount
}

// FlattenMarks concatenates segment marks in order and forces the result
// to exactly total slots, padding with blanks or truncating as needed.
// The length invariant holds no matter what the scanner produced.
func FlattenMarks(segs []Segment, total int) ([]Mark, []string) {
	flat := make([]Mark, 0, total)
	for _, s := range segs {
		flat = append(flat, s.Marks...)
	}

	var warnings []string
	switch {
	case len(flat) < total:
		if len(flat) > 0 {
			warnings = append(warnings, fmt.Sprintf("decoded %d slots, expected %d; padded with blanks", len(flat), total))
		}
		for len(flat) < total {
			flat = append(flat, MarkBlank)
		}
	case len(flat) > total:
		warnings = append(warnings, fmt.Sprintf("decoded %d slots, expected %d; extra slots dropped", len(flat), total))
		flat = flat[:total]
	}
	return flat, warnings
}

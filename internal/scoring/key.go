package scoring

import (
	"fmt"
	"sort"

	"github.com/sinavlab/optik/internal/omr"
)

// Entry is the answer key for one question. QuestionNo is globally unique
// and stable across booklets; booklets shuffle which letter is correct at
// a position, never the position itself.
type Entry struct {
	QuestionNo int                 `json:"question_no"`
	Subject    omr.SubjectCode     `json:"subject"`
	Correct    omr.Mark            `json:"correct"`
	PerBooklet map[string]omr.Mark `json:"per_booklet,omitempty"`
}

// AnswerKey is the full key for one exam.
type AnswerKey struct {
	Entries []Entry `json:"entries"`
}

// Validate checks question-number uniqueness and that every entry carries
// a usable correct answer.
func (k AnswerKey) Validate() error {
	seen := make(map[int]bool, len(k.Entries))
	for _, e := range k.Entries {
		if seen[e.QuestionNo] {
			return fmt.Errorf("answer key: duplicate question %d", e.QuestionNo)
		}
		seen[e.QuestionNo] = true
		if e.Correct.IsBlank() && len(e.PerBooklet) == 0 {
			return fmt.Errorf("answer key: question %d has no correct answer", e.QuestionNo)
		}
	}
	return nil
}

// ResolvedEntry is a key entry flattened for one booklet.
type ResolvedEntry struct {
	QuestionNo int
	Correct    omr.Mark
}

// ResolvedKey holds per-subject entries in ascending question order, which
// is the order a record's subject answers align against.
type ResolvedKey struct {
	BySubject map[omr.SubjectCode][]ResolvedEntry
	// SubjectOrder lists subjects by their first question number.
	SubjectOrder []omr.SubjectCode
}

// Resolve flattens the key for one booklet. Entries without a variant for
// that booklet fall back to the base correct answer, so keys that only
// vary some questions stay short.
func (k AnswerKey) Resolve(booklet string) ResolvedKey {
	rk := ResolvedKey{BySubject: make(map[omr.SubjectCode][]ResolvedEntry)}

	entries := make([]Entry, len(k.Entries))
	copy(entries, k.Entries)
	sortEntries(entries)

	for _, e := range entries {
		correct := e.Correct
		if booklet != "" {
			if v, ok := e.PerBooklet[booklet]; ok && !v.IsBlank() {
				correct = v
			}
		}
		if _, ok := rk.BySubject[e.Subject]; !ok {
			rk.SubjectOrder = append(rk.SubjectOrder, e.Subject)
		}
		rk.BySubject[e.Subject] = append(rk.BySubject[e.Subject], ResolvedEntry{QuestionNo: e.QuestionNo, Correct: correct})
	}
	return rk
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].QuestionNo < entries[j].QuestionNo
	})
}

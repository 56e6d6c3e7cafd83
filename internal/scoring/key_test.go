package scoring

import (
	"testing"

	"github.com/sinavlab/optik/internal/omr"
)

func TestAnswerKeyValidate(t *testing.T) {
	good := AnswerKey{Entries: []Entry{
		{QuestionNo: 1, Subject: omr.SubjectTUR, Correct: "A"},
		{QuestionNo: 2, Subject: omr.SubjectTUR, Correct: "B"},
	}}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := AnswerKey{Entries: []Entry{
		{QuestionNo: 1, Subject: omr.SubjectTUR, Correct: "A"},
		{QuestionNo: 1, Subject: omr.SubjectMAT, Correct: "B"},
	}}
	if err := dup.Validate(); err == nil {
		t.Fatal("want error for duplicate question number")
	}

	empty := AnswerKey{Entries: []Entry{{QuestionNo: 1, Subject: omr.SubjectTUR}}}
	if err := empty.Validate(); err == nil {
		t.Fatal("want error for entry with no correct answer")
	}
}

func TestResolveSortsByQuestionNo(t *testing.T) {
	key := AnswerKey{Entries: []Entry{
		{QuestionNo: 3, Subject: omr.SubjectTUR, Correct: "C"},
		{QuestionNo: 1, Subject: omr.SubjectTUR, Correct: "A"},
		{QuestionNo: 2, Subject: omr.SubjectTUR, Correct: "B"},
	}}
	rk := key.Resolve("")

	entries := rk.BySubject[omr.SubjectTUR]
	for i, want := range []omr.Mark{"A", "B", "C"} {
		if entries[i].Correct != want {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Correct, want)
		}
	}
}

func TestResolveSubjectOrderFollowsQuestions(t *testing.T) {
	key := AnswerKey{Entries: []Entry{
		{QuestionNo: 21, Subject: omr.SubjectMAT, Correct: "A"},
		{QuestionNo: 1, Subject: omr.SubjectTUR, Correct: "A"},
		{QuestionNo: 22, Subject: omr.SubjectMAT, Correct: "B"},
	}}
	rk := key.Resolve("")

	if len(rk.SubjectOrder) != 2 || rk.SubjectOrder[0] != omr.SubjectTUR || rk.SubjectOrder[1] != omr.SubjectMAT {
		t.Fatalf("order = %v, want [TUR MAT]", rk.SubjectOrder)
	}
}

func TestResolveBookletFallback(t *testing.T) {
	key := AnswerKey{Entries: []Entry{
		{QuestionNo: 1, Subject: omr.SubjectFEN, Correct: "A", PerBooklet: map[string]omr.Mark{"B": "D"}},
	}}

	if got := key.Resolve("B").BySubject[omr.SubjectFEN][0].Correct; got != "D" {
		t.Errorf("booklet B = %q, want D", got)
	}
	if got := key.Resolve("C").BySubject[omr.SubjectFEN][0].Correct; got != "A" {
		t.Errorf("booklet C = %q, want base A", got)
	}
	if got := key.Resolve("").BySubject[omr.SubjectFEN][0].Correct; got != "A" {
		t.Errorf("no booklet = %q, want base A", got)
	}
}

func TestProfileRegistry(t *testing.T) {
	cfg, ok := ProfileFor("lgs.v1")
	if !ok {
		t.Fatal("lgs.v1 must be registered")
	}
	if cfg.PenaltyDivisor != 3 || cfg.MaxRawScore != 270 {
		t.Fatalf("lgs.v1 = %+v", cfg)
	}
	if _, ok := ProfileFor("nope.v9"); ok {
		t.Fatal("unknown profile must not resolve")
	}
	if len(Profiles()) < 3 {
		t.Fatalf("profiles = %v", Profiles())
	}
}

package omr

import (
	"fmt"
	"strings"
	"sync"
)

// Assembler runs the full decode pipeline over scanner lines belonging to
// one template. It holds no per-line state: decoding is deterministic and
// lines never see each other.
type Assembler struct {
	tmpl Template
	cfg  DecodeConfig
}

type AssemblerOption func(*Assembler)

// WithDecodeConfig overrides the mark alphabet and blank marker.
func WithDecodeConfig(cfg DecodeConfig) AssemblerOption {
	return func(a *Assembler) { a.cfg = cfg }
}

// NewAssembler builds an assembler for one template. A non-positive
// question count is a programmer error and rejected up front; template
// problems that can occur with real operator input (e.g. no answer
// segment) degrade per line instead, so a batch always runs to the end.
func NewAssembler(tmpl Template, opts ...AssemblerOption) (*Assembler, error) {
	if tmpl.TotalQuestions <= 0 {
		return nil, fmt.Errorf("omr: total questions must be positive, got %d", tmpl.TotalQuestions)
	}
	a := &Assembler{tmpl: tmpl, cfg: DefaultDecodeConfig()}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// DecodeLine decodes one scanner line into a student record. lineNo is
// the 1-based position in the source file, kept for traceability.
func (a *Assembler) DecodeLine(line string, lineNo int) ParsedStudentRecord {
	cleaned := strings.TrimRight(line, "\r\n")
	rec := ParsedStudentRecord{
		LineNo:      lineNo,
		RawLine:     line,
		CleanedLine: cleaned,
	}

	segs := a.tmpl.AnswerSegments()
	if len(segs) == 0 {
		rec.Errors = append(rec.Errors, "template has no answer segment")
		rec.FlatAnswers = make([]Mark, a.tmpl.TotalQuestions)
		rec.SubjectAnswers = map[SubjectCode][]Mark{}
		rec.Confidence = ConfidenceCritical
		rec.ReviewStatus = ReviewReject
		return rec
	}

	decoded, warns, _ := DecodeSegments(cleaned, segs, a.cfg)
	rec.Warnings = append(rec.Warnings, warns...)

	flat, flatWarns := FlattenMarks(decoded, a.tmpl.TotalQuestions)
	rec.Warnings = append(rec.Warnings, flatWarns...)
	rec.FlatAnswers = flat

	subjects, order, subjWarns := RemapSubjects(decoded, a.tmpl.TotalQuestions)
	rec.Warnings = append(rec.Warnings, subjWarns...)
	rec.SubjectAnswers = subjects
	rec.SubjectOrder = order

	id, idWarns := ExtractIdentity(cleaned, a.tmpl.IdentityFields())
	rec.Warnings = append(rec.Warnings, idWarns...)
	rec.StudentID = id.StudentID
	rec.StudentName = id.StudentName
	rec.NationalID = id.NationalID
	rec.ClassCode = id.ClassCode
	rec.Booklet = id.Booklet

	for _, m := range flat {
		if !m.IsBlank() {
			rec.AnsweredCount++
		}
	}

	rec.Confidence, rec.ReviewStatus = Classify(rec.AnsweredCount, a.tmpl.TotalQuestions, id)
	rec.IsValid = rec.ReviewStatus != ReviewReject && rec.StudentID != ""
	return rec
}

// DecodeAll decodes every non-blank line of text in file order.
func (a *Assembler) DecodeAll(text string) ([]ParsedStudentRecord, BatchSummary) {
	lines := strings.Split(text, "\n")
	var records []ParsedStudentRecord
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, a.DecodeLine(line, i+1))
	}
	return records, summarize(records)
}

// DecodeAllConcurrent decodes lines across workers. Records land in a
// slot per line, so output order follows line order regardless of which
// worker finished first.
func (a *Assembler) DecodeAllConcurrent(text string, workers int) ([]ParsedStudentRecord, BatchSummary) {
	if workers <= 1 {
		return a.DecodeAll(text)
	}

	type job struct {
		line   string
		lineNo int
	}
	lines := strings.Split(text, "\n")
	jobs := make([]job, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		jobs = append(jobs, job{line: line, lineNo: i + 1})
	}

	records := make([]ParsedStudentRecord, len(jobs))
	var wg sync.WaitGroup
	ch := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range ch {
				records[idx] = a.DecodeLine(jobs[idx].line, jobs[idx].lineNo)
			}
		}()
	}
	for idx := range jobs {
		ch <- idx
	}
	close(ch)
	wg.Wait()
	return records, summarize(records)
}

func summarize(records []ParsedStudentRecord) BatchSummary {
	sum := BatchSummary{TotalLines: len(records)}
	if len(records) == 0 {
		return sum
	}
	confTotal := 0.0
	for _, r := range records {
		switch r.ReviewStatus {
		case ReviewOK:
			sum.SuccessCount++
		case ReviewNeeded:
			sum.NeedsReviewCount++
		case ReviewReject:
			sum.RejectedCount++
		}
		confTotal += r.Confidence.Weight()
	}
	sum.AverageConfidence = confTotal / float64(len(records))
	if sum.RejectedCount > 0 {
		sum.Warnings = append(sum.Warnings, fmt.Sprintf("%d students excluded from scoring", sum.RejectedCount))
	}
	return sum
}

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/sinavlab/optik/internal/exam"
	"github.com/sinavlab/optik/internal/omr"
	"github.com/sinavlab/optik/internal/scoring"
)

func testRouter() (chi.Router, exam.Store) {
	store := exam.NewInMemoryStore()
	svc := exam.NewService(store, nil, nil, 1)
	log := logrus.New()
	log.SetOutput(io.Discard)

	r := chi.NewRouter()
	r.Post("/exams", CreateExamHandler(svc))
	r.Get("/exams", ListExamsHandler(store))
	r.Get("/exams/{examID}", GetExamHandler(store))
	r.Post("/exams/{examID}/batches", CreateBatchHandler(svc, log))
	r.Get("/exams/{examID}/batches", ListBatchesHandler(store))
	r.Get("/batches/{batchID}", GetBatchHandler(store))
	r.Get("/batches/{batchID}/records", ListRecordsHandler(store))
	r.Post("/batches/{batchID}/score", ScoreBatchHandler(svc, log))
	r.Get("/batches/{batchID}/scores", ListScoresHandler(store))
	r.Post("/decode", DecodePreviewHandler())
	r.Get("/profiles", ListProfilesHandler())
	return r, store
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func previewTemplate() omr.Template {
	return omr.Template{
		TotalQuestions: 10,
		Fields: []omr.FieldDef{
			{Label: "OGRENCI NO", Kind: omr.FieldIdentity, Start: 1, End: 5},
			{Label: "KITAPCIK", Kind: omr.FieldIdentity, Start: 6, End: 6},
			{Label: "TURKCE", Kind: omr.FieldAnswerSegment, Start: 7, End: 12},
			{Label: "MATEMATIK", Kind: omr.FieldAnswerSegment, Start: 13, End: 16},
		},
	}
}

// previewLine builds a 16-column line for previewTemplate: student no in
// columns 1-5, booklet in column 6, ten answer slots after that.
func previewLine(id, booklet, answers string) string {
	for len(id) < 5 {
		id += " "
	}
	if booklet == "" {
		booklet = " "
	}
	for len(answers) < 10 {
		answers += " "
	}
	return id[:5] + booklet[:1] + answers[:10]
}

func previewKey() scoring.AnswerKey {
	var k scoring.AnswerKey
	for q := 1; q <= 6; q++ {
		k.Entries = append(k.Entries, scoring.Entry{QuestionNo: q, Subject: omr.SubjectTUR, Correct: "A"})
	}
	for q := 7; q <= 10; q++ {
		k.Entries = append(k.Entries, scoring.Entry{QuestionNo: q, Subject: omr.SubjectMAT, Correct: "B"})
	}
	return k
}

func TestDecodePreviewHandler(t *testing.T) {
	r, _ := testRouter()

	w := doJSON(t, r, "POST", "/decode", map[string]any{
		"template": previewTemplate(),
		"text":     previewLine("1001", "", "AAAAAABBBB") + "\n" + previewLine("1002", "B", "AAABBBBBAA") + "\n",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Records []omr.ParsedStudentRecord `json:"records"`
		Summary omr.BatchSummary          `json:"summary"`
	}
	decodeInto(t, w, &resp)
	if len(resp.Records) != 2 || resp.Summary.TotalLines != 2 {
		t.Fatalf("records = %d, summary = %+v", len(resp.Records), resp.Summary)
	}
	if resp.Records[0].StudentID != "1001" || resp.Records[1].Booklet != "B" {
		t.Fatalf("identity fields not decoded: %+v", resp.Records)
	}
	if len(resp.Records[0].FlatAnswers) != 10 {
		t.Fatalf("flat answers = %d, want 10", len(resp.Records[0].FlatAnswers))
	}

	// nothing persisted
	w = doJSON(t, r, "GET", "/exams", nil)
	var exams []exam.Exam
	decodeInto(t, w, &exams)
	if len(exams) != 0 {
		t.Fatalf("preview persisted %d exams", len(exams))
	}
}

func TestDecodePreviewRejectsBadInput(t *testing.T) {
	r, _ := testRouter()

	w := doJSON(t, r, "POST", "/decode", map[string]any{"template": previewTemplate(), "text": "  "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty text: status = %d", w.Code)
	}

	bad := previewTemplate()
	bad.TotalQuestions = 0
	w = doJSON(t, r, "POST", "/decode", map[string]any{"template": bad, "text": previewLine("1001", "A", "AAAAAABBBB")})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad template: status = %d", w.Code)
	}
}

func TestExamBatchScoreFlow(t *testing.T) {
	r, _ := testRouter()

	w := doJSON(t, r, "POST", "/exams", exam.Exam{
		Title:     "LGS Deneme",
		Template:  previewTemplate(),
		AnswerKey: previewKey(),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create exam: status = %d, body = %s", w.Code, w.Body.String())
	}
	var created exam.Exam
	decodeInto(t, w, &created)
	if created.ID == "" {
		t.Fatal("created exam has no ID")
	}

	w = doJSON(t, r, "GET", "/exams/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get exam: status = %d", w.Code)
	}
	w = doJSON(t, r, "GET", "/exams/ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get unknown exam: status = %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/exams/"+created.ID+"/batches", map[string]string{
		"file_name": "salon1.txt",
		"text":      previewLine("1001", "A", "AAAAAABBBB") + "\n" + previewLine("1002", "B", "AAABBBBBAA") + "\n",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create batch: status = %d, body = %s", w.Code, w.Body.String())
	}
	var br struct {
		Batch   exam.Batch                `json:"batch"`
		Records []omr.ParsedStudentRecord `json:"records"`
	}
	decodeInto(t, w, &br)
	if br.Batch.ID == "" || len(br.Records) != 2 {
		t.Fatalf("batch = %+v, records = %d", br.Batch, len(br.Records))
	}

	w = doJSON(t, r, "POST", "/batches/"+br.Batch.ID+"/score", map[string]any{
		"config": scoring.Config{
			PenaltyDivisor: 4,
			SubjectWeights: map[omr.SubjectCode]float64{omr.SubjectTUR: 1, omr.SubjectMAT: 1},
			MaxRawScore:    10,
			MinScore:       100,
			MaxScore:       500,
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("score batch: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "GET", "/batches/"+br.Batch.ID+"/scores", nil)
	var scores []exam.StudentScore
	decodeInto(t, w, &scores)
	if len(scores) != 2 {
		t.Fatalf("got %d scores, want 2", len(scores))
	}
	if scores[0].StudentID != "1001" || scores[0].Result.ScaledScore != 500 {
		t.Fatalf("top score = %+v", scores[0])
	}
}

func TestScoreBatchProfileOverride(t *testing.T) {
	r, _ := testRouter()

	w := doJSON(t, r, "POST", "/batches/whatever/score", map[string]string{"profile": "no.such.profile"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown profile: status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "unknown profile") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestCreateBatchPlainText(t *testing.T) {
	r, _ := testRouter()

	w := doJSON(t, r, "POST", "/exams", exam.Exam{
		Title:     "LGS Deneme",
		Template:  previewTemplate(),
		AnswerKey: previewKey(),
	})
	var created exam.Exam
	decodeInto(t, w, &created)

	req := httptest.NewRequest("POST", "/exams/"+created.ID+"/batches", strings.NewReader(previewLine("1001", "A", "AAAAAABBBB")+"\n"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("plain text upload: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	w = doJSON(t, r, "GET", "/exams/"+created.ID+"/batches", nil)
	var batches []exam.Batch
	decodeInto(t, w, &batches)
	if len(batches) != 1 || batches[0].FileName != "" {
		t.Fatalf("batches = %+v", batches)
	}
}

func TestListRecordsStatusFilter(t *testing.T) {
	r, _ := testRouter()

	w := doJSON(t, r, "POST", "/exams", exam.Exam{
		Title:     "LGS Deneme",
		Template:  previewTemplate(),
		AnswerKey: previewKey(),
	})
	var created exam.Exam
	decodeInto(t, w, &created)

	// second line answers only 5 of 10: needs_review
	w = doJSON(t, r, "POST", "/exams/"+created.ID+"/batches", map[string]string{
		"text": previewLine("1001", "A", "AAAAAABBBB") + "\n" + previewLine("1002", "", "AAAAA") + "\n",
	})
	var br struct {
		Batch exam.Batch `json:"batch"`
	}
	decodeInto(t, w, &br)

	w = doJSON(t, r, "GET", "/batches/"+br.Batch.ID+"/records?status=needs_review", nil)
	var records []omr.ParsedStudentRecord
	decodeInto(t, w, &records)
	if len(records) != 1 || records[0].StudentID != "1002" {
		t.Fatalf("filtered records = %+v", records)
	}
}

func TestListProfilesHandler(t *testing.T) {
	r, _ := testRouter()
	w := doJSON(t, r, "GET", "/profiles", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var names []string
	decodeInto(t, w, &names)
	found := false
	for _, n := range names {
		if n == "lgs.v1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("profiles = %v, want lgs.v1 present", names)
	}
}

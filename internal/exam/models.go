package exam

import (
	"github.com/sinavlab/optik/internal/omr"
	"github.com/sinavlab/optik/internal/scoring"
)

// Exam binds a form template to its answer key and scoring profile.
// Template and key are authored once (by the external editors) and
// treated as immutable afterwards.
type Exam struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Profile   string            `json:"profile,omitempty"` // e.g. "lgs.v1"
	Template  omr.Template      `json:"template"`
	AnswerKey scoring.AnswerKey `json:"answer_key"`
	CreatedAt int64             `json:"created_at,omitempty"`
}

// Batch is one decoded scanner file.
type Batch struct {
	ID       string `json:"id"`
	ExamID   string `json:"exam_id"`
	FileName string `json:"file_name,omitempty"`
	BlobKey  string `json:"blob_key,omitempty"`

	Summary omr.BatchSummary `json:"summary"`

	ScoredAt  int64 `json:"scored_at,omitempty"`
	CreatedAt int64 `json:"created_at,omitempty"`
}

// StudentScore is one student's scored result within a batch.
type StudentScore struct {
	BatchID   string             `json:"batch_id"`
	LineNo    int                `json:"line_no"`
	StudentID string             `json:"student_id"`
	Result    scoring.ExamResult `json:"result"`
}

// RecordFilter narrows record listings.
type RecordFilter struct {
	ReviewStatus omr.ReviewStatus // empty = all
}

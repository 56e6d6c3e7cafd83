package omr

// ParsedStudentRecord is one fully decoded scanner line. Records are
// built once by the assembler and read-only afterwards; scoring consumes
// SubjectAnswers without ever seeing byte offsets.
type ParsedStudentRecord struct {
	LineNo int `json:"line_no"`

	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	NationalID  string `json:"national_id,omitempty"`
	ClassCode   string `json:"class_code,omitempty"`
	Booklet     string `json:"booklet,omitempty"`

	RawLine     string `json:"raw_line"`
	CleanedLine string `json:"cleaned_line"`

	SubjectAnswers map[SubjectCode][]Mark `json:"subject_answers"`
	// SubjectOrder preserves segment encounter order for deterministic output.
	SubjectOrder []SubjectCode `json:"subject_order,omitempty"`
	// FlatAnswers always has exactly the template's question count.
	FlatAnswers []Mark `json:"flat_answers"`

	AnsweredCount int `json:"answered_count"`

	Confidence   Confidence   `json:"confidence"`
	ReviewStatus ReviewStatus `json:"review_status"`
	Warnings     []string     `json:"warnings,omitempty"`
	Errors       []string     `json:"errors,omitempty"`
	IsValid      bool         `json:"is_valid"`
}

// BatchSummary is the file-level aggregate over one decode run.
type BatchSummary struct {
	TotalLines        int      `json:"total_lines"`
	SuccessCount      int      `json:"success_count"`
	NeedsReviewCount  int      `json:"needs_review_count"`
	RejectedCount     int      `json:"rejected_count"`
	AverageConfidence float64  `json:"average_confidence"`
	Warnings          []string `json:"warnings,omitempty"`
}

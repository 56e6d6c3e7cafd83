package omr

// Confidence is the coarse data-quality tier assigned to a decoded record.
type Confidence string

const (
	ConfidenceHigh     Confidence = "high"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceLow      Confidence = "low"
	ConfidenceCritical Confidence = "critical"
)

// Weight maps a tier to the score used for batch-level averaging.
func (c Confidence) Weight() float64 {
	switch c {
	case ConfidenceHigh:
		return 1.0
	case ConfidenceMedium:
		return 0.75
	case ConfidenceLow:
		return 0.5
	default:
		return 0.25
	}
}

// ReviewStatus says what should happen to a record downstream.
type ReviewStatus string

const (
	ReviewOK     ReviewStatus = "ok"
	ReviewNeeded ReviewStatus = "needs_review"
	ReviewReject ReviewStatus = "rejected"
)

// Thresholds are ratios of total, not absolute counts, so the same
// classifier serves 90-question and 120-question forms alike. The
// reference points are 80/90, 60/90 and 40/90.
const (
	highAnswerRatio   = 80.0 / 90.0
	mediumAnswerRatio = 60.0 / 90.0
	lowAnswerRatio    = 40.0 / 90.0
)

// Classify derives the confidence tier and review status for one record
// from its answered-slot count and identity completeness. Rules are
// evaluated top down; the first that holds wins.
func Classify(answered, total int, id Identity) (Confidence, ReviewStatus) {
	if total <= 0 {
		return ConfidenceCritical, ReviewReject
	}
	ratio := float64(answered) / float64(total)
	switch {
	case ratio >= highAnswerRatio && id.Booklet != "" && id.StudentID != "" && id.StudentName != "":
		return ConfidenceHigh, ReviewOK
	case ratio >= mediumAnswerRatio && id.StudentID != "":
		return ConfidenceMedium, ReviewOK
	case ratio >= lowAnswerRatio:
		return ConfidenceLow, ReviewNeeded
	default:
		return ConfidenceCritical, ReviewReject
	}
}

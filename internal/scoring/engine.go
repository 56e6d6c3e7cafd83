package scoring

import (
	"fmt"
	"sort"

	"github.com/sinavlab/optik/internal/omr"
)

// SubjectResult is the breakdown for one subject. TotalQuestions counts
// only the slots that were actually scored, so correct+incorrect+blank
// always adds up to it even when the key is missing entries.
type SubjectResult struct {
	Subject        omr.SubjectCode `json:"subject"`
	TotalQuestions int             `json:"total_questions"`
	Correct        int             `json:"correct"`
	Incorrect      int             `json:"incorrect"`
	Blank          int             `json:"blank"`
	Net            float64         `json:"net"`
	Weight         float64         `json:"weight"`
}

// ExamResult is the scored outcome for one student record.
type ExamResult struct {
	Subjects         []SubjectResult `json:"subjects"`
	WeightedRawScore float64         `json:"weighted_raw_score"`
	ScaledScore      float64         `json:"scaled_score"`
	Warnings         []string        `json:"warnings,omitempty"`
}

// Score grades one record's subject answers against an answer key resolved
// for its booklet. The engine never sees byte offsets: its whole input
// contract is the subject→answers map the decoder produced.
//
// Expected bad input degrades, never fails: slots without a key entry are
// left unscored, and subjects without a weight score with weight zero.
// Both surface as warnings on the result.
func Score(answers map[omr.SubjectCode][]omr.Mark, key AnswerKey, booklet string, cfg Config) ExamResult {
	var res ExamResult
	resolved := key.Resolve(booklet)

	divisor := cfg.PenaltyDivisor
	if divisor <= 0 {
		divisor = 1
	}

	raw := 0.0
	for _, subject := range subjectOrder(answers, resolved) {
		marks := answers[subject]
		entries := resolved.BySubject[subject]

		sr := SubjectResult{Subject: subject}
		unscored := 0
		for i, m := range marks {
			if i >= len(entries) {
				unscored++
				continue
			}
			switch {
			case m.IsBlank():
				sr.Blank++
			case m == entries[i].Correct:
				sr.Correct++
			default:
				sr.Incorrect++
			}
		}
		if unscored > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %d answer(s) without a key entry left unscored", subject, unscored))
		}
		sr.TotalQuestions = sr.Correct + sr.Incorrect + sr.Blank
		sr.Net = float64(sr.Correct) - float64(sr.Incorrect)/float64(divisor)

		weight, ok := cfg.SubjectWeights[subject]
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: no weight configured; excluded from raw score", subject))
		}
		sr.Weight = weight
		raw += sr.Net * weight

		res.Subjects = append(res.Subjects, sr)
	}

	if raw < 0 {
		raw = 0
	}
	if raw > cfg.MaxRawScore {
		raw = cfg.MaxRawScore
	}
	res.WeightedRawScore = raw

	if cfg.MaxRawScore > 0 {
		res.ScaledScore = cfg.MinScore + raw*(cfg.MaxScore-cfg.MinScore)/cfg.MaxRawScore
	} else {
		res.ScaledScore = cfg.MinScore
	}
	if res.ScaledScore < cfg.MinScore {
		res.ScaledScore = cfg.MinScore
	}
	if res.ScaledScore > cfg.MaxScore {
		res.ScaledScore = cfg.MaxScore
	}
	return res
}

// subjectOrder yields the record's subjects in the key's question order,
// with record-only subjects appended alphabetically. Scoring output is
// deterministic regardless of map iteration order.
func subjectOrder(answers map[omr.SubjectCode][]omr.Mark, resolved ResolvedKey) []omr.SubjectCode {
	var order []omr.SubjectCode
	seen := map[omr.SubjectCode]bool{}
	for _, s := range resolved.SubjectOrder {
		if _, ok := answers[s]; ok {
			order = append(order, s)
			seen[s] = true
		}
	}
	var extra []omr.SubjectCode
	for s := range answers {
		if !seen[s] {
			extra = append(extra, s)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}

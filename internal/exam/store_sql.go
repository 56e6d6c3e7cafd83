package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/sinavlab/optik/internal/omr"
)

// SQLStore persists through database/sql. Placeholders are written as $N,
// which both the pgx and modernc sqlite drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	tj, err := json.Marshal(e.Template)
	if err != nil {
		return err
	}
	kj, err := json.Marshal(e.AnswerKey)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams (id,title,profile,template_json,answer_key_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, profile=EXCLUDED.profile,
			template_json=EXCLUDED.template_json, answer_key_json=EXCLUDED.answer_key_json`,
		e.ID, e.Title, e.Profile, string(tj), string(kj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,profile,template_json,answer_key_json,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var tj, kj string
	if err := row.Scan(&e.ID, &e.Title, &e.Profile, &tj, &kj, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrNotFound
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(tj), &e.Template); err != nil {
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(kj), &e.AnswerKey); err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]Exam, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,profile,template_json,answer_key_json,created_at
		FROM exams
		WHERE ($1 = '' OR LOWER(title) LIKE '%' || LOWER($1) || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, opts.Q, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Exam
	for rows.Next() {
		var e Exam
		var tj, kj string
		if err := rows.Scan(&e.ID, &e.Title, &e.Profile, &tj, &kj, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tj), &e.Template); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(kj), &e.AnswerKey); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutBatch(ctx context.Context, b Batch, records []omr.ParsedStudentRecord) error {
	wj, err := json.Marshal(b.Summary.Warnings)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO batches
		(id,exam_id,file_name,blob_key,total_lines,success_count,needs_review_count,rejected_count,average_confidence,warnings_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		b.ID, b.ExamID, b.FileName, b.BlobKey,
		b.Summary.TotalLines, b.Summary.SuccessCount, b.Summary.NeedsReviewCount, b.Summary.RejectedCount,
		b.Summary.AverageConfidence, string(wj), time.Now().Unix())
	if err != nil {
		return err
	}
	for _, rec := range records {
		rj, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO records (batch_id,line_no,student_id,review_status,confidence,record_json)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			b.ID, rec.LineNo, rec.StudentID, string(rec.ReviewStatus), string(rec.Confidence), string(rj))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetBatch(ctx context.Context, id string) (Batch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,exam_id,file_name,blob_key,total_lines,success_count,needs_review_count,rejected_count,average_confidence,warnings_json,COALESCE(scored_at,0),created_at
		FROM batches WHERE id=$1`, id)
	return scanBatch(row)
}

func (s *SQLStore) ListBatches(ctx context.Context, examID string) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,exam_id,file_name,blob_key,total_lines,success_count,needs_review_count,rejected_count,average_confidence,warnings_json,COALESCE(scored_at,0),created_at
		FROM batches WHERE exam_id=$1 ORDER BY created_at DESC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (Batch, error) {
	var b Batch
	var wj string
	err := row.Scan(&b.ID, &b.ExamID, &b.FileName, &b.BlobKey,
		&b.Summary.TotalLines, &b.Summary.SuccessCount, &b.Summary.NeedsReviewCount, &b.Summary.RejectedCount,
		&b.Summary.AverageConfidence, &wj, &b.ScoredAt, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Batch{}, ErrNotFound
		}
		return Batch{}, err
	}
	if err := json.Unmarshal([]byte(wj), &b.Summary.Warnings); err != nil {
		return Batch{}, err
	}
	return b, nil
}

func (s *SQLStore) ListRecords(ctx context.Context, batchID string, f RecordFilter) ([]omr.ParsedStudentRecord, error) {
	if _, err := s.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT record_json FROM records
		WHERE batch_id=$1 AND ($2 = '' OR review_status=$2)
		ORDER BY line_no`, batchID, string(f.ReviewStatus))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []omr.ParsedStudentRecord
	for rows.Next() {
		var rj string
		if err := rows.Scan(&rj); err != nil {
			return nil, err
		}
		var rec omr.ParsedStudentRecord
		if err := json.Unmarshal([]byte(rj), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveScores(ctx context.Context, batchID string, scores []StudentScore) error {
	if _, err := s.GetBatch(ctx, batchID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scores WHERE batch_id=$1`, batchID); err != nil {
		return err
	}
	for _, sc := range scores {
		rj, err := json.Marshal(sc.Result)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO scores (batch_id,line_no,student_id,scaled_score,result_json)
			VALUES ($1,$2,$3,$4,$5)`,
			batchID, sc.LineNo, sc.StudentID, sc.Result.ScaledScore, string(rj))
		if err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE batches SET scored_at=$1 WHERE id=$2`, time.Now().Unix(), batchID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) ListScores(ctx context.Context, batchID string) ([]StudentScore, error) {
	if _, err := s.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT line_no,student_id,result_json FROM scores
		WHERE batch_id=$1 ORDER BY scaled_score DESC, line_no`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StudentScore
	for rows.Next() {
		sc := StudentScore{BatchID: batchID}
		var rj string
		if err := rows.Scan(&sc.LineNo, &sc.StudentID, &rj); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rj), &sc.Result); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

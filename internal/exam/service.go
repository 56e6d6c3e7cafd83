package exam

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sinavlab/optik/internal/eventlog"
	"github.com/sinavlab/optik/internal/omr"
	"github.com/sinavlab/optik/internal/scoring"
	"github.com/sinavlab/optik/internal/storage"
)

// Service runs the decode and scoring pipelines against the store. The
// pipelines themselves stay pure; all I/O (persistence, blob archive,
// event log) happens here.
type Service struct {
	store   Store
	blobs   storage.BlobStore
	events  *eventlog.Repo // nil when running without a db-backed log
	workers int
}

func NewService(store Store, blobs storage.BlobStore, events *eventlog.Repo, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{store: store, blobs: blobs, events: events, workers: workers}
}

// CreateExam validates and stores an exam definition.
func (s *Service) CreateExam(ctx context.Context, e Exam) (Exam, error) {
	if strings.TrimSpace(e.Title) == "" {
		return Exam{}, fmt.Errorf("exam: title required")
	}
	if err := e.Template.Validate(); err != nil {
		return Exam{}, err
	}
	if err := e.AnswerKey.Validate(); err != nil {
		return Exam{}, err
	}
	if e.Profile != "" {
		if _, ok := scoring.ProfileFor(e.Profile); !ok {
			return Exam{}, fmt.Errorf("exam: unknown scoring profile %q", e.Profile)
		}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.store.PutExam(ctx, e); err != nil {
		return Exam{}, err
	}
	return e, nil
}

// IngestBatch decodes one uploaded scanner file for an exam, archives the
// original text and persists records plus the batch summary.
func (s *Service) IngestBatch(ctx context.Context, examID, fileName, text string) (Batch, []omr.ParsedStudentRecord, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return Batch{}, nil, err
	}

	asm, err := omr.NewAssembler(e.Template)
	if err != nil {
		return Batch{}, nil, err
	}
	records, summary := asm.DecodeAllConcurrent(text, s.workers)

	b := Batch{
		ID:       uuid.NewString(),
		ExamID:   examID,
		FileName: fileName,
		Summary:  summary,
	}

	if s.blobs != nil {
		key := "batches/" + b.ID + "/upload.txt"
		if stored, err := s.blobs.Put(key, strings.NewReader(text)); err == nil {
			b.BlobKey = stored
		} else {
			b.Summary.Warnings = append(b.Summary.Warnings, "raw upload not archived: "+err.Error())
		}
	}

	if err := s.store.PutBatch(ctx, b, records); err != nil {
		return Batch{}, nil, err
	}
	s.appendEvent(ctx, eventlog.TypeBatchDecoded, b.ID, b.Summary)
	return b, records, nil
}

// ScoreBatch scores every valid record of a batch. cfg overrides the
// exam's registered profile when non-nil. Rejected and id-less records
// are skipped, mirroring the batch summary's exclusion warning.
func (s *Service) ScoreBatch(ctx context.Context, batchID string, cfg *scoring.Config) ([]StudentScore, error) {
	b, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	e, err := s.store.GetExam(ctx, b.ExamID)
	if err != nil {
		return nil, err
	}

	conf, err := s.resolveConfig(e, cfg)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListRecords(ctx, batchID, RecordFilter{})
	if err != nil {
		return nil, err
	}

	var scores []StudentScore
	for _, rec := range records {
		if !rec.IsValid {
			continue
		}
		res := scoring.Score(rec.SubjectAnswers, e.AnswerKey, rec.Booklet, conf)
		scores = append(scores, StudentScore{
			BatchID:   batchID,
			LineNo:    rec.LineNo,
			StudentID: rec.StudentID,
			Result:    res,
		})
	}

	if err := s.store.SaveScores(ctx, batchID, scores); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, eventlog.TypeBatchScored, batchID, map[string]int{"scored": len(scores), "skipped": len(records) - len(scores)})
	return scores, nil
}

func (s *Service) resolveConfig(e Exam, override *scoring.Config) (scoring.Config, error) {
	if override != nil {
		return *override, nil
	}
	if e.Profile == "" {
		return scoring.Config{}, fmt.Errorf("exam %s has no scoring profile and no config was supplied", e.ID)
	}
	conf, ok := scoring.ProfileFor(e.Profile)
	if !ok {
		return scoring.Config{}, fmt.Errorf("scoring profile %q not registered", e.Profile)
	}
	return conf, nil
}

func (s *Service) appendEvent(ctx context.Context, typ, key string, data any) {
	if s.events == nil {
		return
	}
	// the event log is advisory; a failed append must not fail the request
	_ = s.events.Append(ctx, typ, key, data)
}

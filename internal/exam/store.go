package exam

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sinavlab/optik/internal/omr"
)

// ErrNotFound is returned for unknown exam/batch IDs.
var ErrNotFound = errors.New("not found")

// ListOpts narrows exam listings.
type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

// Store persists exams, decoded batches and scores.
type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)
	ListExams(ctx context.Context, opts ListOpts) ([]Exam, error)

	PutBatch(ctx context.Context, b Batch, records []omr.ParsedStudentRecord) error
	GetBatch(ctx context.Context, id string) (Batch, error)
	ListBatches(ctx context.Context, examID string) ([]Batch, error)
	ListRecords(ctx context.Context, batchID string, f RecordFilter) ([]omr.ParsedStudentRecord, error)

	SaveScores(ctx context.Context, batchID string, scores []StudentScore) error
	ListScores(ctx context.Context, batchID string) ([]StudentScore, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	exams   map[string]Exam
	batches map[string]Batch
	records map[string][]omr.ParsedStudentRecord
	scores  map[string][]StudentScore
}

// NewInMemoryStore backs the handlers in tests and single-shot tooling.
func NewInMemoryStore() Store {
	return &memoryStore{
		exams:   map[string]Exam{},
		batches: map[string]Batch{},
		records: map[string][]omr.ParsedStudentRecord{},
		scores:  map[string][]StudentScore{},
	}
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrNotFound
	}
	return e, nil
}

func (m *memoryStore) ListExams(_ context.Context, opts ListOpts) ([]Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Exam
	for _, e := range m.exams {
		if opts.Q != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(opts.Q)) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return window(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) PutBatch(_ context.Context, b Batch, records []omr.ParsedStudentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[b.ExamID]; !ok {
		return ErrNotFound
	}
	if b.CreatedAt == 0 {
		b.CreatedAt = time.Now().Unix()
	}
	m.batches[b.ID] = b
	m.records[b.ID] = records
	return nil
}

func (m *memoryStore) GetBatch(_ context.Context, id string) (Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.batches[id]
	if !ok {
		return Batch{}, ErrNotFound
	}
	return b, nil
}

func (m *memoryStore) ListBatches(_ context.Context, examID string) ([]Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Batch
	for _, b := range m.batches {
		if b.ExamID == examID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) ListRecords(_ context.Context, batchID string, f RecordFilter) ([]omr.ParsedStudentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs, ok := m.records[batchID]
	if !ok {
		return nil, ErrNotFound
	}
	var out []omr.ParsedStudentRecord
	for _, r := range recs {
		if f.ReviewStatus != "" && r.ReviewStatus != f.ReviewStatus {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryStore) SaveScores(_ context.Context, batchID string, scores []StudentScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return ErrNotFound
	}
	m.scores[batchID] = scores
	b.ScoredAt = time.Now().Unix()
	m.batches[batchID] = b
	return nil
}

func (m *memoryStore) ListScores(_ context.Context, batchID string) ([]StudentScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.batches[batchID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]StudentScore, len(m.scores[batchID]))
	copy(out, m.scores[batchID])
	sort.Slice(out, func(i, j int) bool {
		if out[i].Result.ScaledScore != out[j].Result.ScaledScore {
			return out[i].Result.ScaledScore > out[j].Result.ScaledScore
		}
		return out[i].LineNo < out[j].LineNo
	})
	return out, nil
}

func window[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/sinavlab/optik/internal/exam"
	"github.com/sinavlab/optik/internal/omr"
)

type createBatchReq struct {
	FileName string `json:"file_name,omitempty"`
	Text     string `json:"text"`
}

type createBatchResp struct {
	Batch   exam.Batch                `json:"batch"`
	Records []omr.ParsedStudentRecord `json:"records"`
}

// POST /exams/{examID}/batches
// Accepts {"file_name":..., "text":...} or a raw text/plain body.
func CreateBatchHandler(svc *exam.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := strings.TrimSpace(chi.URLParam(r, "examID"))
		if examID == "" {
			http.Error(w, "examID required", http.StatusBadRequest)
			return
		}

		var req createBatchReq
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
		} else {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
				return
			}
			req.Text = string(body)
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "empty upload", http.StatusBadRequest)
			return
		}

		b, records, err := svc.IngestBatch(r.Context(), examID, req.FileName, req.Text)
		if err != nil {
			writeStoreErr(w, err)
			return
		}

		log.WithFields(logrus.Fields{
			"batch":    b.ID,
			"exam":     examID,
			"lines":    b.Summary.TotalLines,
			"rejected": b.Summary.RejectedCount,
		}).Info("batch decoded")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createBatchResp{Batch: b, Records: records})
	}
}

// GET /batches/{batchID}
func GetBatchHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "batchID"))
		b, err := store.GetBatch(r.Context(), id)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(b)
	}
}

// GET /exams/{examID}/batches
func ListBatchesHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := strings.TrimSpace(chi.URLParam(r, "examID"))
		list, err := store.ListBatches(r.Context(), examID)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /batches/{batchID}/records?status=needs_review
func ListRecordsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "batchID"))
		f := exam.RecordFilter{ReviewStatus: omr.ReviewStatus(strings.TrimSpace(r.URL.Query().Get("status")))}
		records, err := store.ListRecords(r.Context(), id, f)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	}
}

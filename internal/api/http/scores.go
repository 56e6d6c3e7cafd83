package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/sinavlab/optik/internal/exam"
	"github.com/sinavlab/optik/internal/scoring"
)

type scoreBatchReq struct {
	// Profile overrides the exam's registered profile for this run.
	Profile string `json:"profile,omitempty"`
	// Config overrides everything when present.
	Config *scoring.Config `json:"config,omitempty"`
}

// POST /batches/{batchID}/score
func ScoreBatchHandler(svc *exam.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "batchID"))
		if id == "" {
			http.Error(w, "batchID required", http.StatusBadRequest)
			return
		}

		var req scoreBatchReq
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
		}

		override := req.Config
		if override == nil && req.Profile != "" {
			cfg, ok := scoring.ProfileFor(req.Profile)
			if !ok {
				http.Error(w, "unknown profile: "+req.Profile, http.StatusBadRequest)
				return
			}
			override = &cfg
		}

		scores, err := svc.ScoreBatch(r.Context(), id, override)
		if err != nil {
			writeStoreErr(w, err)
			return
		}

		log.WithFields(logrus.Fields{"batch": id, "scored": len(scores)}).Info("batch scored")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(scores)
	}
}

// GET /batches/{batchID}/scores
func ListScoresHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "batchID"))
		scores, err := store.ListScores(r.Context(), id)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(scores)
	}
}

// GET /profiles
func ListProfilesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(scoring.Profiles())
	}
}

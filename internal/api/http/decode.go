package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sinavlab/optik/internal/omr"
)

type decodePreviewReq struct {
	Template omr.Template `json:"template"`
	Text     string       `json:"text"`
}

type decodePreviewResp struct {
	Records []omr.ParsedStudentRecord `json:"records"`
	Summary omr.BatchSummary          `json:"summary"`
}

// POST /decode
// Stateless decode used by the template editor to test a layout against
// pasted scanner output. Nothing is persisted.
func DecodePreviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req decodePreviewReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "text required", http.StatusBadRequest)
			return
		}

		asm, err := omr.NewAssembler(req.Template)
		if err != nil {
			http.Error(w, "template: "+err.Error(), http.StatusBadRequest)
			return
		}
		records, summary := asm.DecodeAll(req.Text)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(decodePreviewResp{Records: records, Summary: summary})
	}
}

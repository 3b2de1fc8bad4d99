// File path: internal/api/diagnose_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/agrostack/cropdoctor/internal/common"
	"github.com/agrostack/cropdoctor/internal/recommend"
)

const defaultDiagnoseTopK = 5

type diagnoseRequest struct {
	Symptoms  string `json:"symptoms"`
	ImagePath string `json:"image_path"`
	Crop      string `json:"crop"`
	TopK      int    `json:"top_k"`
}

type diagnoseResponse struct {
	Query          string                   `json:"query"`
	Matches        int                      `json:"matches"`
	Recommendation recommend.Recommendation `json:"recommendation"`
}

// handleDiagnose runs the full pipeline: build a query from the symptoms
// (or a generic image description), retrieve the closest cases, and
// synthesize a recommendation. The response is always complete; when the
// retriever is down the recommendation comes from the no-evidence path.
func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req diagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	query := strings.TrimSpace(req.Symptoms)
	if query == "" {
		query = recommend.AnalyzeImageSymptoms(req.ImagePath)
	}
	if crop := strings.TrimSpace(req.Crop); crop != "" {
		query = crop + " leaf. " + query
	}
	topK := req.TopK
	if topK <= 0 {
		topK = defaultDiagnoseTopK
	}
	logger.Info("api: diagnose request", "crop", req.Crop, "top_k", topK)

	matches := s.searcher.Search(r.Context(), query, topK)
	rec := s.recommender.Recommend(r.Context(), matches, strings.TrimSpace(req.Crop))
	writeJSON(w, http.StatusOK, diagnoseResponse{
		Query:          query,
		Matches:        len(matches),
		Recommendation: rec,
	})
}

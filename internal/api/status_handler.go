// File path: internal/api/status_handler.go
package api

import (
	"net/http"

	"github.com/agrostack/cropdoctor/internal/common"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info := s.searcher.Info()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":             "cropdoctor",
		"ready":               info.Ready,
		"index":               info,
		"generator_available": s.recommender.GeneratorAvailable(),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := common.LogEntries()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

package api

import (
	"net/http"
)

func (s *Server) handleScanStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"window":         s.stats.Window().String(),
		"open_documents": s.docs.Len(),
		"stats":          s.stats.Snapshot(),
	})
}

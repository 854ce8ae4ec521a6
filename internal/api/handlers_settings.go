package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/settings"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cur := s.settings.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"settings": cur.ToMap(),
		"groups":   cur.Groups(),
	})
}

// handlePutSetting persists one toggle. Open documents are recomputed
// through the settings subscription.
func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Value *bool `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Value == nil {
		jsonError(w, "value is required", http.StatusBadRequest)
		return
	}

	next, err := s.settings.Set(r.Context(), key, *req.Value)
	s.writeSettingResult(w, next, err)
}

func (s *Server) handleToggleSetting(w http.ResponseWriter, r *http.Request) {
	next, err := s.settings.Toggle(r.Context(), chi.URLParam(r, "key"))
	s.writeSettingResult(w, next, err)
}

func (s *Server) writeSettingResult(w http.ResponseWriter, next settings.Settings, err error) {
	if err != nil {
		if errors.Is(err, settings.ErrUnknownKey) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		s.log.Error("failed to update settings", "error", err)
		jsonError(w, "failed to update settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": next.ToMap()})
}

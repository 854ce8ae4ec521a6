package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
)

type documentInfo struct {
	ID      string `json:"id"`
	Version int32  `json:"version"`
	Bytes   int    `json:"bytes"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	sessions := s.docs.Sessions()
	docs := make([]documentInfo, 0, len(sessions))
	for _, sess := range sessions {
		docs = append(docs, documentInfo{
			ID:      sess.URI(),
			Version: sess.Version(),
			Bytes:   sess.Snapshot().Len(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handlePutDocument opens a tracked document or replaces its text, then
// returns the freshly computed hints.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	text, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	sess, created := s.docs.OpenOrReplace(docID, text)
	s.tracker.Follow(sess)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		s.log.Info("document opened", "doc_id", docID, "bytes", len(text))
	}

	hints, _ := s.tracker.Hints(docID)
	writeJSON(w, status, map[string]any{"id": docID, "version": sess.Version(), "annotations": hints})
}

func (s *Server) handleDocumentAnnotations(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	hints, ok := s.tracker.Hints(docID)
	if !ok {
		jsonError(w, "document not open", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": docID, "annotations": hints})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	s.tracker.Detach(docID)
	if err := s.docs.Close(docID); err != nil {
		if errors.Is(err, document.ErrNotOpen) {
			jsonError(w, "document not open", http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("document closed", "doc_id", docID)
	w.WriteHeader(http.StatusNoContent)
}

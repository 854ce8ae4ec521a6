package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/annotate"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/metrics"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/outline"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/section"
)

// handleScan annotates a one-off document. The ranks query parameter
// (e.g. "1,2") overrides the configured header levels for this call.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	cur := s.settings.Current()
	ranks := cur.Ranks()
	if raw := r.URL.Query().Get("ranks"); raw != "" {
		parsed, err := parseRanks(raw)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		ranks = parsed
	}

	text, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	snap := document.New(text)

	start := time.Now()
	annotations := section.Scan(snap, ranks)
	elapsed := time.Since(start)

	words := 0
	for _, a := range annotations {
		words += a.Words
	}
	metrics.RecordScan("api_scan", elapsed, len(annotations))
	s.stats.Record(elapsed, len(annotations), words)

	writeJSON(w, http.StatusOK, map[string]any{
		"annotations": annotate.Decorate(snap, annotations, s.renderer, cur.Metrics()),
	})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, outline.Build(document.New(text)))
}

// parseRanks reads a comma-separated list of header levels.
func parseRanks(raw string) (section.Ranks, error) {
	var ranks section.Ranks
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > int(section.MaxRank) {
			return section.Ranks{}, fmt.Errorf("invalid header level %q: must be 1, 2 or 3", part)
		}
		ranks[n] = true
	}
	return ranks, nil
}

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type inlayHintParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Range        protocol.Range                  `json:"range"`
}

type inlayHint struct {
	Position    protocol.Position `json:"position"`
	Label       string            `json:"label"`
	Tooltip     string            `json:"tooltip,omitempty"`
	PaddingLeft bool              `json:"paddingLeft,omitempty"`
}

// textDocumentInlayHint returns one hint per visible section whose header
// line falls inside the requested range, placed at the end of that line.
func (s *Server) textDocumentInlayHint(ctx *glsp.Context, params *inlayHintParams) ([]inlayHint, error) {
	hints, ok := s.tracker.Hints(params.TextDocument.URI)
	if !ok {
		return []inlayHint{}, nil
	}

	first, last := int(params.Range.Start.Line), int(params.Range.End.Line)
	out := make([]inlayHint, 0, len(hints))
	for _, h := range hints {
		if h.Hidden || h.Position.Line < first || h.Position.Line > last {
			continue
		}
		out = append(out, inlayHint{
			Position:    toPosition(h.Position),
			Label:       h.Label,
			Tooltip:     h.Title,
			PaddingLeft: true,
		})
	}
	return out, nil
}

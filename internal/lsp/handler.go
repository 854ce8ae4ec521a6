package lsp

import (
	"encoding/json"
	"errors"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// handler adds textDocument/inlayHint (LSP 3.17) on top of the 3.16
// dispatcher.
type handler struct {
	*protocol.Handler
	s *Server
}

func (h *handler) Handle(ctx *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	if ctx.Method != MethodInlayHint {
		return h.Handler.Handle(ctx)
	}
	if !h.IsInitialized() {
		return nil, true, true, errors.New("server not initialized")
	}

	var params inlayHintParams
	if err := json.Unmarshal(ctx.Params, &params); err != nil {
		return nil, true, false, err
	}
	h.s.bind(ctx)
	r, err = h.s.textDocumentInlayHint(ctx, &params)
	return r, true, true, err
}

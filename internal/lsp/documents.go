package lsp

import (
	"errors"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
)

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.bind(ctx)
	item := params.TextDocument

	sess, err := s.docs.Open(item.URI, item.Version, item.Text)
	if errors.Is(err, document.ErrAlreadyOpen) {
		sess, _ = s.docs.Get(item.URI)
		sess.Replace(item.Version, item.Text)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	s.tracker.Attach(sess)
	s.log.Debug("document opened", "uri", item.URI, "version", item.Version)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.bind(ctx)
	uri := params.TextDocument.URI

	sess, ok := s.docs.Get(uri)
	if !ok {
		return fmt.Errorf("document not found: %s", uri)
	}

	changes := make([]document.Change, 0, len(params.ContentChanges))
	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, document.Change{
				Range: toRange(change.Range),
				Text:  change.Text,
			})
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, document.Change{Text: change.Text})
		default:
			return fmt.Errorf("unexpected change event type %T", raw)
		}
	}

	if err := sess.Apply(params.TextDocument.Version, changes...); err != nil {
		return fmt.Errorf("failed to apply changes: %w", err)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.tracker.Detach(uri)
	if err := s.docs.Close(uri); err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}
	s.log.Debug("document closed", "uri", uri)
	return nil
}

func toRange(r *protocol.Range) *document.Range {
	if r == nil {
		return nil
	}
	return &document.Range{
		Start: fromPosition(r.Start),
		End:   fromPosition(r.End),
	}
}

func fromPosition(p protocol.Position) document.Position {
	return document.Position{Line: int(p.Line), Character: int(p.Character)}
}

func toPosition(p document.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Line),
		Character: protocol.UInteger(p.Character),
	}
}

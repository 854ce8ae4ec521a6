package lsp

import (
	"context"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// capabilities extends the 3.16 server capabilities with inlay hints.
type capabilities struct {
	protocol.ServerCapabilities
	InlayHintProvider bool `json:"inlayHintProvider"`
}

type initializeResult struct {
	Capabilities capabilities                         `json:"capabilities"`
	ServerInfo   *protocol.InitializeResultServerInfo `json:"serverInfo,omitempty"`
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params.InitializationOptions != nil {
		values, err := decodeSettings(params.InitializationOptions)
		if err != nil {
			return nil, fmt.Errorf("invalid initializationOptions: %w", err)
		}
		if len(values) > 0 {
			if _, err := s.settings.Merge(context.Background(), values); err != nil {
				return nil, err
			}
		}
	}

	// Bound after the merge so no refresh is sent before the client has
	// its initialize response.
	s.bind(ctx)

	caps := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindIncremental
	caps.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	caps.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{CommandToggle, CommandSet},
	}

	client := "unknown"
	if params.ClientInfo != nil {
		client = params.ClientInfo.Name
	}
	s.log.Info("initialize", "client", client, "settings", s.settings.Current().ToMap())

	return initializeResult{
		Capabilities: capabilities{ServerCapabilities: caps, InlayHintProvider: true},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.bind(ctx)
	s.log.Info("client initialized")
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	for _, uri := range s.tracker.URIs() {
		s.tracker.Detach(uri)
	}
	s.docs.CloseAll()
	s.log.Info("shutdown")
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// Package lsp serves section annotations to editors as inlay hints over the
// Language Server Protocol.
package lsp

import (
	"log/slog"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/annotate"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/settings"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/stats"
)

const Name = "sectioncount"

const (
	MethodInlayHint        = "textDocument/inlayHint"
	MethodInlayHintRefresh = "workspace/inlayHint/refresh"

	// MethodAnnotations pushes a document's hints to clients that render
	// them without inlay hint support.
	MethodAnnotations = "sectioncount/annotations"

	CommandToggle = "sectioncount.toggle"
	CommandSet    = "sectioncount.set"
)

type Server struct {
	handler  *protocol.Handler
	settings *settings.Service
	docs     *document.Manager
	tracker  *annotate.Tracker
	log      *slog.Logger
	version  string

	mu     sync.Mutex
	notify glsp.NotifyFunc
	call   glsp.CallFunc
}

// NewServer wires a language server around svc. Every settings change
// recomputes all open documents and asks the client to refresh its hints.
func NewServer(svc *settings.Service, scanStats *stats.ScanStats, log *slog.Logger, version string) *Server {
	s := &Server{
		settings: svc,
		docs:     document.NewManager(),
		log:      log,
		version:  version,
	}
	s.tracker = annotate.NewTracker(svc, log,
		annotate.WithStats(scanStats),
		annotate.WithSourceLabel("lsp"),
	)
	s.tracker.OnUpdate(s.publishAnnotations)
	svc.Subscribe(func(settings.Settings) {
		s.docs.InvalidateAll()
		s.requestRefresh()
	})

	s.handler = &protocol.Handler{
		Initialize:                      s.initialize,
		Initialized:                     s.initialized,
		Shutdown:                        s.shutdown,
		SetTrace:                        s.setTrace,
		TextDocumentDidOpen:             s.textDocumentDidOpen,
		TextDocumentDidChange:           s.textDocumentDidChange,
		TextDocumentDidClose:            s.textDocumentDidClose,
		WorkspaceDidChangeConfiguration: s.workspaceDidChangeConfiguration,
		WorkspaceExecuteCommand:         s.workspaceExecuteCommand,
	}
	return s
}

// Handler returns the JSON-RPC handler, including the inlay hint method
// the 3.16 protocol handler does not know about.
func (s *Server) Handler() glsp.Handler {
	return &handler{Handler: s.handler, s: s}
}

// RunStdio serves the protocol on stdin and stdout until the client exits.
func (s *Server) RunStdio(debug bool) error {
	return server.NewServer(s.Handler(), Name, debug).RunStdio()
}

// bind keeps the connection callbacks from the most recent request so
// server-initiated messages can be sent outside a request.
func (s *Server) bind(ctx *glsp.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Notify != nil {
		s.notify = ctx.Notify
	}
	if ctx.Call != nil {
		s.call = ctx.Call
	}
}

func (s *Server) requestRefresh() {
	s.mu.Lock()
	call := s.call
	s.mu.Unlock()
	if call == nil {
		return
	}
	// Call blocks until the client answers.
	go call(MethodInlayHintRefresh, nil, nil)
}

type annotationsParams struct {
	URI         protocol.DocumentUri `json:"uri"`
	Annotations []annotate.Hint      `json:"annotations"`
}

func (s *Server) publishAnnotations(uri string) {
	s.mu.Lock()
	notify := s.notify
	s.mu.Unlock()
	if notify == nil {
		return
	}
	hints, ok := s.tracker.Hints(uri)
	if !ok {
		return
	}
	notify(MethodAnnotations, annotationsParams{URI: uri, Annotations: hints})
}

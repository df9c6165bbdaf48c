// Package lsp implements a Language Server Protocol server for PHP source
// analysis and completion.
package lsp

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/khongten001/intelephense"
	"github.com/khongten001/intelephense/analysis"
	"github.com/khongten001/intelephense/completion"
)

// Server implements the protocol.Server interface. Document state lives in
// the analysis store; the server is a thin protocol adapter around it.
type Server struct {
	client protocol.Client
	logger *zap.Logger
	cfg    *intelephense.Config
	clk    clock.Clock

	store    *analysis.Store
	index    analysis.Index
	provider *completion.Provider

	// unsubscribe detaches the diagnostics listener from the store.
	unsubscribe func()

	initialized bool
	shutdown    bool
}

// NewServer creates a server over the given symbol index. A reparse of any
// open document publishes fresh diagnostics through the client.
func NewServer(client protocol.Client, logger *zap.Logger, index analysis.Index, cfg *intelephense.Config) *Server {
	if cfg == nil {
		cfg = intelephense.DefaultConfig()
	}

	store := analysis.NewStore()

	s := &Server{
		client:   client,
		logger:   logger,
		cfg:      cfg,
		clk:      clock.New(),
		store:    store,
		index:    index,
		provider: completion.NewProvider(store, index, cfg.MaxItems(), logger),
	}

	s.unsubscribe = store.Subscribe(s.onReparse)

	return s
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize", zap.Any("params", params))

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Incremental sync: the client sends ranged edits and the
			// document buffer splices them in.
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"$", ">", ":", "\\"},
				ResolveProvider:   false,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "phpls",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")
	s.initialized = true

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")

	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Info("DidOpen", zap.String("uri", string(uri)))

	doc := analysis.NewParsedDocument(uri, params.TextDocument.Text, intelephense.Parse, s.clk, s.cfg.DebounceWindow())

	if err := s.store.Add(doc); err != nil {
		s.logger.Error("failed to register document", zap.String("uri", string(uri)), zap.Error(err))

		return err
	}

	s.publishDiagnostics(ctx, doc)

	return nil
}

// DidChange handles textDocument/didChange notifications. Content changes
// are applied to the buffer immediately; the reparse is debounced.
func (s *Server) DidChange(_ context.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Debug("DidChange",
		zap.String("uri", string(uri)),
		zap.Int32("version", params.TextDocument.Version))

	doc := s.store.Find(uri)
	if doc == nil {
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(uri)))

		return nil
	}

	edits := make([]analysis.Edit, 0, len(params.ContentChanges))
	for _, change := range params.ContentChanges {
		edits = append(edits, analysis.Edit{
			Range: change.Range,
			Text:  change.Text,
		})
	}

	doc.ApplyChanges(edits)

	return nil
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Info("DidClose", zap.String("uri", string(uri)))

	s.store.Remove(uri)

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave notifications.
func (s *Server) DidSave(_ context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Debug("DidSave", zap.String("uri", string(params.TextDocument.URI)))

	if doc := s.store.Find(params.TextDocument.URI); doc != nil {
		doc.Flush()
	}

	return nil
}

// Completion handles textDocument/completion requests.
func (s *Server) Completion(_ context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	return s.provider.Complete(params.TextDocument.URI, params.Position), nil
}

// onReparse reacts to the store's aggregate change stream: every rebuild of
// a document's tree republishes its parse diagnostics.
func (s *Server) onReparse(ev analysis.ChangeEvent) {
	doc := s.store.Find(ev.URI)
	if doc == nil {
		return
	}

	s.publishDiagnostics(context.Background(), doc)
}

// Copyright 2026 The Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lspserver is the §6 external LSP surface: it advertises
// server capabilities, parses the client's configuration options,
// dispatches notifications/requests to the per-file-kind
// internal/workspace.Service instances, and turns their diagnostics
// into publishDiagnostics notifications.
//
// Grounded on rlch/scaf's lsp.Server (document map, mutex-guarded
// state, logging around every transition —
// _examples/other_examples/.../lsp-server.go.go) for the overall shape,
// and on internal/lsp/server/server.go's created/initializing/
// initialized/shutDown state machine and pending-message buffering
// before `initialized`.
//
// Server embeds the zero-value protocol.Server interface so it
// satisfies go.lsp.dev/protocol's full (and largely Non-goal, per
// spec.md §6's explicit request list) server interface without having
// to hand-write ~80 notImplemented stubs for methods this DSL server
// never advertises in its capabilities and a conformant client will
// never call; see DESIGN.md.
package lspserver

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/flowdsl/flowls/internal/logging"
	"github.com/flowdsl/flowls/internal/nameresolve"
	"github.com/flowdsl/flowls/internal/phase"
	"github.com/flowdsl/flowls/internal/protocolx"
	"github.com/flowdsl/flowls/internal/providers"
	"github.com/flowdsl/flowls/internal/schema"
	"github.com/flowdsl/flowls/internal/workspace"
)

type state int

const (
	stateCreated state = iota
	stateInitializing
	stateInitialized
	stateShutDown
)

// Server implements go.lsp.dev/protocol.Server for the DSL's two file
// kinds.
type Server struct {
	protocol.Server

	client protocol.Client
	zap    *zap.Logger
	sink   *logging.ClientSink

	scripts *workspace.Service
	configs *workspace.Service

	mu            sync.Mutex
	state         state
	options       Options
	rootURI       string
	pendingEvents []func(context.Context)
}

// New builds a server over a built-in config schema scope and plugin
// cache. The client field is set later by AttachClient, matching
// go.lsp.dev/protocol's NewServer wiring order (the Client handle isn't
// available until the connection is established).
func New(zl *zap.Logger, pluginCache *schema.PluginCache) (*Server, error) {
	root, err := schema.LoadBuiltin()
	if err != nil {
		return nil, err
	}
	s := &Server{
		zap:     zl,
		sink:    logging.NewClientSink(zl),
		options: DefaultOptions(),
	}
	s.scripts = workspace.NewScriptService(publisherFunc(s.publishScript))
	s.configs = workspace.NewConfigService(root, pluginCache, nameresolve.ConfigOptions{TypeChecking: true}, publisherFunc(s.publishConfig))
	return s, nil
}

// publisherFunc adapts a plain function to workspace.Publisher.
type publisherFunc func(uri string, diagnostics []phase.Diagnostic)

func (f publisherFunc) Publish(uri string, diagnostics []phase.Diagnostic) { f(uri, diagnostics) }

func (s *Server) publishScript(uri string, diags []phase.Diagnostic) { s.publish(uri, diags) }
func (s *Server) publishConfig(uri string, diags []phase.Diagnostic) { s.publish(uri, diags) }

// publish sends a publishDiagnostics notification for uri, buffering it
// until initialized if the client connection isn't attached yet (same
// pending-event treatment as s.pendingEvents in Initialized).
func (s *Server) publish(uri string, diags []phase.Diagnostic) {
	s.mu.Lock()
	client := s.client
	if client == nil {
		s.pendingEvents = append(s.pendingEvents, func(ctx context.Context) { s.publish(uri, diags) })
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	_ = client.PublishDiagnostics(context.Background(), &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Diagnostics: protocolx.Diagnostics(diags),
	})
}

// serviceFor returns the Language service matching uri's file kind, or
// nil if neither service claims it.
func (s *Server) serviceFor(uri string) *workspace.Service {
	switch {
	case s.scripts.MatchesFile(uri):
		return s.scripts
	case s.configs.MatchesFile(uri):
		return s.configs
	default:
		return nil
	}
}

// Initialize handles the initialize request: records the workspace
// root and advertises capabilities.
func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.mu.Lock()
	s.state = stateInitializing
	if params.RootURI != "" {
		s.rootURI = string(params.RootURI)
	} else if params.RootPath != "" {
		s.rootURI = string(protocolx.PathToURI(params.RootPath))
	}
	s.mu.Unlock()

	s.zap.Info("initialize", zap.String("rootURI", s.rootURI))

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: false},
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{".", "$"},
			},
			DefinitionProvider:      true,
			ReferencesProvider:      true,
			DocumentSymbolProvider:  true,
			WorkspaceSymbolProvider: true,
			HoverProvider:           true,
			DocumentFormattingProvider: true,
			DocumentLinkProvider:       &protocol.DocumentLinkOptions{},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes: providers.TokenTypes,
				},
				Full: true,
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: "flowls", Version: "0.1.0"},
	}, nil
}

// Initialized handles the initialized notification: attaches the
// client to the logging sink, flushing anything buffered before now.
func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s.mu.Lock()
	s.state = stateInitialized
	events := s.pendingEvents
	s.pendingEvents = nil
	s.mu.Unlock()

	s.sink.Attach(ctx, s.client)
	for _, fn := range events {
		fn(ctx)
	}
	s.zap.Info("initialized")
	return nil
}

// Shutdown releases the debouncers so no further analysis is scheduled.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.state = stateShutDown
	s.mu.Unlock()
	s.scripts.Shutdown()
	s.configs.Shutdown()
	s.zap.Info("shutdown")
	return nil
}

// Exit is a no-op; the process exit itself is the caller's
// responsibility (spec.md §6 lists `exit` among accepted notifications
// but the core has no process lifecycle to own).
func (s *Server) Exit(ctx context.Context) error {
	s.zap.Info("exit")
	return nil
}

// DidChangeConfiguration applies updated settings to both services.
func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	raw, _ := params.Settings.(map[string]any)

	s.mu.Lock()
	s.options = parseOptions(s.options, raw)
	opts := s.options
	s.mu.Unlock()

	correlationID := logging.NewCorrelationID()
	s.zap.Info("didChangeConfiguration", zap.String("correlationID", correlationID))

	s.scripts.SetSuppressFutureWarnings(opts.SuppressFutureWarnings)
	s.configs.SetSuppressFutureWarnings(opts.SuppressFutureWarnings)
	s.configs.SetConfigOptions(nameresolve.ConfigOptions{TypeChecking: opts.TypeChecking})

	s.zap.Debug("didChangeConfiguration done", zap.String("correlationID", correlationID))
	return nil
}

// AttachClient is called by cmd/flowls once the jsonrpc2 connection
// hands back the bound protocol.Client.
func (s *Server) AttachClient(client protocol.Client) {
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
}

// SetTrace is accepted per spec.md §6 but the core has no trace levels
// of its own to adjust.
func (s *Server) SetTrace(ctx context.Context, params *protocol.SetTraceParams) error {
	return nil
}

// DidOpen routes textDocument/didOpen to whichever service's file kind
// claims the URI; a URI neither service matches (e.g. an unrelated file
// under the workspace root) is silently ignored, matching spec.md §7's
// "degrade gracefully" posture for requests, extended here to
// notifications about files outside either DSL's scope.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if svc := s.serviceFor(uri); svc != nil {
		svc.DidOpen(uri, []byte(params.TextDocument.Text))
	}
	return nil
}

// DidChange routes textDocument/didChange. Per spec.md §6's incremental
// text sync capability wire-up, go.lsp.dev/protocol still reports
// ContentChanges as whole-document replacements under
// TextDocumentSyncKindFull (server.go advertises Full); this takes the
// last entry the same way rlch/scaf's DidChange does for a full-sync
// client.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if len(params.ContentChanges) == 0 {
		return nil
	}
	if svc := s.serviceFor(uri); svc != nil {
		text := params.ContentChanges[len(params.ContentChanges)-1].Text
		svc.DidChange(uri, []byte(text))
	}
	return nil
}

// DidClose routes textDocument/didClose.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if svc := s.serviceFor(uri); svc != nil {
		svc.DidClose(uri)
	}
	return nil
}

// DidSave routes textDocument/didSave to the file's workspace.Service,
// which re-analyzes at once instead of waiting out the debounce delay.
func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if svc := s.serviceFor(uri); svc != nil {
		svc.DidSave(uri)
	}
	return nil
}

// DidChangeWatchedFiles handles out-of-editor file-system changes
// (spec.md §6). A file that isn't currently open has no cache entry to
// invalidate; watched changes to files the editor has open arrive as
// didChange instead, so this is a no-op beyond logging — matching
// spec.md §5's ordering note that each notification only needs to touch
// the file cache in constant time.
func (s *Server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	s.zap.Debug("didChangeWatchedFiles", zap.Int("count", len(params.Changes)))
	return nil
}

// DidCreateFiles, DidDeleteFiles and DidRenameFiles are accepted per
// spec.md §6 but, like DidChangeWatchedFiles, only affect URIs the
// editor hasn't separately opened/closed through didOpen/didClose.
func (s *Server) DidCreateFiles(ctx context.Context, params *protocol.CreateFilesParams) error {
	return nil
}

func (s *Server) DidDeleteFiles(ctx context.Context, params *protocol.DeleteFilesParams) error {
	for _, f := range params.Files {
		uri := string(f.URI)
		if svc := s.serviceFor(uri); svc != nil {
			svc.DidClose(uri)
		}
	}
	return nil
}

func (s *Server) DidRenameFiles(ctx context.Context, params *protocol.RenameFilesParams) error {
	for _, f := range params.Files {
		oldURI := string(f.OldURI)
		if svc := s.serviceFor(oldURI); svc != nil {
			svc.DidClose(oldURI)
		}
	}
	return nil
}

// Completion answers textDocument/completion against the service
// matching the document's file kind.
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	uri := string(params.TextDocument.URI)
	svc := s.serviceFor(uri)
	if svc == nil {
		return &protocol.CompletionList{}, nil
	}
	return providers.Completion(ctx, svc, uri, params.Position), nil
}

// Definition answers textDocument/definition.
func (s *Server) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	uri := string(params.TextDocument.URI)
	svc := s.serviceFor(uri)
	if svc == nil {
		return nil, nil
	}
	return providers.Definition(ctx, svc, uri, params.Position), nil
}

// References answers textDocument/references.
func (s *Server) References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := string(params.TextDocument.URI)
	svc := s.serviceFor(uri)
	if svc == nil {
		return nil, nil
	}
	includeDecl := params.Context != nil && params.Context.IncludeDeclaration
	return providers.References(ctx, svc, uri, params.Position, includeDecl), nil
}

// DocumentSymbol answers textDocument/documentSymbol.
func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	uri := string(params.TextDocument.URI)
	svc := s.serviceFor(uri)
	if svc == nil {
		return nil, nil
	}
	syms := providers.DocumentSymbols(ctx, svc, uri)
	out := make([]interface{}, len(syms))
	for i, sym := range syms {
		out[i] = sym
	}
	return out, nil
}

// Symbol answers workspace/symbol, scanning both file kinds' caches.
func (s *Server) Symbol(ctx context.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	return providers.WorkspaceSymbols(ctx, params.Query, s.scripts, s.configs), nil
}

// Hover answers textDocument/hover.
func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := string(params.TextDocument.URI)
	svc := s.serviceFor(uri)
	if svc == nil {
		return nil, nil
	}
	return providers.Hover(ctx, svc, uri, params.Position), nil
}

// Formatting answers textDocument/formatting, honoring the
// harshilAlignment/maheshForm options from the latest
// didChangeConfiguration.
func (s *Server) Formatting(ctx context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	uri := string(params.TextDocument.URI)
	svc := s.serviceFor(uri)
	if svc == nil {
		return nil, nil
	}
	s.mu.Lock()
	opts := s.options.formattingOptions()
	s.mu.Unlock()
	return providers.Formatting(ctx, svc, uri, opts), nil
}

// DocumentLink answers textDocument/documentLink.
func (s *Server) DocumentLink(ctx context.Context, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	uri := string(params.TextDocument.URI)
	svc := s.serviceFor(uri)
	if svc == nil {
		return nil, nil
	}
	return providers.DocumentLinks(ctx, svc, uri), nil
}

// SemanticTokensFull answers textDocument/semanticTokens/full.
func (s *Server) SemanticTokensFull(ctx context.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	uri := string(params.TextDocument.URI)
	svc := s.serviceFor(uri)
	if svc == nil {
		return nil, nil
	}
	return providers.SemanticTokens(ctx, svc, uri), nil
}

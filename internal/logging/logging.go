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

// Package logging wires the two logging surfaces spec.md §5 calls for:
// a process-wide zap logger for operational/local logging, and a
// client-visible sink that turns LogMessage/ShowMessage calls into LSP
// notifications once a client connection exists.
//
// spec.md §5 describes the logger as "a process-wide singleton holding
// the client reference, initialized once on connect"; per §9's
// "Singletons -> explicit state" design note, this is modeled as a
// value threaded explicitly into internal/workspace.Service and
// internal/lspserver.Server, not a package-level global.
//
// Grounded on the scaf language server's Server, which takes a
// *zap.Logger at construction and logs around every document-state
// transition (_examples/other_examples/.../lsp-server.go.go), and on
// internal/lsp/server/server.go's debugLog/eventuallyShowMessage
// pattern for the client-visible half.
package logging

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// New builds the process-local zap logger. debug raises the level to
// Debug (spec.md §6's `debug` option); otherwise only Info and above
// are emitted, matching internal/lsp/server/options.go's verbosity
// gating.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// ClientSink forwards LogMessage/ShowMessage calls to the connected LSP
// client once one exists, and buffers anything logged before then
// (spec.md's supplemented "pending-message buffering before
// initialized", grounded on
// internal/lsp/server/server.go's eventuallyShowMessage).
type ClientSink struct {
	zap *zap.Logger

	mu      sync.Mutex
	client  protocol.Client
	pending []func(context.Context, protocol.Client)
}

// NewClientSink returns a sink with no client attached yet; every call
// made before Attach is buffered.
func NewClientSink(zl *zap.Logger) *ClientSink {
	return &ClientSink{zap: zl}
}

// Attach connects client and flushes any buffered messages in order.
func (s *ClientSink) Attach(ctx context.Context, client protocol.Client) {
	s.mu.Lock()
	s.client = client
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, fn := range pending {
		fn(ctx, client)
	}
}

func (s *ClientSink) dispatch(ctx context.Context, fn func(context.Context, protocol.Client)) {
	s.mu.Lock()
	client := s.client
	if client == nil {
		s.pending = append(s.pending, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn(ctx, client)
}

// Log sends an informational LogMessage to the client (spec.md §7
// "Logging uses LogMessage (Log/Info/Error)").
func (s *ClientSink) Log(ctx context.Context, message string) {
	s.zap.Info(message)
	s.dispatch(ctx, func(ctx context.Context, c protocol.Client) {
		_ = c.LogMessage(ctx, &protocol.LogMessageParams{Type: protocol.MessageTypeLog, Message: message})
	})
}

// Info sends an informational LogMessage to the client.
func (s *ClientSink) Info(ctx context.Context, message string) {
	s.zap.Info(message)
	s.dispatch(ctx, func(ctx context.Context, c protocol.Client) {
		_ = c.LogMessage(ctx, &protocol.LogMessageParams{Type: protocol.MessageTypeInfo, Message: message})
	})
}

// Error sends an error-level LogMessage to the client and records it
// locally at error level.
func (s *ClientSink) Error(ctx context.Context, message string, fields ...zap.Field) {
	s.zap.Error(message, fields...)
	s.dispatch(ctx, func(ctx context.Context, c protocol.Client) {
		_ = c.LogMessage(ctx, &protocol.LogMessageParams{Type: protocol.MessageTypeError, Message: message})
	})
}

// ShowMessage surfaces a user-visible notification via the client's
// window/showMessage (spec.md §7 "ShowMessage for surfaced errors").
func (s *ClientSink) ShowMessage(ctx context.Context, typ protocol.MessageType, message string) {
	s.dispatch(ctx, func(ctx context.Context, c protocol.Client) {
		_ = c.ShowMessage(ctx, &protocol.ShowMessageParams{Type: typ, Message: message})
	})
}

// NewCorrelationID mints a fresh v4 UUID for tagging the log lines
// around one workspace-wide re-analysis pass (spec.md §5
// "didChangeConfiguration ... re-validate every open document"), so the
// handful of log entries one configuration change fans out into can be
// grepped back together.
func NewCorrelationID() string {
	return uuid.New().String()
}

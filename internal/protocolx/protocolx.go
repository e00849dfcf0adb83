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

// Package protocolx holds the thin, shared conversions between this
// module's own position/diagnostic shapes (internal/token,
// internal/phase) and the wire types of go.lsp.dev/protocol, so the
// rest of the core (internal/analysiscache, internal/workspace,
// internal/providers) never has to repeat URI<->path juggling or
// line/column arithmetic.
//
// Grounded on the scaf language server's URIToPath helper and its
// server.go's ad hoc Diagnostic construction
// (_examples/other_examples/.../lsp-server.go.go), generalized into one
// place the way internal/lsp/protocol's edits.go centralizes span
// conversions for the teacher.
package protocolx

import (
	"net/url"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/flowdsl/flowls/internal/phase"
	"github.com/flowdsl/flowls/internal/token"
)

// URIToPath converts a file:// URI into a plain filesystem path. Any
// URI without a "file" scheme is returned unchanged, so callers that
// address in-memory-only documents (no disk backing) keep working.
func URIToPath(uri protocol.DocumentURI) string {
	s := string(uri)
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "file" {
		return s
	}
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	return p
}

// PathToURI converts a plain filesystem path into a file:// URI.
func PathToURI(path string) protocol.DocumentURI {
	if strings.Contains(path, "://") {
		return protocol.DocumentURI(path)
	}
	u := url.URL{Scheme: "file", Path: path}
	return protocol.DocumentURI(u.String())
}

// Position converts a token.Position (1-based line/column) into the
// LSP wire Position (0-based line/character).
func Position(p token.Position) protocol.Position {
	if !p.IsValid() {
		return protocol.Position{}
	}
	return protocol.Position{
		Line:      uint32(p.Line - 1),
		Character: uint32(p.Column - 1),
	}
}

// Range converts a token.Range into the LSP wire Range.
func Range(r token.Range) protocol.Range {
	return protocol.Range{Start: Position(r.Start), End: Position(r.End)}
}

// Offset converts an LSP wire Position back into byte/line/column terms
// via f, returning -1 if the position falls outside f.
func Offset(f *token.File, pos protocol.Position) int {
	return f.Offset(int(pos.Line)+1, int(pos.Character)+1)
}

// severityTable maps phase.Severity onto the LSP wire enum, which is
// numerically identical by construction (internal/phase.Severity was
// defined to match protocol.DiagnosticSeverity's ordinals) but kept as
// an explicit table rather than a bare numeric cast so each severity is
// mapped by name and a reordering of either enum does not shift it.
var severityTable = map[phase.Severity]protocol.DiagnosticSeverity{
	phase.SeverityError:       protocol.DiagnosticSeverityError,
	phase.SeverityWarning:     protocol.DiagnosticSeverityWarning,
	phase.SeverityInformation: protocol.DiagnosticSeverityInformation,
	phase.SeverityHint:        protocol.DiagnosticSeverityHint,
}

// Diagnostic converts one phase.Diagnostic into its LSP wire form.
func Diagnostic(d phase.Diagnostic) protocol.Diagnostic {
	src := "flowls"
	return protocol.Diagnostic{
		Range:    Range(d.Range),
		Severity: severityTable[d.Severity],
		Source:   src,
		Message:  d.Message,
		Code:     d.Code,
	}
}

// Diagnostics converts a whole diagnostic slice, preserving order.
func Diagnostics(ds []phase.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, len(ds))
	for i, d := range ds {
		out[i] = Diagnostic(d)
	}
	return out
}

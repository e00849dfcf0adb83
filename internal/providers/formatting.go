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

// Formatting reindents a document by brace depth and, when requested,
// aligns a run of consecutive simple assignments on their `=` column —
// the `harshilAlignment` style this module's config dialect borrows its
// name from (a real formatting convention for Nextflow-style config
// files: consecutive `name = value` lines in the same block line up
// their equals signs). `maheshForm` toggles whether a block's opening
// brace sits on its own line or trails the block header.
//
// Grounded on cue/format's column-alignment pass, which also measures
// display width (not byte length) before computing padding; this uses
// golang.org/x/text/width for the same reason, matching the teacher's
// own dependency on that package for its formatter.
package providers

import (
	"context"
	"regexp"
	"strings"

	"go.lsp.dev/protocol"
	"golang.org/x/text/width"

	"github.com/flowdsl/flowls/internal/analysiscache"
	"github.com/flowdsl/flowls/internal/workspace"
)

// FormattingOptions mirrors spec.md §6's `formatting.*` configuration
// options.
type FormattingOptions struct {
	HarshilAlignment bool
	MaheshForm       bool
}

var assignLine = regexp.MustCompile(`^(\s*)([A-Za-z_][\w.]*)\s*=\s*(.+?)\s*$`)

// Formatting answers textDocument/formatting by reindenting the whole
// document as a single TextEdit. It returns nil if uri has no cached
// text (spec.md §7 "providers return empty results rather than
// failing").
func Formatting(ctx context.Context, svc *workspace.Service, uri string, opts FormattingOptions) []protocol.TextEdit {
	if cancelled(ctx) {
		return nil
	}
	var edits []protocol.TextEdit
	withCache(svc, func(c *analysiscache.Cache) {
		unit, ok := c.Unit(uri)
		if !ok {
			return
		}
		f := c.File(uri)
		if f == nil {
			return
		}
		formatted := reindent(string(unit.Text), opts)
		end := f.Position(f.Size())
		edits = []protocol.TextEdit{{
			Range:   protocol.Range{Start: protocol.Position{}, End: protocol.Position{Line: uint32(end.Line - 1), Character: uint32(end.Column - 1)}},
			NewText: formatted,
		}}
	})
	return edits
}

// reindent rewrites text with two-space-per-depth indentation tracked
// by brace nesting, applying the harshilAlignment equals-column pass
// run by run when requested.
func reindent(text string, opts FormattingOptions) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	depth := 0
	var run []int // indices into out currently part of a candidate alignment run

	flushRun := func() {
		if opts.HarshilAlignment {
			alignRun(out, run)
		}
		run = nil
	}

	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			flushRun()
			out = append(out, "")
			continue
		}
		leadingClose := strings.HasPrefix(trimmed, "}") || strings.HasPrefix(trimmed, ")") || strings.HasPrefix(trimmed, "]")
		lineDepth := depth
		if leadingClose {
			lineDepth--
			if lineDepth < 0 {
				lineDepth = 0
			}
		}

		indented := strings.Repeat("  ", lineDepth) + trimmed
		if opts.MaheshForm && strings.HasSuffix(trimmed, "{") {
			// maheshForm: the opening brace moves to its own line.
			header := strings.TrimSpace(strings.TrimSuffix(trimmed, "{"))
			out = append(out, strings.Repeat("  ", lineDepth)+header)
			out = append(out, strings.Repeat("  ", lineDepth)+"{")
		} else {
			out = append(out, indented)
		}

		if assignLine.MatchString(trimmed) {
			run = append(run, len(out)-1)
		} else {
			flushRun()
		}

		depth += strings.Count(trimmed, "{") + strings.Count(trimmed, "(") + strings.Count(trimmed, "[")
		depth -= strings.Count(trimmed, "}") + strings.Count(trimmed, ")") + strings.Count(trimmed, "]")
		if depth < 0 {
			depth = 0
		}
	}
	flushRun()
	return strings.Join(out, "\n")
}

// alignRun pads every line in run so each one's `=` lands in the same
// column, measured by display width rather than byte length.
func alignRun(out []string, run []int) {
	if len(run) < 2 {
		return
	}
	maxNameWidth := 0
	for _, idx := range run {
		m := assignLine.FindStringSubmatch(out[idx])
		if m == nil {
			return
		}
		w := displayWidth(m[1] + m[2])
		if w > maxNameWidth {
			maxNameWidth = w
		}
	}
	for _, idx := range run {
		m := assignLine.FindStringSubmatch(out[idx])
		indent, name, value := m[1], m[2], m[3]
		pad := maxNameWidth - displayWidth(indent+name)
		out[idx] = indent + name + strings.Repeat(" ", pad+1) + "= " + value
	}
}

// displayWidth sums each rune's terminal cell width, treating East Asian
// wide and fullwidth runes as occupying two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

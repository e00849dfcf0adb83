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

package lspserver

import "github.com/flowdsl/flowls/internal/providers"

// Options mirrors spec.md §6's `didChangeConfiguration` settings,
// grounded on internal/lsp/server/options.go's flat Options struct
// populated from the client's workspace/configuration payload.
type Options struct {
	Debug                  bool
	FormattingHarshil      bool
	FormattingMaheshForm   bool
	TypeChecking           bool
	SuppressFutureWarnings bool
	FilesExclude           []string

	// PathAliases holds the "path-specific aliases" spec.md §6
	// mentions without naming a shape: a map of alias prefix to real
	// path prefix, decoded from the client's `pathAliases` object. It
	// is stored here only; include resolution does not read it.
	PathAliases map[string]string
}

// DefaultOptions matches what a client that never sends
// didChangeConfiguration should still get: type checking and plain
// (unaligned) formatting on, nothing suppressed.
func DefaultOptions() Options {
	return Options{TypeChecking: true}
}

func (o Options) formattingOptions() providers.FormattingOptions {
	return providers.FormattingOptions{HarshilAlignment: o.FormattingHarshil, MaheshForm: o.FormattingMaheshForm}
}

// parseOptions decodes the arbitrary JSON settings object LSP clients
// send with didChangeConfiguration. Unknown/missing keys keep their
// current value rather than resetting to zero, so a client that only
// changes one setting doesn't clobber the rest.
func parseOptions(current Options, raw map[string]any) Options {
	out := current
	if v, ok := raw["debug"].(bool); ok {
		out.Debug = v
	}
	if v, ok := raw["typeChecking"].(bool); ok {
		out.TypeChecking = v
	}
	if v, ok := raw["suppressFutureWarnings"].(bool); ok {
		out.SuppressFutureWarnings = v
	}
	if formatting, ok := raw["formatting"].(map[string]any); ok {
		if v, ok := formatting["harshilAlignment"].(bool); ok {
			out.FormattingHarshil = v
		}
		if v, ok := formatting["maheshForm"].(bool); ok {
			out.FormattingMaheshForm = v
		}
	}
	if files, ok := raw["files"].(map[string]any); ok {
		if list, ok := files["exclude"].([]any); ok {
			excl := make([]string, 0, len(list))
			for _, e := range list {
				if s, ok := e.(string); ok {
					excl = append(excl, s)
				}
			}
			out.FilesExclude = excl
		}
	}
	if aliases, ok := raw["pathAliases"].(map[string]any); ok {
		out.PathAliases = make(map[string]string, len(aliases))
		for k, v := range aliases {
			if s, ok := v.(string); ok {
				out.PathAliases[k] = s
			}
		}
	}
	return out
}

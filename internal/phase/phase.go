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

// Package phase implements the compiler phase registry and the flat
// diagnostic taxonomy shared by every analysis stage (spec.md §4.3
// "Phase registry", §7 "Error handling design").
//
// Grounded on cue/errors.Error: a flat error-as-data value carrying a
// position and message rather than a Go error chain, so diagnostics
// survive being collected, sorted, and compared across incremental
// passes (see internal/errorlist.List in the teacher, whose shape this
// mirrors with a fixed Phase/Severity/Kind added per spec.md §7).
package phase

import "github.com/flowdsl/flowls/internal/token"

// Phase is the ordinal compiler stage that produced a diagnostic
// (spec.md §2 "phases"). Diagnostics from phase N are tagged with a
// phase <= N, honoring the pinned invariant in spec.md §3.
type Phase int

const (
	Syntax Phase = iota
	IncludeResolution
	NameResolution
	Schema
	TypeChecking
)

func (p Phase) String() string {
	switch p {
	case Syntax:
		return "SYNTAX"
	case IncludeResolution:
		return "INCLUDE_RESOLUTION"
	case NameResolution:
		return "NAME_RESOLUTION"
	case Schema:
		return "SCHEMA"
	case TypeChecking:
		return "TYPE_CHECKING"
	default:
		return "UNKNOWN"
	}
}

// Severity is the diagnostic severity surfaced to the client, matching
// the LSP DiagnosticSeverity ordinals (spec.md §6 "Diagnostic format").
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Kind is the taxonomy bucket a diagnostic's underlying error kind
// belongs to (spec.md §7 "Error taxonomy").
type Kind string

const (
	KindSyntax            Kind = "Syntax"
	KindIncludeResolution Kind = "IncludeResolution"
	KindNameResolution    Kind = "NameResolution"
	KindSchema            Kind = "Schema"
	KindType              Kind = "Type"
)

// Diagnostic is one analysis finding (spec.md §6 "per-URI list of
// {range, severity, message, phase}").
type Diagnostic struct {
	Range    token.Range
	Severity Severity
	Message  string
	Phase    Phase
	Kind     Kind
	// Code is the specific named error/warning, e.g. "UnusedVariable",
	// "UnknownConfigOption" (spec.md §4.3/§4.4's named error lists).
	Code string
}

// severityForKind implements spec.md §6's base mapping before the
// future-warning/suppression override in Builder.Future is applied:
// "syntax and name errors -> Error; type errors -> Error (except schema
// warnings -> Warning); deprecation/style -> Warning". strictSchema
// promotes a Schema finding to Error (spec.md §7 "surfaced as warnings
// unless strict mode").
func severityForKind(kind Kind, isWarningCode, strictSchema bool) Severity {
	switch kind {
	case KindSyntax, KindNameResolution:
		if isWarningCode {
			return SeverityWarning
		}
		return SeverityError
	case KindSchema:
		if strictSchema {
			return SeverityError
		}
		return SeverityWarning
	case KindType:
		if isWarningCode {
			return SeverityWarning
		}
		return SeverityError
	case KindIncludeResolution:
		return SeverityError
	default:
		return SeverityError
	}
}

// Builder accumulates diagnostics for one source unit, applying the
// severity mapping and the suppressFutureWarnings override (spec.md §6:
// "'future' warnings -> Information if suppressFutureWarnings is set,
// else Warning").
type Builder struct {
	SuppressFutureWarnings bool

	// StrictSchema escalates Schema-kind findings (e.g.
	// UnknownConfigOption) to Error; set from the config validator's
	// ConfigOptions.Strict for the unit currently being validated.
	StrictSchema bool

	diags []Diagnostic
}

// warningCodes lists every named *warning* code from spec.md §4.3/§4.4
// so Report can compute the base severity without a call-site flag.
var warningCodes = map[string]bool{
	"Deprecated":                true,
	"UnusedVariable":            true,
	"ImplicitItInClosure":       true,
	"ArgsOutsideEntry":          true,
	"ParamsOutsideEntry":        true,
	"ExternalMutationInClosure": true,
	"UnknownConfigOption":       true,
	"DeterminismWarning":        true,
}

// futureWarningCodes lists the codes treated as "future" warnings:
// ExternalMutationInClosure (possible race condition) and Deprecated
// (deprecated feature flags and deprecated built-in reads).
var futureWarningCodes = map[string]bool{
	"ExternalMutationInClosure": true,
	"Deprecated":                true,
}

// Report appends a diagnostic with the given phase/kind/code/message at
// rng, computing its severity from the taxonomy and the future-warning
// override.
func (b *Builder) Report(ph Phase, kind Kind, code string, rng token.Range, message string) {
	sev := severityForKind(kind, warningCodes[code], b.StrictSchema)
	if futureWarningCodes[code] {
		if b.SuppressFutureWarnings {
			sev = SeverityInformation
		} else {
			sev = SeverityWarning
		}
	}
	b.diags = append(b.diags, Diagnostic{
		Range:    rng,
		Severity: sev,
		Message:  message,
		Phase:    ph,
		Kind:     kind,
		Code:     code,
	})
}

// Diagnostics returns every diagnostic reported so far, in report order.
func (b *Builder) Diagnostics() []Diagnostic { return b.diags }

// Reset clears b for reuse across an incremental re-analysis pass.
func (b *Builder) Reset() { b.diags = b.diags[:0] }

// ClearPhase drops every previously reported diagnostic tagged exactly
// ph, leaving every other phase's diagnostics untouched. The AST-node
// cache calls this before re-running one phase over a unit whose text
// did not change but whose upstream inputs did (e.g. an include
// target), so re-running that phase alone never duplicates its own
// prior findings (spec.md §4.6 "update... diagnostic diff").
func (b *Builder) ClearPhase(ph Phase) {
	kept := b.diags[:0]
	for _, d := range b.diags {
		if d.Phase != ph {
			kept = append(kept, d)
		}
	}
	b.diags = kept
}

// ClearFrom drops every diagnostic from ph onward, keeping earlier
// phases' diagnostics intact.
func (b *Builder) ClearFrom(ph Phase) {
	kept := b.diags[:0]
	for _, d := range b.diags {
		if d.Phase < ph {
			kept = append(kept, d)
		}
	}
	b.diags = kept
}

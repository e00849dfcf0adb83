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

package parser

import (
	"fmt"

	"github.com/flowdsl/flowls/internal/token"
)

// SyntaxError is one malformed-input finding from the parser or
// scanner, with a line/column range (spec.md §4.1 "collects all syntax
// errors (with line/column ranges)").
type SyntaxError struct {
	Range   token.Range
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Range, e.Message)
}

// errorList accumulates SyntaxErrors during a single parse, grounded on
// cue/errors.List's append-only collection (used instead of failing
// fast, so the driver always gets every error in one pass).
type errorList struct {
	errs []*SyntaxError
}

func (l *errorList) add(rng token.Range, format string, args ...interface{}) {
	l.errs = append(l.errs, &SyntaxError{Range: rng, Message: fmt.Sprintf(format, args...)})
}

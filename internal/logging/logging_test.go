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

package logging

import (
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/uuid"
)

// TestNewCorrelationIDIsUniqueAndParses exercises the correlation-id
// helper used to tag one didChangeConfiguration re-analysis pass's log
// lines: each call must mint a distinct, well-formed UUID.
func TestNewCorrelationIDIsUniqueAndParses(t *testing.T) {
	a := NewCorrelationID()
	b := NewCorrelationID()
	qt.Assert(t, qt.Not(qt.Equals(a, b)))

	_, err := uuid.Parse(a)
	qt.Assert(t, qt.IsNil(err))
}

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

package lexer

import (
	"testing"

	"github.com/go-quicktest/qt"
)

type tokTest struct {
	kind Kind
	lit  string
}

func scanAll(t *testing.T, src string) []tokTest {
	t.Helper()
	var s Scanner
	var errs []string
	s.Init([]byte(src), func(offset int, msg string) {
		errs = append(errs, msg)
	})
	var got []tokTest
	for {
		_, kind, lit := s.Scan()
		if kind == EOF {
			break
		}
		got = append(got, tokTest{kind, lit})
	}
	qt.Assert(t, qt.HasLen(errs, 0))
	return got
}

func TestScanIdentsAndKeywords(t *testing.T) {
	got := scanAll(t, "process foo workflow bar function")
	want := []tokTest{
		{KW_PROCESS, "process"},
		{IDENT, "foo"},
		{KW_WORKFLOW, "workflow"},
		{IDENT, "bar"},
		{KW_FUNCTION, "function"},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestScanNumbersDurationsAndMemory(t *testing.T) {
	got := scanAll(t, "4 3.5 2h 500ms 500MB")
	want := []tokTest{
		{INT, "4"},
		{FLOAT, "3.5"},
		{DURATION, "2h"},
		{DURATION, "500ms"},
		{MEMORYUNIT, "500MB"},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestScanDurationBacksOffNonUnitSuffix(t *testing.T) {
	got := scanAll(t, "10to 20")
	want := []tokTest{
		{INT, "10"},
		{IDENT, "to"},
		{INT, "20"},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestScanStrings(t *testing.T) {
	got := scanAll(t, `'single' "double" "escaped \" quote"`)
	want := []tokTest{
		{STRING, `'single'`},
		{STRING, `"double"`},
		{STRING, `"escaped \" quote"`},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestScanTripleQuoted(t *testing.T) {
	src := "\"\"\"\n  echo hello\n  echo \\\"nested\\\"\n\"\"\""
	got := scanAll(t, src)
	qt.Assert(t, qt.HasLen(got, 1))
	qt.Assert(t, qt.Equals(got[0].kind, STRING))
	qt.Assert(t, qt.Equals(got[0].lit, src))
}

func TestScanOperatorsAndDelimiters(t *testing.T) {
	got := scanAll(t, "-> ?: ?. .. ..< == != <= >= && || ++ -- += -=")
	want := []tokTest{
		{ARROW, "->"},
		{ELVIS, "?:"},
		{QUESTION, "?"},
		{DOT, "."},
		{DOTDOT, ".."},
		{DOTDOTLT, "..<"},
		{EQ, "=="},
		{NEQ, "!="},
		{LTE, "<="},
		{GTE, ">="},
		{AND, "&&"},
		{OR, "||"},
		{INC, "++"},
		{DEC, "--"},
		{PLUSASSIGN, "+="},
		{MINUSASSIGN, "-="},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestScanCommentsAreSkipped(t *testing.T) {
	got := scanAll(t, "foo // a line comment\nbar /* block */ baz")
	want := []tokTest{
		{IDENT, "foo"},
		{IDENT, "bar"},
		{IDENT, "baz"},
	}
	qt.Assert(t, qt.DeepEquals(got, want))
}

func TestPendingDoc(t *testing.T) {
	var s Scanner
	s.Init([]byte("// computes the square\n// of x\nfunction square"), func(int, string) {})
	_, kind, _ := s.Scan()
	qt.Assert(t, qt.Equals(kind, KW_FUNCTION))
	doc := s.PendingDoc()
	qt.Assert(t, qt.Equals(doc, "// computes the square\n// of x"))
}

func TestPendingDocDropsBlockSeparatedByBlankLine(t *testing.T) {
	var s Scanner
	s.Init([]byte("// stale doc\n\n// fresh doc\nfunction square"), func(int, string) {})
	_, kind, _ := s.Scan()
	qt.Assert(t, qt.Equals(kind, KW_FUNCTION))
	qt.Assert(t, qt.Equals(s.PendingDoc(), "// fresh doc"))
}

func TestIllegalCharacterReported(t *testing.T) {
	var s Scanner
	var gotErr bool
	s.Init([]byte("foo # bar"), func(offset int, msg string) {
		gotErr = true
	})
	for {
		_, kind, _ := s.Scan()
		if kind == EOF {
			break
		}
	}
	qt.Assert(t, qt.IsTrue(gotErr))
}

func TestKindStringAndIsKeyword(t *testing.T) {
	qt.Assert(t, qt.Equals(KW_PROCESS.String(), "process"))
	qt.Assert(t, qt.IsTrue(KW_PROCESS.IsKeyword()))
	qt.Assert(t, qt.IsFalse(IDENT.IsKeyword()))
	qt.Assert(t, qt.Equals(Lookup("workflow"), KW_WORKFLOW))
	qt.Assert(t, qt.Equals(Lookup("notakeyword"), IDENT))
}

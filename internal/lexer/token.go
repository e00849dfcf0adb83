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

// Package lexer tokenizes DSL source text for both script and config
// file kinds (spec.md §4.1's `parse(text) -> (ast, syntax_errors)`
// contract starts here). Grounded on cue/scanner's hand-written
// character-class scanner (a single Scan method driving a switch over
// rune classes, rather than a generated lexer), since no ready-made
// grammar exists in the pack for this DSL (see DESIGN.md).
package lexer

// Kind enumerates every token kind the scanner can produce.
type Kind int

const (
	EOF Kind = iota
	ILLEGAL
	IDENT
	INT
	FLOAT
	STRING
	DURATION   // e.g. 2h, 500ms
	MEMORYUNIT // e.g. 2GB, 500MB

	// delimiters
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACK
	RBRACK
	COMMA
	SEMI
	COLON
	DOT
	DOTDOT
	DOTDOTLT // ..<
	ARROW    // ->
	QUESTION
	ELVIS // ?:
	AT

	// operators
	ASSIGN
	PLUSASSIGN
	MINUSASSIGN
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	EQ
	NEQ
	LT
	LTE
	GT
	GTE
	AND
	OR
	NOT
	INC
	DEC

	// keywords
	keywordBeg
	KW_INCLUDE
	KW_AS
	KW_PROCESS
	KW_WORKFLOW
	KW_FUNCTION
	KW_DEF
	KW_TAKE
	KW_EMIT
	KW_PUBLISH
	KW_IF
	KW_ELSE
	KW_FOR
	KW_IN
	KW_TRY
	KW_CATCH
	KW_FINALLY
	KW_RETURN
	KW_TRUE
	KW_FALSE
	KW_NULL
	KW_WHEN
	KW_STUB
	KW_EXEC
	KW_OUTPUT
	keywordEnd
)

var keywords = map[string]Kind{
	"include":  KW_INCLUDE,
	"as":       KW_AS,
	"process":  KW_PROCESS,
	"workflow": KW_WORKFLOW,
	"function": KW_FUNCTION,
	"def":      KW_DEF,
	"take":     KW_TAKE,
	"emit":     KW_EMIT,
	"publish":  KW_PUBLISH,
	"if":       KW_IF,
	"else":     KW_ELSE,
	"for":      KW_FOR,
	"in":       KW_IN,
	"try":      KW_TRY,
	"catch":    KW_CATCH,
	"finally":  KW_FINALLY,
	"return":   KW_RETURN,
	"true":     KW_TRUE,
	"false":    KW_FALSE,
	"null":     KW_NULL,
	"when":     KW_WHEN,
	"stub":     KW_STUB,
	"exec":     KW_EXEC,
	"output":   KW_OUTPUT,
}

// Lookup classifies ident as a keyword Kind, or IDENT if it is not one.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENT
}

func (k Kind) IsKeyword() bool { return k > keywordBeg && k < keywordEnd }

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

var kindNames = map[Kind]string{
	EOF: "EOF", ILLEGAL: "ILLEGAL", IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT",
	STRING: "STRING", DURATION: "DURATION", MEMORYUNIT: "MEMORYUNIT",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACK: "[", RBRACK: "]",
	COMMA: ",", SEMI: ";", COLON: ":", DOT: ".", DOTDOT: "..", DOTDOTLT: "..<",
	ARROW: "->", QUESTION: "?", ELVIS: "?:", AT: "@",
	ASSIGN: "=", PLUSASSIGN: "+=", MINUSASSIGN: "-=",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	EQ: "==", NEQ: "!=", LT: "<", LTE: "<=", GT: ">", GTE: ">=",
	AND: "&&", OR: "||", NOT: "!", INC: "++", DEC: "--",
}

func init() {
	for name, k := range keywords {
		kindNames[k] = name
	}
}

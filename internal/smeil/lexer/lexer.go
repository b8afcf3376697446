// Package lexer implements the tokenizer collaborator spec §1 draws outside
// the compiler's core: a source file in, a flat []token.Token out, so the
// grammar combinator engine (which matches purely on a token's Text, spec
// §4.1) never touches raw bytes. Grounded on the teacher's
// internal/ictiobus/lex "immediate" lexer (scan the whole input up front,
// fail fast on the first bad rune) rather than its lazy/stateful one, since
// the module loader always wants a complete token slice before handing it to
// grammar.ParseModule.
package lexer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dekarrin/smeilc/internal/smeil/token"
)

// operators is tried longest-first so e.g. "<=" is never split into "<"
// and "=". Matches the literal/kw() texts grammar's combinators expect
// (spec §6.1's delimiter set plus the 8 precedence groups' operators).
var operators = []string{
	"->", "==", "!=", "<=", ">=", "<<", ">>", "&&", "||",
	"(", ")", "{", "}", "[", "]", ":", ";", ",", ".", "=",
	"+", "-", "*", "%", "/", "\\", "|", "&", "^", "<", ">", "!", "~",
}

var (
	identRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*`)
	numberRe = regexp.MustCompile(`^(0[xX][0-9A-Fa-f]+|0[oO][0-7]+|[0-9]+\.[0-9]+|[0-9]+)`)
)

// Error is a lexical failure: an unrecognized character or an unterminated
// string literal. Line/Col are 1-indexed.
type Error struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// Tokenize scans src (the full contents of the file named path) into a flat
// token slice, skipping whitespace and "//" line comments (spec §6.1).
// Scanning stops at the first unrecognized rune or unterminated string;
// there is no panic-mode recovery, matching the teacher's ImmediatelyLex
// "stop, do not allow panic mode to continue" behavior.
func Tokenize(path, src string) ([]token.Token, error) {
	var toks []token.Token

	line := 1
	lineStart := 0 // byte offset in src of the start of the current line

	lines := strings.Split(src, "\n")
	lineOf := func(ln int) string {
		if ln-1 < len(lines) {
			return lines[ln-1]
		}
		return ""
	}

	i := 0
	for i < len(src) {
		c := src[i]

		if c == '\n' {
			i++
			line++
			lineStart = i
			continue
		}
		if c == ' ' || c == '\t' || c == '\r' {
			i++
			continue
		}
		if c == '/' && i+1 < len(src) && src[i+1] == '/' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			continue
		}

		col := i - lineStart + 1
		fullLine := lineOf(line)

		if c == '"' {
			end := i + 1
			for end < len(src) && src[end] != '"' {
				if src[end] < 0x20 {
					return nil, &Error{File: path, Line: line, Col: col, Msg: "control character in string literal"}
				}
				end++
			}
			if end >= len(src) {
				return nil, &Error{File: path, Line: line, Col: col, Msg: "unterminated string literal"}
			}
			text := src[i : end+1]
			toks = append(toks, token.New(text, token.NewClass("string"), i, line, col, fullLine))
			i = end + 1
			continue
		}

		if m := numberRe.FindString(src[i:]); m != "" {
			toks = append(toks, token.New(m, token.NewClass("number"), i, line, col, fullLine))
			i += len(m)
			continue
		}

		if m := identRe.FindString(src[i:]); m != "" {
			toks = append(toks, token.New(m, token.NewClass("ident"), i, line, col, fullLine))
			i += len(m)
			continue
		}

		matched := false
		for _, op := range operators {
			if strings.HasPrefix(src[i:], op) {
				toks = append(toks, token.New(op, token.NewClass("op"), i, line, col, fullLine))
				i += len(op)
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		return nil, &Error{File: path, Line: line, Col: col, Msg: fmt.Sprintf("unrecognized character %q", string(c))}
	}

	return toks, nil
}

// Package grammar builds the combinator tree for SMEIL's surface grammar
// (spec §6.1) and wires Mapper semantic actions producing ast nodes — the
// "BNF-to-AST mapping rules" of spec §1/§2.
package grammar

import (
	"strconv"
	"strings"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/combinator"
	"github.com/dekarrin/smeilc/internal/smeil/token"
)

// identPattern matches the identifier lexeme shape of spec §6.1.
const identPattern = `[A-Za-z_][A-Za-z0-9_\-]*`

var reservedWords = map[string]bool{
	"import": true, "from": true, "as": true, "type": true, "const": true,
	"enum": true, "function": true, "network": true, "proc": true,
	"clocked": true, "var": true, "bus": true, "instance": true, "of": true,
	"generate": true, "connect": true, "if": true, "elif": true, "else": true,
	"for": true, "to": true, "switch": true, "case": true, "default": true,
	"trace": true, "assert": true, "break": true, "true": true, "false": true,
	"bool": true, "int": true, "uint": true, "f32": true, "f64": true,
}

// ident matches a single identifier token that is not a reserved word.
func ident() combinator.Combinator {
	return combinator.Custom("identifier", func(text string) bool {
		if reservedWords[text] {
			return false
		}
		return identRegexFullMatch(text)
	})
}

func identRegexFullMatch(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if !(c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		ok := c == '_' || c == '-' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}

func kw(word string) combinator.Combinator { return combinator.Literal(word) }

// identMapper produces an (ast.Position, string) pair for a matched
// identifier token.
func identMapper() combinator.Combinator {
	return combinator.Mapper("ident", ident(), func(m *combinator.Match) identResult {
		return identResult{Pos: posOf(m.Start), Name: m.Start.Text()}
	})
}

type identResult struct {
	Pos  ast.Position
	Name string
}

func posOf(t token.Token) ast.Position {
	return ast.Position{Line: t.Line(), Col: t.LineOffset(), Tok: t}
}

// dottedNameCombinator matches `ident ( . ident )*` and produces the segments.
func dottedNameCombinator() combinator.Combinator {
	tail := combinator.Sequence(combinator.Composite("dotted-tail", kw("."), identMapper()))
	c := combinator.Composite("dotted-name", identMapper(), tail)
	return combinator.Mapper("dotted-name", c, func(m *combinator.Match) []string {
		first, _ := combinator.Invoke[identResult](m.Children[0])
		names := []string{first.Name}
		for _, rep := range m.Children[1].Children {
			r, _ := combinator.Invoke[identResult](rep.Children[1])
			names = append(names, r.Name)
		}
		return names
	})
}

// numberLiteral recognizes the integer/hex/octal/float forms of spec §6.1.
func numberLiteral() combinator.Combinator {
	pat := `0[xX][0-9A-Fa-f]+|0[oO][0-7]+|[0-9]+\.[0-9]+|[0-9]+`
	return combinator.Regex(pat)
}

func stringLiteral() combinator.Combinator {
	// tokenizer hands back the literal including its surrounding quotes, so
	// the reprint round-trip property of spec §8 holds verbatim.
	return combinator.Regex(`"[^"\x00-\x19]*"`)
}

// literalConstant matches any of the Constant variants of spec §3 and
// produces the *ast.Constant.
func literalConstant() combinator.Combinator {
	num := combinator.Mapper("number", numberLiteral(), func(m *combinator.Match) *ast.Constant {
		return constantFromNumberText(m.Start)
	})
	str := combinator.Mapper("string", stringLiteral(), func(m *combinator.Match) *ast.Constant {
		return &ast.Constant{Position: posOf(m.Start), Kind: ast.ConstString, Text: m.Start.Text()}
	})
	boolLit := combinator.Mapper("bool", combinator.Choice("bool-lit", kw("true"), kw("false")), func(m *combinator.Match) *ast.Constant {
		return &ast.Constant{Position: posOf(m.Start), Kind: ast.ConstBoolean, Text: m.Start.Text()}
	})
	special := combinator.Mapper("special-u", kw("U"), func(m *combinator.Match) *ast.Constant {
		return &ast.Constant{Position: posOf(m.Start), Kind: ast.ConstSpecialU, Text: "U"}
	})

	choice := combinator.Choice("constant", num, str, boolLit, special)
	return combinator.Mapper("constant", choice, func(m *combinator.Match) *ast.Constant {
		v, _ := combinator.Invoke[*ast.Constant](m)
		return v
	})
}

func constantFromNumberText(t token.Token) *ast.Constant {
	text := t.Text()
	pos := posOf(t)
	if strings.Contains(text, ".") {
		parts := strings.SplitN(text, ".", 2)
		maj, _ := strconv.ParseInt(parts[0], 10, 64)
		min, _ := strconv.ParseInt(parts[1], 10, 64)
		return &ast.Constant{Position: pos, Kind: ast.ConstFloating, Text: text, Major: maj, Minor: min}
	}
	return &ast.Constant{Position: pos, Kind: ast.ConstInteger, Text: text}
}

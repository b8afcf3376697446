// Package ast defines the abstract syntax tree produced by the grammar
// combinator engine (spec §3, §4.1). Nodes are created once during parsing
// and never mutated afterward; the elaborator and validator annotate the
// separate, mutable instance tree in package ir instead.
package ast

import "github.com/dekarrin/smeilc/internal/smeil/token"

// Position locates a node in its originating source file. Every AST node
// embeds one so diagnostics can always point back at source text.
type Position struct {
	File string
	Line int
	Col  int
	Tok  token.Token
}

// Pos returns p itself, satisfying the Node interface for types that embed
// Position directly.
func (p Position) Pos() Position { return p }

// Node is satisfied by every AST node.
type Node interface {
	Pos() Position
}

// Package token defines the lexeme representation consumed by the grammar
// combinator engine. Tokenization itself is out of scope here; this package
// only models the stream contract the tokenizer collaborator must satisfy.
package token

import "fmt"

// Class identifies the category of a Token, e.g. identifier, keyword,
// operator. Classes are compared by ID, not by pointer identity, so two
// classes constructed separately with the same ID are considered equal.
type Class interface {
	// ID uniquely identifies the class among all classes used by a grammar.
	ID() string

	// Human is a human-readable name for use in diagnostics.
	Human() string

	Equal(o any) bool
}

type simpleClass string

func (c simpleClass) ID() string    { return string(c) }
func (c simpleClass) Human() string { return string(c) }
func (c simpleClass) Equal(o any) bool {
	other, ok := o.(Class)
	if !ok {
		return false
	}
	return other.ID() == c.ID()
}

// NewClass returns a Class whose ID and human-readable name are both s.
func NewClass(s string) Class {
	return simpleClass(s)
}

const (
	// Undefined is the class of a Token that has not been assigned one.
	Undefined = simpleClass("UNDEFINED")

	// EndOfText is the sentinel class returned once a Stream is exhausted.
	EndOfText = simpleClass("EOF")
)

// Token is an immutable lexeme read from source text, combined with
// positional metadata used for error reporting. Tokens are never mutated
// once produced by the tokenizer collaborator.
type Token struct {
	text       string
	class      Class
	charOffset int
	line       int
	lineOffset int
	fullLine   string
}

// New constructs a Token. charOffset is the 0-indexed byte offset of the
// token's first character in the source text; line is 1-indexed; lineOffset
// is the 1-indexed character-of-line the token starts on.
func New(text string, class Class, charOffset, line, lineOffset int, fullLine string) Token {
	return Token{
		text:       text,
		class:      class,
		charOffset: charOffset,
		line:       line,
		lineOffset: lineOffset,
		fullLine:   fullLine,
	}
}

// Text is the exact source text that was lexed.
func (t Token) Text() string { return t.text }

// Class is the token class assigned by the tokenizer.
func (t Token) Class() Class { return t.class }

// CharOffset is the 0-indexed byte offset of the token in the source.
func (t Token) CharOffset() int { return t.charOffset }

// Line is the 1-indexed line number the token appears on.
func (t Token) Line() int { return t.line }

// LineOffset is the 1-indexed character-of-line the token starts at.
func (t Token) LineOffset() int { return t.lineOffset }

// FullLine is the complete source line the token appears on, used to render
// cursor diagnostics.
func (t Token) FullLine() string { return t.fullLine }

func (t Token) String() string {
	human := "?"
	if t.class != nil {
		human = t.class.Human()
	}
	return fmt.Sprintf("%s(%q)@%d:%d", human, t.text, t.line, t.lineOffset)
}

// EOF is the sentinel token returned by a Stream once exhausted. It carries
// no meaningful position.
func EOF() Token {
	return Token{text: "", class: EndOfText}
}

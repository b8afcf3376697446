package ast

// ConstKind distinguishes the Constant variants of spec §3.
type ConstKind int

const (
	ConstInteger ConstKind = iota
	ConstFloating
	ConstBoolean
	ConstString
	ConstArrayIndex
	ConstSpecialU // the special literal `U`, an unsized "don't care" constant
)

// Constant is a literal value as written in source. Text preserves the
// exact source spelling so the round-trip property of spec §8 holds
// ("reprint equals input").
type Constant struct {
	Position
	Kind ConstKind
	Text string // exact source text, e.g. "0xFF", "3.14", "true", "\"abc\""

	// Floating only: major/minor components of a decimal literal, e.g.
	// 3.14 -> Major=3, Minor=14.
	Major, Minor int64

	// ArrayIndex only: the sequence of constant element values.
	Elements []*Constant
}

func (c *Constant) String() string { return c.Text }

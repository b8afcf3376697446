package grammar

import (
	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/combinator"
)

// exprGrammar is mutually recursive with typeGrammar (type casts reference
// types; array type sizes reference expressions). Both grammars expose a
// combinator.Lazy placeholder for the other to reference before either is
// fully built (spec §9 "Recursive grammar fixpoints"); grammar.go wires them
// together and calls build() on both, then Set()s each placeholder.
type exprGrammar struct {
	selfRef *combinator.LazyRef // expr's own self-reference, for parens/unary/cast subexpressions
	typeRef *combinator.LazyRef // typeGrammar's placeholder, used by the cast form

	expr combinator.Combinator
}

func newExprGrammar(typeRef *combinator.LazyRef) *exprGrammar {
	return &exprGrammar{
		selfRef: combinator.Lazy("expr"),
		typeRef: typeRef,
	}
}

func (g *exprGrammar) Expr() combinator.Combinator { return g.expr }

// opLevels enumerates spec §4.1's 8 precedence groups, lowest first.
var opLevels = []combinator.OpLevel{
	{Name: "or-expr", Ops: []string{"||"}},
	{Name: "and-expr", Ops: []string{"&&"}},
	{Name: "bitwise-expr", Ops: []string{"&", "^", "|"}},
	{Name: "equality-expr", Ops: []string{"==", "!="}},
	{Name: "relational-expr", Ops: []string{"<=", ">=", "<", ">"}},
	{Name: "shift-expr", Ops: []string{"<<", ">>"}},
	{Name: "additive-expr", Ops: []string{"+", "-"}},
	{Name: "multiplicative-expr", Ops: []string{"*", "%"}},
}

var binOpByText = map[string]ast.BinOp{
	"||": ast.OpOr, "&&": ast.OpAnd, "&": ast.OpBitAnd, "^": ast.OpBitXor,
	"|": ast.OpBitOr, "==": ast.OpEq, "!=": ast.OpNeq, "<": ast.OpLt,
	">": ast.OpGt, "<=": ast.OpLte, ">=": ast.OpGte, "<<": ast.OpShl,
	">>": ast.OpShr, "+": ast.OpAdd, "-": ast.OpSub, "*": ast.OpMul, "%": ast.OpMod,
}

// build wires the full expression grammar. Must be called after typeRef's
// owner has been constructed (not necessarily built(), since only the Lazy
// placeholder is dereferenced at construction time here).
func (g *exprGrammar) build() {
	terminal := g.buildTerminal()
	chain := combinator.BuildPrecedenceChain(terminal, opLevels, func(left any, opText string, right any) any {
		l := left.(ast.Expression)
		r := right.(ast.Expression)
		return ast.Expression(&ast.BinaryExpr{
			Position: l.Pos(),
			Left:     l,
			Op:       binOpByText[opText],
			Right:    r,
		})
	})

	g.expr = combinator.Mapper("expr", chain, func(m *combinator.Match) ast.Expression {
		v, _ := combinator.Invoke[any](m)
		expr, _ := v.(ast.Expression)
		return expr
	})

	g.selfRef.Set(g.expr)
}

// buildTerminal builds L_top: literal, name, parenthesized, unary, type-cast.
func (g *exprGrammar) buildTerminal() combinator.Combinator {
	lit := combinator.Mapper("literal-expr", literalConstant(), func(m *combinator.Match) ast.Expression {
		v, _ := combinator.Invoke[*ast.Constant](m)
		return &ast.LiteralExpr{Position: posOf(m.Start), Value: v}
	})

	name := combinator.Mapper("name-expr", nameGrammar(g.selfRef), func(m *combinator.Match) ast.Expression {
		segs, _ := combinator.Invoke[[]ast.NameSegment](m)
		return &ast.NameExpr{Position: posOf(m.Start), Segments: segs}
	})

	fullExpr := g.selfRef.Combinator()

	// terminalRef is a same-level self-reference (not the full precedence
	// chain): a unary or cast operand binds only as tightly as another
	// terminal, so `-a + b` parses as `(-a) + b`, not `-(a + b)`. Only the
	// parenthesized form's inner content is the full expression, since
	// parens are an explicit grouping.
	terminalRef := combinator.Lazy("terminal-expr")

	paren := combinator.Composite("paren-expr", kw("("), fullExpr, kw(")"))
	parenMapper := combinator.Mapper("paren-expr", paren, func(m *combinator.Match) ast.Expression {
		v, _ := combinator.Invoke[ast.Expression](m.Children[1])
		return &ast.ParenExpr{Position: posOf(m.Start), Inner: v}
	})

	unaryOp := combinator.Choice("unary-op", kw("-"), kw("!"), kw("~"))
	unary := combinator.Composite("unary-expr", unaryOp, terminalRef.Combinator())
	unaryMapper := combinator.Mapper("unary-expr", unary, func(m *combinator.Match) ast.Expression {
		opText := m.Children[0].Start.Text()
		var op ast.UnOp
		switch opText {
		case "-":
			op = ast.OpNeg
		case "!":
			op = ast.OpNot
		case "~":
			op = ast.OpBitNot
		}
		v, _ := combinator.Invoke[ast.Expression](m.Children[1])
		return &ast.UnaryExpr{Position: posOf(m.Start), Op: op, Expr: v}
	})

	cast := combinator.Composite("cast-expr", kw("("), g.typeRef.Combinator(), kw(")"), terminalRef.Combinator())
	castMapper := combinator.Mapper("cast-expr", cast, func(m *combinator.Match) ast.Expression {
		t, _ := combinator.Invoke[ast.Type](m.Children[1])
		v, _ := combinator.Invoke[ast.Expression](m.Children[3])
		return &ast.TypeCastExpr{Position: posOf(m.Start), Expr: v, To: t}
	})

	terminal := combinator.Choice("terminal-expr", castMapper, unaryMapper, parenMapper, name, lit)
	terminalMapper := combinator.Mapper("terminal-expr", terminal, func(m *combinator.Match) ast.Expression {
		v, _ := combinator.Invoke[ast.Expression](m)
		return v
	})
	terminalRef.Set(terminalMapper)

	return terminalMapper
}

package grammar

import (
	"strings"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/combinator"
)

// stmtGrammar builds the Statement variants of spec §3: assignment, if/elif/
// else, for, switch, function-call, trace, assert, break. if/for/switch
// bodies recurse into the statement list itself, resolved with a Lazy
// placeholder (spec §9 "Recursive grammar fixpoints").
type stmtGrammar struct {
	exprs *exprGrammar
	decls *declGrammar

	selfRef *combinator.LazyRef // one statement
	stmt    combinator.Combinator
}

func newStmtGrammar(exprs *exprGrammar, decls *declGrammar) *stmtGrammar {
	return &stmtGrammar{exprs: exprs, decls: decls, selfRef: combinator.Lazy("stmt")}
}

// Stmt exposes the single-statement grammar, built by build().
func (g *stmtGrammar) Stmt() combinator.Combinator { return g.stmt }

func (g *stmtGrammar) build() {
	e := g.exprs.Expr()
	body := combinator.Sequence(g.selfRef.Combinator())

	name := combinator.Mapper("call-name", dottedNameCombinator(), func(m *combinator.Match) []string {
		v, _ := combinator.Invoke[[]string](m)
		return v
	})

	assign := combinator.Composite("assign-stmt", e, kw("="), e, kw(";"))
	assignMapper := combinator.Mapper("assign-stmt", assign, func(m *combinator.Match) ast.Statement {
		lhs, _ := combinator.Invoke[ast.Expression](m.Children[0])
		rhs, _ := combinator.Invoke[ast.Expression](m.Children[2])
		return &ast.AssignStmt{Position: lhs.Pos(), LHS: lhs, RHS: rhs}
	})

	elif := combinator.Composite("elif-clause", kw("elif"), e, kw("{"), body, kw("}"))
	elifMapper := combinator.Mapper("elif-clause", elif, func(m *combinator.Match) ast.ElseIf {
		cond, _ := combinator.Invoke[ast.Expression](m.Children[1])
		stmts := combinator.CollectEach[ast.Statement](m.Children[3])
		return ast.ElseIf{Cond: cond, Body: stmts}
	})
	elifs := combinator.Sequence(elifMapper)
	elseClause := combinator.Composite("else-clause", kw("else"), kw("{"), body, kw("}"))

	ifStmt := combinator.Composite("if-stmt", kw("if"), e, kw("{"), body, kw("}"),
		elifs, combinator.Optional(elseClause))
	ifMapper := combinator.Mapper("if-stmt", ifStmt, func(m *combinator.Match) ast.Statement {
		cond, _ := combinator.Invoke[ast.Expression](m.Children[1])
		thenBody := combinator.CollectEach[ast.Statement](m.Children[3])
		s := &ast.IfStmt{Position: posOf(m.Start), Cond: cond, Body: thenBody}
		s.ElseIfs = combinator.CollectEach[ast.ElseIf](m.Children[5])
		if optElse := m.Children[6]; len(optElse.Children) > 0 {
			s.Else = combinator.CollectEach[ast.Statement](optElse.Children[0].Children[2])
		}
		return s
	})

	forStmt := combinator.Composite("for-stmt", kw("for"), identMapper(), kw("="), e, kw("to"), e,
		kw("{"), body, kw("}"))
	forMapper := combinator.Mapper("for-stmt", forStmt, func(m *combinator.Match) ast.Statement {
		v, _ := combinator.Invoke[identResult](m.Children[1])
		from, _ := combinator.Invoke[ast.Expression](m.Children[3])
		to, _ := combinator.Invoke[ast.Expression](m.Children[5])
		stmts := combinator.CollectEach[ast.Statement](m.Children[7])
		return &ast.ForStmt{Position: v.Pos, Var: v.Name, From: from, To: to, Body: stmts}
	})

	caseClause := combinator.Composite("case-clause", kw("case"), e, kw("{"), body, kw("}"))
	caseMapper := combinator.Mapper("case-clause", caseClause, func(m *combinator.Match) ast.SwitchCase {
		v, _ := combinator.Invoke[ast.Expression](m.Children[1])
		stmts := combinator.CollectEach[ast.Statement](m.Children[3])
		return ast.SwitchCase{Value: v, Body: stmts}
	})
	defaultClause := combinator.Composite("default-clause", kw("default"), kw("{"), body, kw("}"))
	defaultMapper := combinator.Mapper("default-clause", defaultClause, func(m *combinator.Match) ast.SwitchCase {
		stmts := combinator.CollectEach[ast.Statement](m.Children[2])
		return ast.SwitchCase{Value: nil, Body: stmts}
	})
	cases := combinator.Sequence(caseMapper)

	switchStmt := combinator.Composite("switch-stmt", kw("switch"), e, kw("{"),
		cases, combinator.Optional(defaultMapper), kw("}"))
	switchMapper := combinator.Mapper("switch-stmt", switchStmt, func(m *combinator.Match) ast.Statement {
		v, _ := combinator.Invoke[ast.Expression](m.Children[1])
		s := &ast.SwitchStmt{Position: posOf(m.Start), Value: v}
		s.Cases = combinator.CollectEach[ast.SwitchCase](m.Children[3])
		if optDefault := m.Children[4]; len(optDefault.Children) > 0 {
			def, _ := combinator.Invoke[ast.SwitchCase](optDefault.Children[0])
			s.Cases = append(s.Cases, def)
		}
		return s
	})

	argList := commaSeparated[ast.Expression](e)
	call := combinator.Composite("call-stmt", name, kw("("), argList, kw(")"), kw(";"))
	callMapper := combinator.Mapper("call-stmt", call, func(m *combinator.Match) ast.Statement {
		n, _ := combinator.Invoke[[]string](m.Children[0])
		args, _ := combinator.Invoke[[]ast.Expression](m.Children[2])
		return &ast.FuncCallStmt{Position: posOf(m.Start), Name: n, Args: args}
	})

	trace := combinator.Composite("trace-stmt", kw("trace"), kw("("), stringLiteral(),
		combinator.Sequence(combinator.Composite("trace-arg", kw(","), e)), kw(")"), kw(";"))
	traceMapper := combinator.Mapper("trace-stmt", trace, func(m *combinator.Match) ast.Statement {
		format := strings.Trim(m.Children[2].Start.Text(), `"`)
		var args []ast.Expression
		for _, rep := range m.Children[3].Children {
			a, _ := combinator.Invoke[ast.Expression](rep.Children[1])
			args = append(args, a)
		}
		return &ast.TraceStmt{Position: posOf(m.Start), Format: format, Args: args}
	})

	assertMsg := combinator.Composite("assert-msg", kw(","), stringLiteral())
	assert := combinator.Composite("assert-stmt", kw("assert"), kw("("), e,
		combinator.Optional(assertMsg), kw(")"), kw(";"))
	assertMapper := combinator.Mapper("assert-stmt", assert, func(m *combinator.Match) ast.Statement {
		cond, _ := combinator.Invoke[ast.Expression](m.Children[2])
		s := &ast.AssertStmt{Position: posOf(m.Start), Cond: cond}
		if optMsg := m.Children[3]; len(optMsg.Children) > 0 {
			s.Message = strings.Trim(optMsg.Children[0].Children[1].Start.Text(), `"`)
		}
		return s
	})

	brk := combinator.Composite("break-stmt", kw("break"), kw(";"))
	brkMapper := combinator.Mapper("break-stmt", brk, func(m *combinator.Match) ast.Statement {
		return &ast.BreakStmt{Position: posOf(m.Start)}
	})

	stmt := combinator.Choice("stmt", ifMapper, forMapper, switchMapper, traceMapper, assertMapper,
		brkMapper, callMapper, assignMapper)
	g.stmt = combinator.Mapper("stmt", stmt, func(m *combinator.Match) ast.Statement {
		v, _ := combinator.Invoke[ast.Statement](m)
		return v
	})
	g.selfRef.Set(g.stmt)
}

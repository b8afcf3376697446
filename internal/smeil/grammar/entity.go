package grammar

import (
	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/combinator"
)

// entityGrammar builds the two top-level entity kinds of spec §6.1: Process
// (`(clocked)? proc name(params) { decls; stmts }`) and Network (`network
// name(params) { decls/instances/generators/connects }`).
type entityGrammar struct {
	decls *declGrammar
	stmts *stmtGrammar

	proc    combinator.Combinator
	network combinator.Combinator
}

func newEntityGrammar(decls *declGrammar, stmts *stmtGrammar) *entityGrammar {
	return &entityGrammar{decls: decls, stmts: stmts}
}

// Process exposes the process-entity grammar, built by build().
func (g *entityGrammar) Process() combinator.Combinator { return g.proc }

// Network exposes the network-entity grammar, built by build().
func (g *entityGrammar) Network() combinator.Combinator { return g.network }

func (g *entityGrammar) build() {
	paramList := g.decls.ParamList()

	localDecls := combinator.Sequence(g.decls.LocalDecl())
	stmts := combinator.Sequence(g.stmts.Stmt())

	proc := combinator.Composite("process", combinator.Optional(kw("clocked")), kw("proc"), identMapper(),
		kw("("), paramList, kw(")"), kw("{"), localDecls, stmts, kw("}"))
	g.proc = combinator.Mapper("process", proc, func(m *combinator.Match) *ast.Process {
		clocked := len(m.Children[0].Children) > 0
		name, _ := combinator.Invoke[identResult](m.Children[2])
		params, _ := combinator.Invoke[[]ast.Param](m.Children[4])
		p := &ast.Process{Position: name.Pos, Clocked: clocked, Name: name.Name, Params: params}
		p.Decls = combinator.CollectEach[ast.Declaration](m.Children[7])
		p.Stmts = combinator.CollectEach[ast.Statement](m.Children[8])
		return p
	})

	connect := g.decls.Connect()
	networkItem := combinator.Choice("network-item", g.decls.NetworkDecl(), connect)
	networkBody := combinator.Sequence(networkItem)

	network := combinator.Composite("network", kw("network"), identMapper(), kw("("), paramList, kw(")"),
		kw("{"), networkBody, kw("}"))
	g.network = combinator.Mapper("network", network, func(m *combinator.Match) *ast.Network {
		name, _ := combinator.Invoke[identResult](m.Children[1])
		params, _ := combinator.Invoke[[]ast.Param](m.Children[3])
		n := &ast.Network{Position: name.Pos, Name: name.Name, Params: params}
		n.Decls = combinator.CollectEach[ast.Declaration](m.Children[6])
		n.Connect = combinator.CollectEach[*ast.ConnectDecl](m.Children[6])
		return n
	})
}

package grammar

import (
	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/combinator"
)

// declGrammar builds the Declaration variants of spec §3: Variable,
// Constant, Bus, Enum, Function, Instance, Generator, TypeDef, plus the
// network-only ConnectDecl.
type declGrammar struct {
	exprs *exprGrammar
	types *typeGrammar
	stmts *stmtGrammar // set by grammar.go after construction (mutual reference for function bodies)

	paramList combinator.Combinator

	typeDefMapper combinator.Combinator
	constMapper   combinator.Combinator
	enumMapper    combinator.Combinator

	localDecl  combinator.Combinator // var/const/bus/enum — legal inside a process
	moduleDecl *combinator.LazyRef   // type/const/enum/function — legal at module scope; function added once stmts exist
	connect    combinator.Combinator

	networkDeclRef *combinator.LazyRef // instance/generate/const — legal inside a network
}

func newDeclGrammar(exprs *exprGrammar, types *typeGrammar) *declGrammar {
	return &declGrammar{
		exprs:      exprs,
		types:      types,
		moduleDecl: combinator.Lazy("module-decl"),
	}
}

// NetworkDecl exposes the network-local declaration grammar, built by build().
func (g *declGrammar) NetworkDecl() combinator.Combinator { return g.networkDeclRef.Combinator() }

// ModuleDecl exposes the module-level declaration grammar. It is not fully
// resolved (the function variant is missing) until finishFunctions runs.
func (g *declGrammar) ModuleDecl() combinator.Combinator { return g.moduleDecl.Combinator() }

// LocalDecl exposes the process-local declaration grammar (var/const/bus/enum).
func (g *declGrammar) LocalDecl() combinator.Combinator { return g.localDecl }

// Connect exposes the network `src -> dst;` grammar.
func (g *declGrammar) Connect() combinator.Combinator { return g.connect }

// ParamList exposes the shared `(dir name : Type (, ...)*)?` formal
// parameter list grammar, used by function, process, and network headers
// alike.
func (g *declGrammar) ParamList() combinator.Combinator { return g.paramList }

func (g *declGrammar) build() {
	e := g.exprs.Expr()
	t := g.types.Type()

	varDecl := combinator.Composite("var-decl", kw("var"), identMapper(), kw(":"), t,
		combinator.Optional(combinator.Composite("var-init", kw("="), e)), kw(";"))
	varMapper := combinator.Mapper("var-decl", varDecl, func(m *combinator.Match) ast.Declaration {
		name, _ := combinator.Invoke[identResult](m.Children[1])
		typ, _ := combinator.Invoke[ast.Type](m.Children[3])
		d := &ast.VariableDecl{Position: name.Pos, Name: name.Name, Type: typ}
		if len(m.Children[4].Children) > 0 {
			init, _ := combinator.Invoke[ast.Expression](m.Children[4].Children[0].Children[1])
			d.Init = init
		}
		return d
	})

	constDecl := combinator.Composite("const-decl", kw("const"), identMapper(),
		combinator.Optional(combinator.Composite("const-type", kw(":"), t)), kw("="), e, kw(";"))
	constMapper := combinator.Mapper("const-decl", constDecl, func(m *combinator.Match) ast.Declaration {
		name, _ := combinator.Invoke[identResult](m.Children[1])
		d := &ast.ConstantDecl{Position: name.Pos, Name: name.Name}
		if len(m.Children[2].Children) > 0 {
			typ, _ := combinator.Invoke[ast.Type](m.Children[2].Children[0].Children[1])
			d.Type = typ
		}
		init, _ := combinator.Invoke[ast.Expression](m.Children[4])
		d.Init = init
		return d
	})

	busDecl := combinator.Composite("bus-decl", kw("bus"), identMapper(), kw(":"), t, kw(";"))
	busMapper := combinator.Mapper("bus-decl", busDecl, func(m *combinator.Match) ast.Declaration {
		name, _ := combinator.Invoke[identResult](m.Children[1])
		typ, _ := combinator.Invoke[ast.Type](m.Children[3])
		shape, _ := typ.(*ast.BusType)
		return &ast.BusDecl{Position: name.Pos, Name: name.Name, Shape: shape}
	})

	enumMember := combinator.Composite("enum-member", identMapper(),
		combinator.Optional(combinator.Composite("enum-member-value", kw("="), e)))
	enumMemberMapper := combinator.Mapper("enum-member", enumMember, func(m *combinator.Match) ast.EnumMember {
		name, _ := combinator.Invoke[identResult](m.Children[0])
		mem := ast.EnumMember{Name: name.Name}
		if len(m.Children[1].Children) > 0 {
			v, _ := combinator.Invoke[ast.Expression](m.Children[1].Children[0].Children[1])
			mem.Value = v
		}
		return mem
	})
	enumMemberTail := combinator.Sequence(combinator.Composite("enum-member-tail", kw(","), enumMemberMapper))
	enumMembers := combinator.Composite("enum-members", enumMemberMapper, enumMemberTail)
	enumDecl := combinator.Composite("enum-decl", kw("enum"), identMapper(), kw("{"), enumMembers, kw("}"), kw(";"))
	enumMapper := combinator.Mapper("enum-decl", enumDecl, func(m *combinator.Match) ast.Declaration {
		name, _ := combinator.Invoke[identResult](m.Children[1])
		membersMatch := m.Children[3]
		first, _ := combinator.Invoke[ast.EnumMember](membersMatch.Children[0])
		members := []ast.EnumMember{first}
		for _, rep := range membersMatch.Children[1].Children {
			mem, _ := combinator.Invoke[ast.EnumMember](rep.Children[1])
			members = append(members, mem)
		}
		return &ast.EnumDecl{Position: name.Pos, Name: name.Name, Members: members}
	})

	typeDefDecl := combinator.Composite("typedef-decl", kw("type"), identMapper(), kw(":"), t, kw(";"))
	typeDefMapper := combinator.Mapper("typedef-decl", typeDefDecl, func(m *combinator.Match) ast.Declaration {
		name, _ := combinator.Invoke[identResult](m.Children[1])
		typ, _ := combinator.Invoke[ast.Type](m.Children[3])
		return &ast.TypeDefDecl{Position: name.Pos, Name: name.Name, Type: typ}
	})

	param := combinator.Composite("param", paramDirGrammar(), identMapper(), kw(":"), t)
	paramMapper := combinator.Mapper("param", param, func(m *combinator.Match) ast.Param {
		dir, _ := combinator.Invoke[ast.ParamDirection](m.Children[0])
		name, _ := combinator.Invoke[identResult](m.Children[1])
		typ, _ := combinator.Invoke[ast.Type](m.Children[3])
		return ast.Param{Position: name.Pos, Name: name.Name, Dir: dir, Type: typ}
	})
	g.paramList = commaSeparated[ast.Param](paramMapper)

	g.typeDefMapper = typeDefMapper
	g.constMapper = constMapper
	g.enumMapper = enumMapper

	g.localDecl = combinator.Choice("local-decl", varMapper, constMapper, busMapper, enumMapper)
	// function is added once finishFunctions runs (needs stmts.build() first).
	g.moduleDecl.Set(combinator.Choice("module-decl", typeDefMapper, constMapper, enumMapper))

	// instance + generate (network-local) are built in buildNetworkDecls.
	g.networkDeclRef = combinator.Lazy("network-decl")
	g.networkDeclRef.Set(g.buildNetworkDecls(constMapper))
	g.connect = g.buildConnect()
}

// finishFunctions builds the function-declaration grammar, which needs the
// statement grammar to exist first, and folds it into ModuleDecl. Called by
// grammar.go after stmts.build().
func (g *declGrammar) finishFunctions() {
	t := g.types.Type()
	body := combinator.Sequence(g.stmts.Stmt())
	funcDecl := combinator.Composite("func-decl", kw("function"), identMapper(), kw("("), g.paramList, kw(")"),
		combinator.Optional(combinator.Composite("func-ret", kw(":"), t)), kw("{"), body, kw("}"))
	funcMapper := combinator.Mapper("func-decl", funcDecl, func(m *combinator.Match) ast.Declaration {
		name, _ := combinator.Invoke[identResult](m.Children[1])
		params, _ := combinator.Invoke[[]ast.Param](m.Children[3])
		d := &ast.FunctionDecl{Position: name.Pos, Name: name.Name, Params: params}
		if len(m.Children[5].Children) > 0 {
			ret, _ := combinator.Invoke[ast.Type](m.Children[5].Children[0].Children[1])
			d.Ret = ret
		}
		d.Body = combinator.CollectEach[ast.Statement](m.Children[7])
		return d
	})
	g.moduleDecl.Set(combinator.Choice("module-decl", g.typeDefMapper, g.constMapper, g.enumMapper, funcMapper))
}

func (g *declGrammar) buildConnect() combinator.Combinator {
	e := g.exprs.Expr()
	c := combinator.Composite("connect-decl", e, kw("->"), e, kw(";"))
	return combinator.Mapper("connect-decl", c, func(m *combinator.Match) *ast.ConnectDecl {
		src, _ := combinator.Invoke[ast.Expression](m.Children[0])
		dst, _ := combinator.Invoke[ast.Expression](m.Children[2])
		return &ast.ConnectDecl{Position: src.Pos(), Src: src, Dst: dst}
	})
}

func (g *declGrammar) buildNetworkDecls(constMapper combinator.Combinator) combinator.Combinator {
	e := g.exprs.Expr()

	networkDeclLazy := combinator.Lazy("network-decl")

	argList := commaSeparated[ast.Expression](e)
	instanceName := combinator.Choice("instance-name", kw("_"), identMapper())
	instance := combinator.Composite("instance-decl", kw("instance"), instanceName, kw("of"), dottedNameCombinator(),
		kw("("), argList, kw(")"), kw(";"))
	instanceMapper := combinator.Mapper("instance-decl", instance, func(m *combinator.Match) ast.Declaration {
		var name string
		if id, ok := combinator.Invoke[identResult](m.Children[1]); ok {
			name = id.Name
		} else {
			name = "_"
		}
		entity, _ := combinator.Invoke[[]string](m.Children[3])
		args, _ := combinator.Invoke[[]ast.Expression](m.Children[5])
		return &ast.InstanceDecl{Position: posOf(m.Start), Name: name, Entity: entity, Args: args}
	})

	generate := combinator.Composite("generate-decl", kw("generate"), identMapper(), kw("="), e, kw("to"), e,
		kw("{"), combinator.Sequence(networkDeclLazy.Combinator()), kw("}"))
	generateMapper := combinator.Mapper("generate-decl", generate, func(m *combinator.Match) ast.Declaration {
		v, _ := combinator.Invoke[identResult](m.Children[1])
		from, _ := combinator.Invoke[ast.Expression](m.Children[3])
		to, _ := combinator.Invoke[ast.Expression](m.Children[5])
		decls := combinator.CollectEach[ast.Declaration](m.Children[7])
		return &ast.GeneratorDecl{Position: v.Pos, Var: v.Name, From: from, To: to, Decls: decls}
	})

	networkDecl := combinator.Choice("network-decl", constMapper, instanceMapper, generateMapper)
	networkDeclLazy.Set(networkDecl)
	return networkDecl
}

func paramDirGrammar() combinator.Combinator {
	c := combinator.Choice("param-dir", kw("in"), kw("out"), kw("const"))
	return combinator.Mapper("param-dir", c, func(m *combinator.Match) ast.ParamDirection {
		switch m.Start.Text() {
		case "in":
			return ast.DirIn
		case "out":
			return ast.DirOut
		default:
			return ast.DirConst
		}
	})
}

// commaSeparated builds `(item (, item)*)?`, collecting every value the
// given item Mapper produces, in source order.
func commaSeparated[T any](item combinator.Combinator) combinator.Combinator {
	tail := combinator.Sequence(combinator.Composite("list-tail", kw(","), item))
	body := combinator.Composite("list-body", item, tail)
	optBody := combinator.Optional(body)
	return combinator.Mapper("list", optBody, func(m *combinator.Match) []T {
		var out []T
		if len(m.Children) == 0 {
			return out
		}
		bodyMatch := m.Children[0]
		first, ok := combinator.Invoke[T](bodyMatch.Children[0])
		if ok {
			out = append(out, first)
		}
		for _, rep := range bodyMatch.Children[1].Children {
			v, ok := combinator.Invoke[T](rep.Children[1])
			if ok {
				out = append(out, v)
			}
		}
		return out
	})
}

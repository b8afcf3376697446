package grammar

import (
	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/combinator"
)

// moduleGrammar builds the root grammar rule of spec §6.1: a file's imports,
// followed by its module-level declarations and its process/network
// entities, in any interleaving order.
type moduleGrammar struct {
	decls *declGrammar
	ents  *entityGrammar

	module combinator.Combinator
}

func newModuleGrammar(decls *declGrammar, ents *entityGrammar) *moduleGrammar {
	return &moduleGrammar{decls: decls, ents: ents}
}

// Module exposes the built root grammar rule.
func (g *moduleGrammar) Module() combinator.Combinator { return g.module }

func (g *moduleGrammar) build() {
	imports := combinator.Sequence(importMapper())

	body := combinator.Choice("module-item", g.decls.ModuleDecl(), g.ents.Process(), g.ents.Network())
	items := combinator.Sequence(body)

	mod := combinator.Composite("module", imports, items)
	g.module = combinator.Mapper("module", mod, func(m *combinator.Match) *ast.Module {
		module := &ast.Module{Position: posOf(m.Start)}
		module.Imports = combinator.CollectEach[*ast.Import](m.Children[0])
		module.Decls = combinator.CollectEach[ast.Declaration](m.Children[1])
		module.Procs = combinator.CollectEach[*ast.Process](m.Children[1])
		module.Networks = combinator.CollectEach[*ast.Network](m.Children[1])
		return module
	})
}

// importMapper builds the Import grammar rule covering both the full
// (`import M as N;`) and limited (`from M import x, y, z as N;`) forms of
// spec §6.1.
func importMapper() combinator.Combinator {
	full := combinator.Composite("full-import", kw("import"), dottedNameCombinator(),
		combinator.Optional(combinator.Composite("import-alias", kw("as"), identMapper())), kw(";"))
	fullMapper := combinator.Mapper("full-import", full, func(m *combinator.Match) *ast.Import {
		path, _ := combinator.Invoke[[]string](m.Children[1])
		imp := &ast.Import{Position: posOf(m.Start), Path: path}
		if len(m.Children[2].Children) > 0 {
			alias, _ := combinator.Invoke[identResult](m.Children[2].Children[0].Children[1])
			imp.Alias = alias.Name
		}
		return imp
	})

	symbol := combinator.Composite("imported-symbol", identMapper(),
		combinator.Optional(combinator.Composite("symbol-alias", kw("as"), identMapper())))
	symbolMapper := combinator.Mapper("imported-symbol", symbol, func(m *combinator.Match) ast.ImportedSymbol {
		name, _ := combinator.Invoke[identResult](m.Children[0])
		s := ast.ImportedSymbol{Name: name.Name}
		if len(m.Children[1].Children) > 0 {
			alias, _ := combinator.Invoke[identResult](m.Children[1].Children[0].Children[1])
			s.Alias = alias.Name
		}
		return s
	})
	symbolList := commaSeparated[ast.ImportedSymbol](symbolMapper)

	limited := combinator.Composite("limited-import", kw("from"), dottedNameCombinator(), kw("import"), symbolList,
		combinator.Optional(combinator.Composite("limited-alias", kw("as"), identMapper())), kw(";"))
	limitedMapper := combinator.Mapper("limited-import", limited, func(m *combinator.Match) *ast.Import {
		path, _ := combinator.Invoke[[]string](m.Children[1])
		syms, _ := combinator.Invoke[[]ast.ImportedSymbol](m.Children[3])
		imp := &ast.Import{Position: posOf(m.Start), Path: path, Limited: true, Symbols: syms}
		if len(m.Children[4].Children) > 0 {
			alias, _ := combinator.Invoke[identResult](m.Children[4].Children[0].Children[1])
			imp.Alias = alias.Name
		}
		return imp
	})

	choice := combinator.Choice("import", limitedMapper, fullMapper)
	return combinator.Mapper("import", choice, func(m *combinator.Match) *ast.Import {
		v, _ := combinator.Invoke[*ast.Import](m)
		return v
	})
}

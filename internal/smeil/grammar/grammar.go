package grammar

import (
	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/combinator"
	"github.com/dekarrin/smeilc/internal/smeil/token"
)

// Grammar holds the fully built combinator tree for one parse and the
// Engine used to drive it. Build once and reuse across files (combinators
// are immutable and shareable, spec §9).
type Grammar struct {
	engine *combinator.Engine
	module combinator.Combinator
}

// New builds the complete SMEIL grammar. guardRecursion toggles spec
// §4.1's optional infinite-recursion guard (off by default, per spec).
func New(guardRecursion bool) *Grammar {
	typeLazy := combinator.Lazy("type-fixpoint")

	exprs := newExprGrammar(typeLazy)
	types := newTypeGrammar(exprs.selfRefForTypes())

	types.build()
	typeLazy.Set(types.Type())
	exprs.build()

	decls := newDeclGrammar(exprs, types)
	decls.build()
	stmts := newStmtGrammar(exprs, decls)
	stmts.build()
	decls.stmts = stmts
	decls.finishFunctions()

	ents := newEntityGrammar(decls, stmts)
	ents.build()

	mod := newModuleGrammar(decls, ents)
	mod.build()

	return &Grammar{
		engine: combinator.NewEngine(combinator.Options{GuardRecursion: guardRecursion}),
		module: mod.Module(),
	}
}

// ParseModule drives the grammar over a pre-tokenized source and produces
// the *ast.Module, or a *combinator.ParseError naming the offending token
// and what was expected (spec §4.1 "Error reporting").
func (g *Grammar) ParseModule(filePath string, tokens []token.Token) (*ast.Module, error) {
	stream := token.NewSliceStream(tokens)
	tree, err := g.engine.Match(g.module, stream)
	if err != nil {
		return nil, err
	}
	mod, ok := combinator.Invoke[*ast.Module](tree)
	if !ok {
		return nil, &combinator.ParseError{Expected: "module", Found: "malformed parse tree"}
	}
	mod.FilePath = filePath
	return mod, nil
}

// selfRefForTypes exposes exprGrammar's self-reference for typeGrammar's
// constructor; both sides need each other's Lazy placeholder before either
// is built.
func (g *exprGrammar) selfRefForTypes() *combinator.LazyRef { return g.selfRef }

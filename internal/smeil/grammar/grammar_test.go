package grammar

import (
	"testing"

	"github.com/dekarrin/smeilc/internal/smeil/combinator"
	"github.com/dekarrin/smeilc/internal/smeil/lexer"
	"github.com/dekarrin/smeilc/internal/smeil/token"
	"github.com/stretchr/testify/assert"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := lexer.Tokenize("test.sme", src)
	assert.NoError(t, err)
	return toks
}

func Test_ParseModule_ParametricAdder(t *testing.T) {
	assert := assert.New(t)

	src := `type tdata:{ val:i32; };
proc plusone(in ib:tdata, out ob:tdata) { ob.val = ib.val + 1; }
network N(in s:tdata, out d:tdata){ instance _ of plusone(s,d); }
`
	toks := tokenize(t, src)
	g := New(false)
	mod, err := g.ParseModule("test.sme", toks)
	assert.NoError(err)
	assert.Len(mod.Procs, 1)
	assert.Len(mod.Networks, 1)
	assert.Equal("plusone", mod.Procs[0].Name)
	assert.Equal("N", mod.Networks[0].Name)
}

// Test_ParseModule_SyntaxErrorRecovery covers scenario 3: an assignment
// statement missing its terminating ";" must surface a *combinator.ParseError
// rather than a panic or a silently truncated parse.
func Test_ParseModule_SyntaxErrorRecovery(t *testing.T) {
	assert := assert.New(t)

	src := `proc p(){ x = 1 }`
	toks := tokenize(t, src)

	g := New(false)
	mod, err := g.ParseModule("test.sme", toks)
	assert.Nil(mod)
	assert.Error(err)

	perr, ok := err.(*combinator.ParseError)
	assert.True(ok, "expected *combinator.ParseError, got %T", err)
	assert.Equal("end of input", perr.Expected)
	assert.Equal(`"proc"`, perr.Found)
	assert.Equal(1, perr.Location.Line())
}

// Test_StmtGrammar_SyntaxErrorRecovery drives the statement rule directly
// (bypassing the module-level item repetition, which discards a failed
// attempt's match tree once it backtracks) so the reported failure is the
// specific rule that couldn't complete rather than just "input remains".
func Test_StmtGrammar_SyntaxErrorRecovery(t *testing.T) {
	assert := assert.New(t)

	toks := tokenize(t, `x = 1 }`)

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

	engine := combinator.NewEngine(combinator.Options{})
	s := token.NewSliceStream(toks)
	_, err := engine.Match(stmts.Stmt(), s)
	assert.Error(err)

	perr, ok := err.(*combinator.ParseError)
	assert.True(ok, "expected *combinator.ParseError, got %T", err)
	assert.Equal("assign-stmt", perr.Expected)
	assert.Equal(`"x"`, perr.Found)
}

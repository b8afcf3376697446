package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSymbol string

func (f fakeSymbol) SymbolKind() SymbolKind { return SymConstant }
func (f fakeSymbol) SymbolName() string     { return string(f) }

func Test_Scope_DefineAndLookup(t *testing.T) {
	assert := assert.New(t)

	root := NewScope(nil)
	assert.NoError(root.Define("width", fakeSymbol("width")))

	sym, ok := root.Lookup("width")
	assert.True(ok)
	assert.Equal("width", sym.SymbolName())
}

func Test_Scope_DuplicateDefineIsError(t *testing.T) {
	assert := assert.New(t)

	root := NewScope(nil)
	assert.NoError(root.Define("n", fakeSymbol("n")))
	assert.Error(root.Define("n", fakeSymbol("n")))
}

func Test_Scope_LookupWalksParentChain(t *testing.T) {
	assert := assert.New(t)

	root := NewScope(nil)
	assert.NoError(root.Define("outer", fakeSymbol("outer")))

	child := NewScope(root)
	assert.NoError(child.Define("inner", fakeSymbol("inner")))

	sym, ok := child.Lookup("outer")
	assert.True(ok)
	assert.Equal("outer", sym.SymbolName())

	_, ok = root.Lookup("inner")
	assert.False(ok, "parent scope must not see child-scope bindings")
}

func Test_Scope_ChildShadowsParent(t *testing.T) {
	assert := assert.New(t)

	root := NewScope(nil)
	assert.NoError(root.Define("x", fakeSymbol("outer-x")))

	child := NewScope(root)
	assert.NoError(child.Define("x", fakeSymbol("inner-x")))

	sym, ok := child.Lookup("x")
	assert.True(ok)
	assert.Equal("inner-x", sym.SymbolName())

	sym, ok = root.Lookup("x")
	assert.True(ok)
	assert.Equal("outer-x", sym.SymbolName())
}

func Test_Scope_LookupLocalDoesNotWalk(t *testing.T) {
	assert := assert.New(t)

	root := NewScope(nil)
	assert.NoError(root.Define("outer", fakeSymbol("outer")))
	child := NewScope(root)

	_, ok := child.LookupLocal("outer")
	assert.False(ok)
}

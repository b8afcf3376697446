package ir

import (
	"testing"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/stretchr/testify/assert"
)

func Test_NewModuleInstance_HasRootScope(t *testing.T) {
	assert := assert.New(t)

	mod := NewModuleInstance("counters", &ast.Module{})
	assert.NotNil(mod.InstanceScope())
	assert.Nil(mod.InstanceScope().Parent())
	assert.Equal(SymModule, mod.SymbolKind())
}

func Test_NewNetworkInstance_ChainsToParentScope(t *testing.T) {
	assert := assert.New(t)

	mod := NewModuleInstance("counters", &ast.Module{})
	net := NewNetworkInstance("top", &ast.Network{Name: "top"}, mod.InstanceScope())

	assert.Equal(mod.InstanceScope(), net.InstanceScope().Parent())
	assert.Equal(SymNetwork, net.SymbolKind())
}

func Test_NewProcessInstance_SharesDefiningStatements(t *testing.T) {
	assert := assert.New(t)

	stmts := []ast.Statement{&ast.BreakStmt{}}
	def := &ast.Process{Name: "counter", Stmts: stmts}

	mod := NewModuleInstance("counters", &ast.Module{})
	proc := NewProcessInstance("counter_0", false, def, mod.InstanceScope())

	assert.Same(&stmts[0], &proc.Stmts()[0])
	assert.Len(proc.Stmts(), 1)
}

func Test_BusInstance_SignalLookup(t *testing.T) {
	assert := assert.New(t)

	sig := &SignalInstance{Name: "data", ResolvedType: &ast.IntrinsicType{Kind: ast.IntUnsigned, Width: 8}}
	bus := &BusInstance{Name: "io", Signals: map[string]*SignalInstance{"data": sig}, Order: []string{"data"}}

	found, ok := bus.Signal("data")
	assert.True(ok)
	assert.Equal(sig, found)

	_, ok = bus.Signal("missing")
	assert.False(ok)
}

func Test_Direction_String(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("read", DirRead.String())
	assert.Equal("write", DirWrite.String())
	assert.Equal("read-write", DirReadWrite.String())
	assert.Equal("unused", DirUnused.String())
}

package validate

import (
	"testing"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
	"github.com/stretchr/testify/assert"
)

func Test_CombineDirection(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(ir.DirRead, combineDirection(ir.DirUnused, ir.DirRead))
	assert.Equal(ir.DirWrite, combineDirection(ir.DirUnused, ir.DirWrite))
	assert.Equal(ir.DirRead, combineDirection(ir.DirRead, ir.DirRead))
	assert.Equal(ir.DirReadWrite, combineDirection(ir.DirRead, ir.DirWrite))
	assert.Equal(ir.DirReadWrite, combineDirection(ir.DirWrite, ir.DirRead))
}

func Test_CollectAccesses_ClassifiesReadAndWrite(t *testing.T) {
	assert := assert.New(t)

	bus := &ir.BusInstance{
		Name: "io",
		Signals: map[string]*ir.SignalInstance{
			"a": {Name: "a"},
			"b": {Name: "b"},
		},
		Order: []string{"a", "b"},
	}

	proc := ir.NewProcessInstance("p", false, &ast.Process{
		Stmts: []ast.Statement{
			&ast.AssignStmt{
				LHS: name("io", "b"),
				RHS: name("io", "a"),
			},
		},
	}, ir.NewScope(nil))
	proc.Buses["io"] = bus
	assert.NoError(proc.InstanceScope().Define("io", bus))

	acc := collectAccesses(proc)
	assert.Equal(ir.DirRead, acc[bus.Signals["a"]].Dir)
	assert.Equal(ir.DirWrite, acc[bus.Signals["b"]].Dir)
}

func Test_CollectAccesses_SameSignalReadAndWrittenIsReadWrite(t *testing.T) {
	assert := assert.New(t)

	bus := &ir.BusInstance{
		Name:    "io",
		Signals: map[string]*ir.SignalInstance{"a": {Name: "a"}},
		Order:   []string{"a"},
	}

	proc := ir.NewProcessInstance("p", false, &ast.Process{
		Stmts: []ast.Statement{
			&ast.AssignStmt{
				LHS: name("io", "a"),
				RHS: &ast.BinaryExpr{Left: name("io", "a"), Op: ast.OpAdd, Right: intLit("1")},
			},
		},
	}, ir.NewScope(nil))
	proc.Buses["io"] = bus
	assert.NoError(proc.InstanceScope().Define("io", bus))

	acc := collectAccesses(proc)
	assert.Equal(ir.DirReadWrite, acc[bus.Signals["a"]].Dir)
}

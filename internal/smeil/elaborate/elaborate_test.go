package elaborate

import (
	"testing"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
	"github.com/stretchr/testify/assert"
)

// fakeResolver resolves entities purely from a flat name->def map, enough
// to exercise instantiation without a real module loader.
type fakeResolver struct {
	procs map[string]*ast.Process
	nets  map[string]*ast.Network
}

func (r *fakeResolver) ResolveEntity(path []string) (*ast.Process, *ast.Network, bool) {
	if len(path) != 1 {
		return nil, nil, false
	}
	if p, ok := r.procs[path[0]]; ok {
		return p, nil, true
	}
	if n, ok := r.nets[path[0]]; ok {
		return nil, n, true
	}
	return nil, nil, false
}

func u8Bus(signalName string) *ast.BusType {
	return &ast.BusType{Signals: []ast.BusSignal{
		{Name: signalName, Type: &ast.IntrinsicType{Kind: ast.IntUnsigned, Width: 8}},
	}}
}

func Test_ElaborateModule_RegistersConstantsAndTypeDefs(t *testing.T) {
	assert := assert.New(t)

	mod := &ast.Module{
		FilePath: "counters.smeil",
		Decls: []ast.Declaration{
			&ast.ConstantDecl{Name: "WIDTH", Init: intLit("8")},
			&ast.TypeDefDecl{Name: "Byte", Type: &ast.IntrinsicType{Kind: ast.IntUnsigned, Width: 8}},
		},
	}

	b := NewBuilder(&fakeResolver{})
	inst, err := b.ElaborateModule(mod)
	assert.NoError(err)
	assert.Equal("counters", inst.Name)

	width, ok := inst.Constants["WIDTH"]
	assert.True(ok)
	assert.Equal(int64(8), width.Value.AsInt())

	_, ok = inst.TypeDefs["Byte"]
	assert.True(ok)

	sym, ok := inst.InstanceScope().Lookup("WIDTH")
	assert.True(ok)
	assert.Equal(ir.SymConstant, sym.SymbolKind())
}

func Test_ElaborateTop_InstantiatesProcessAndConnects(t *testing.T) {
	assert := assert.New(t)

	counter := &ast.Process{
		Name: "counter",
		Params: []ast.Param{
			{Name: "out", Dir: ast.DirOut, Type: u8Bus("val")},
		},
	}

	top := &ast.Network{
		Name: "top",
		Params: []ast.Param{
			{Name: "io", Dir: ast.DirOut, Type: u8Bus("val")},
		},
		Decls: []ast.Declaration{
			&ast.InstanceDecl{
				Name:   "c0",
				Entity: []string{"counter"},
				Args: []ast.Expression{
					&ast.NameExpr{Segments: []ast.NameSegment{{Ident: "io"}}},
				},
			},
		},
		Connect: []*ast.ConnectDecl{
			{
				Src: &ast.NameExpr{Segments: []ast.NameSegment{{Ident: "c0"}, {Ident: "out"}, {Ident: "val"}}},
				Dst: &ast.NameExpr{Segments: []ast.NameSegment{{Ident: "io"}, {Ident: "val"}}},
			},
		},
	}

	modInst := ir.NewModuleInstance("counters", &ast.Module{})
	b := NewBuilder(&fakeResolver{procs: map[string]*ast.Process{"counter": counter}})

	net, err := b.ElaborateTop(modInst, top, nil)
	assert.NoError(err)
	assert.Len(net.Processes, 1)
	assert.Equal("c0", net.Processes[0].Name)
	assert.False(net.Processes[0].Clocked)

	assert.Contains(net.Buses, "io")

	assert.Len(net.Connects, 1)
	conn := net.Connects[0]
	assert.Equal("val", conn.Src.Name)
	assert.Equal("val", conn.Dst.Name)
}

func Test_ElaborateTop_ArityMismatchIsError(t *testing.T) {
	assert := assert.New(t)

	top := &ast.Network{
		Name:   "top",
		Params: []ast.Param{{Name: "n", Dir: ast.DirConst, Type: &ast.IntrinsicType{Kind: ast.IntPlatformSigned}}},
	}

	modInst := ir.NewModuleInstance("m", &ast.Module{})
	b := NewBuilder(&fakeResolver{})

	_, err := b.ElaborateTop(modInst, top, nil)
	assert.Error(err)
}

func Test_ElaborateTop_AnonymousInstanceGetsSyntheticName(t *testing.T) {
	assert := assert.New(t)

	counter := &ast.Process{Name: "counter"}
	top := &ast.Network{
		Name: "top",
		Decls: []ast.Declaration{
			&ast.InstanceDecl{Name: "_", Entity: []string{"counter"}},
		},
	}

	modInst := ir.NewModuleInstance("m", &ast.Module{})
	b := NewBuilder(&fakeResolver{procs: map[string]*ast.Process{"counter": counter}})

	net, err := b.ElaborateTop(modInst, top, nil)
	assert.NoError(err)
	assert.Len(net.Processes, 1)
	assert.Contains(net.Processes[0].Name, "_anon_")
}

func Test_ElaborateTop_GenerateExpandsPerIteration(t *testing.T) {
	assert := assert.New(t)

	counter := &ast.Process{Name: "counter"}
	top := &ast.Network{
		Name: "top",
		Decls: []ast.Declaration{
			&ast.GeneratorDecl{
				Var:  "i",
				From: intLit("0"),
				To:   intLit("2"),
				Decls: []ast.Declaration{
					&ast.InstanceDecl{Name: "_", Entity: []string{"counter"}},
				},
			},
		},
	}

	modInst := ir.NewModuleInstance("m", &ast.Module{})
	b := NewBuilder(&fakeResolver{procs: map[string]*ast.Process{"counter": counter}})

	net, err := b.ElaborateTop(modInst, top, nil)
	assert.NoError(err)
	assert.Len(net.Processes, 3, "generate 0 to 2 inclusive produces 3 instances")
}

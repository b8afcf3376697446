package hdlemit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
	"github.com/stretchr/testify/assert"
)

func newTestNetwork(name string, procNames ...string) *ir.NetworkInstance {
	net := ir.NewNetworkInstance(name, &ast.Network{Name: name}, nil)
	for _, pn := range procNames {
		p := ir.NewProcessInstance(pn, false, &ast.Process{Name: pn}, net.InstanceScope())
		net.Processes = append(net.Processes, p)
	}
	return net
}

func Test_Plan_ListsOneFilePerDistinctProcessPlusFixedSet(t *testing.T) {
	net := newTestNetwork("top", "plusone", "passthrough")

	files := Plan(net)

	var kinds []Kind
	for _, f := range files {
		kinds = append(kinds, f.Kind)
	}
	assert.Contains(t, kinds, KindProcessModule)
	assert.Contains(t, kinds, KindNetworkModule)
	assert.Contains(t, kinds, KindExportWrapper)
	assert.Contains(t, kinds, KindTestbench)
	assert.Contains(t, kinds, KindCustomTypes)
	assert.Contains(t, kinds, KindBuildDesc)

	var procFiles int
	for _, f := range files {
		if f.Kind == KindProcessModule {
			procFiles++
		}
	}
	assert.Equal(t, 2, procFiles)
}

func Test_Plan_DedupsSharedProcessDefinitionInstance(t *testing.T) {
	net := ir.NewNetworkInstance("top", &ast.Network{Name: "top"}, nil)
	shared := ir.NewProcessInstance("worker", false, &ast.Process{Name: "worker"}, net.InstanceScope())
	net.Processes = append(net.Processes, shared, shared)

	files := Plan(net)

	var procFiles int
	for _, f := range files {
		if f.Kind == KindProcessModule {
			procFiles++
		}
	}
	assert.Equal(t, 1, procFiles)
}

func Test_PlaceholderEmitter_EmitWritesAllPlannedFiles(t *testing.T) {
	dir := t.TempDir()
	net := newTestNetwork("top", "plusone")

	e := &PlaceholderEmitter{}
	files, err := e.Emit(net, dir)
	assert.NoError(t, err)
	assert.NotEmpty(t, files)

	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		_, err := os.Stat(path)
		assert.NoError(t, err, "expected %s to exist", f.Name)
	}
}

func Test_PlaceholderEmitter_EmitWritesValidTOMLBuildDescription(t *testing.T) {
	dir := t.TempDir()
	net := newTestNetwork("top", "plusone")

	e := &PlaceholderEmitter{Variant: VariantGHDL}
	_, err := e.Emit(net, dir)
	assert.NoError(t, err)

	var desc BuildDescription
	_, err = toml.DecodeFile(filepath.Join(dir, BuildDescriptionFileName()), &desc)
	assert.NoError(t, err)
	assert.Equal(t, "top", desc.Top)
	assert.Equal(t, "ghdl", desc.Variant)
	assert.NotEmpty(t, desc.Sources)
	assert.NotEmpty(t, desc.Testbench)
}

func Test_Emitter_NilNetworkIsError(t *testing.T) {
	e := &PlaceholderEmitter{}
	_, err := e.Plan(nil, t.TempDir())
	assert.Error(t, err)
}

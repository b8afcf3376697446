package main

import (
	"testing"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
	"github.com/stretchr/testify/assert"
)

func Test_FindInstance_FindsTopAndNestedByName(t *testing.T) {
	top := ir.NewNetworkInstance("top", &ast.Network{Name: "top"}, nil)
	proc := ir.NewProcessInstance("worker", false, &ast.Process{Name: "worker"}, top.InstanceScope())
	top.Processes = append(top.Processes, proc)

	assert.Equal(t, top, findInstance(top, "top"))
	assert.Equal(t, ir.Instance(proc), findInstance(top, "worker"))
	assert.Nil(t, findInstance(top, "nope"))
}

func Test_FindSignal_SearchesOwnAndProcessBuses(t *testing.T) {
	top := ir.NewNetworkInstance("top", &ast.Network{Name: "top"}, nil)
	bus := &ir.BusInstance{Name: "s", Signals: map[string]*ir.SignalInstance{
		"val": {Name: "val"},
	}}
	top.Buses["s"] = bus

	found := findSignal(top, "val")
	assert.NotNil(t, found)
	assert.Equal(t, "val", found.Name)

	proc := ir.NewProcessInstance("worker", false, &ast.Process{Name: "worker"}, top.InstanceScope())
	proc.Buses["pb"] = &ir.BusInstance{Name: "pb", Signals: map[string]*ir.SignalInstance{
		"pval": {Name: "pval"},
	}}
	top.Processes = append(top.Processes, proc)

	fromProc := findSignal(top, "pval")
	assert.NotNil(t, fromProc)
	assert.Equal(t, "pval", fromProc.Name)

	assert.Nil(t, findSignal(top, "missing"))
}

package validate

import (
	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/diag"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
)

// registerSymbols implements Pass A (spec §4.4). Scope population itself
// happens as each Instance is built (package elaborate's Builder.* methods
// call Scope.Define at the point of creation, surfacing a duplicate-name
// error immediately rather than deferring it to this pass), so Pass A here
// only re-walks the already-built tree and reports any network or process
// instance without a scope, and any nil bus in a process's Buses. Those
// are bugs in the builder, not user errors, hence CategoryInternal rather
// than CategorySymbol. Names are not re-checked for duplicates here.
func registerSymbols(top *ir.NetworkInstance, bag *diag.Bag) {
	walkNetwork(top, bag)
}

func walkNetwork(net *ir.NetworkInstance, bag *diag.Bag) {
	if net.InstanceScope() == nil {
		internalError(bag, locOf(net.Position), "network instance %q has no scope", net.Name)
		return
	}
	for _, p := range net.Processes {
		walkProcess(p, bag)
	}
	for _, n := range net.Networks {
		walkNetwork(n, bag)
	}
}

func walkProcess(proc *ir.ProcessInstance, bag *diag.Bag) {
	if proc.InstanceScope() == nil {
		internalError(bag, locOf(proc.Position), "process instance %q has no scope", proc.Name)
		return
	}
	for name, bus := range proc.Buses {
		if bus == nil {
			internalError(bag, locOf(proc.Position), "process %q: bus %q is nil", proc.Name, name)
		}
	}
}

// locOf adapts an ast.Position to the diag.Location every Diagnostic
// carries (spec §7: "each carries a source (line, col, text)").
func locOf(p ast.Position) diag.Location {
	return diag.Location{File: p.File, Line: p.Line, Col: p.Col, FullLine: p.Tok.FullLine()}
}

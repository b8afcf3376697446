// Package validate implements spec.md §4.4: the three-pass validator that
// walks an elaborated instance tree (package ir) and annotates it with
// resolved types, signal directions, and a process schedule, or reports the
// diagnostics of spec §7 when it cannot.
package validate

import (
	"fmt"

	"github.com/dekarrin/smeilc/internal/smeil/diag"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
)

// Validate runs Pass A, B, then C over top in order, stopping at the first
// pass that records a fatal diagnostic (spec §7 "Propagation: Stages fail
// fast on the first fatal diagnostic"). The returned *TypeTable is the
// Expression -> Type side table Pass B populates (spec §3: "Resolved types
// are not stored on the node itself ... the validator keeps a side table").
func Validate(top *ir.NetworkInstance) (*diag.Bag, *TypeTable) {
	bag := &diag.Bag{}

	registerSymbols(top, bag)
	if bag.HasErrors() {
		return bag, nil
	}

	types := newTypeTable()
	resolveAndUnify(top, types, bag)
	if bag.HasErrors() {
		return bag, types
	}

	scheduleNetwork(top, bag)
	return bag, types
}

func internalError(bag *diag.Bag, loc diag.Location, format string, args ...any) {
	bag.AddError(diag.New(diag.CategoryInternal, "", loc, fmt.Sprintf(format, args...), ""))
}

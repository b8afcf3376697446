// Package hdlemit is the interface-only HDL emission collaborator of spec
// §6.2: it describes, by name, the set of files a real VHDL backend would
// write for a validated network instance, but writes no VHDL text itself.
// cmd/smeilc calls through Emitter so the CLI has a concrete contract to
// drive even though the backend is out of scope for this repo.
package hdlemit

import (
	"fmt"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
	"github.com/dekarrin/smeilc/internal/util"
)

// Kind classifies one file an Emitter plans to produce, per spec §6.2's
// fixed set: "one module-per-process, one top-level network module, one
// export wrapper ..., one testbench driven by a CSV trace, one custom-types
// package, and one build description."
type Kind string

const (
	KindProcessModule Kind = "process_module"
	KindNetworkModule Kind = "network_module"
	KindExportWrapper Kind = "export_wrapper"
	KindTestbench     Kind = "testbench"
	KindCustomTypes   Kind = "custom_types"
	KindBuildDesc     Kind = "build_description"
)

// PlannedFile is one file Emit would write, named but not populated: the
// core's contract to the emitter stops at naming, per spec §4.5.
type PlannedFile struct {
	Kind Kind
	// Name is the bare file name (no directory component); Emitter joins it
	// against the target directory the caller supplied.
	Name string
	// Entity is the VHDL entity name the file corresponds to, empty for
	// files that aren't entity-scoped (the build description).
	Entity string
}

// Emitter takes a validated network instance and a target directory and
// reports the set of files it would write. Per spec §4.5/§6.2, this
// package implements only the naming side of that contract; no VHDL text
// generation happens here or anywhere in this repo.
type Emitter interface {
	// Plan returns, in deterministic order, every file Emit would produce
	// for net were it asked to write to dir. Callers that only need the
	// file list (e.g. `smeilc inspect`'s dry-run) can call Plan without
	// ever calling Emit.
	Plan(net *ir.NetworkInstance, dir string) ([]PlannedFile, error)

	// Emit performs whatever Plan describes. The reference Emitter in this
	// package creates placeholder files holding only a short header comment
	// (for the build description, a real TOML-encoded one) so a full `smeilc build` run
	// produces a browsable output tree even without a VHDL backend wired
	// in.
	Emit(net *ir.NetworkInstance, dir string) ([]PlannedFile, error)
}

// Plan computes the fixed-shape file set spec §6.2 describes for net: one
// process module per distinct Process definition reachable in net's
// schedule (by definition identity, so two instances of the same Process
// share one module, per spec §4.5's process-module dedup rule), one
// network module for net itself, one export wrapper, one CSV-trace
// testbench, one custom-types package, and one build description.
func Plan(net *ir.NetworkInstance) []PlannedFile {
	var files []PlannedFile

	seen := util.NewKeySet[*ast.Process]()
	var procDefs []string
	var walk func(n *ir.NetworkInstance)
	walk = func(n *ir.NetworkInstance) {
		for _, p := range n.Processes {
			if seen.Has(p.Def) {
				continue
			}
			seen.Add(p.Def)
			procDefs = append(procDefs, p.Def.Name)
		}
		for _, child := range n.Networks {
			walk(child)
		}
	}
	walk(net)

	for _, name := range procDefs {
		files = append(files, PlannedFile{
			Kind:   KindProcessModule,
			Name:   ProcessModuleFileName(name),
			Entity: EntityName(name),
		})
	}

	files = append(files, PlannedFile{
		Kind:   KindNetworkModule,
		Name:   NetworkModuleFileName(net.Name),
		Entity: EntityName(net.Name),
	})
	files = append(files, PlannedFile{
		Kind:   KindExportWrapper,
		Name:   ExportWrapperFileName(net.Name),
		Entity: ExportWrapperName(net.Name),
	})
	files = append(files, PlannedFile{
		Kind: KindTestbench,
		Name: TestbenchFileName(net.Name),
	})
	files = append(files, PlannedFile{
		Kind: KindCustomTypes,
		Name: CustomTypesFileName(),
	})
	files = append(files, PlannedFile{
		Kind: KindBuildDesc,
		Name: BuildDescriptionFileName(),
	})

	return files
}

func fileName(base, suffix string) string {
	return fmt.Sprintf("%s%s.vhd", base, suffix)
}

// ProcessModuleFileName is the VHDL source file name for one process
// definition's entity+architecture pair.
func ProcessModuleFileName(procName string) string { return fileName(SignalSafe(procName), "") }

// NetworkModuleFileName is the VHDL source file name for a network
// instance's own entity+architecture pair.
func NetworkModuleFileName(netName string) string { return fileName(SignalSafe(netName), "") }

// ExportWrapperFileName is the file name of the wrapper entity that
// normalizes a network's external-facing signal types.
func ExportWrapperFileName(netName string) string { return fileName(SignalSafe(netName), "_export") }

// TestbenchFileName is the file name of the CSV-trace-driven testbench.
func TestbenchFileName(netName string) string { return fileName(SignalSafe(netName), "_tb") }

// CustomTypesFileName is the file name of the shared custom-types package.
func CustomTypesFileName() string { return "smeil_types.vhd" }

// BuildDescriptionFileName is the file name of the TOML build description
// emitted by build.go.
func BuildDescriptionFileName() string { return "build.toml" }

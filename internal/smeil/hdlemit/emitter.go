package hdlemit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dekarrin/smeilc/internal/smeil/ir"
)

// PlaceholderEmitter is the reference Emitter shipped with this repo: it
// writes the file set Plan names, empty except for the build description
// (real TOML, via build.go) and a two-line header comment identifying the
// file's Kind and Entity. No VHDL body is ever produced, per spec §4.5/§6.2.
type PlaceholderEmitter struct {
	Variant BuildVariant
}

var _ Emitter = (*PlaceholderEmitter)(nil)

// Plan reports the fixed file set spec §6.2 describes for net.
func (e *PlaceholderEmitter) Plan(net *ir.NetworkInstance, dir string) ([]PlannedFile, error) {
	if net == nil {
		return nil, fmt.Errorf("hdlemit: nil network instance")
	}
	return Plan(net), nil
}

// Emit writes dir/<name> for every file Plan names. VHDL files get a
// two-line identifying comment (kind and entity); the build description
// gets a real
// TOML-encoded BuildDescription.
func (e *PlaceholderEmitter) Emit(net *ir.NetworkInstance, dir string) ([]PlannedFile, error) {
	files, err := e.Plan(net, dir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("hdlemit: creating output directory: %w", err)
	}

	variant := e.Variant
	if variant == "" {
		variant = VariantGeneric
	}

	for _, f := range files {
		if f.Kind == KindBuildDesc {
			desc := NewBuildDescription(net, files, variant)
			if err := WriteBuildDescription(dir, desc); err != nil {
				return nil, err
			}
			continue
		}

		path := filepath.Join(dir, f.Name)
		header := fmt.Sprintf("-- kind: %s\n-- entity: %s\n", f.Kind, f.Entity)
		if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
			return nil, fmt.Errorf("hdlemit: writing %s: %w", f.Name, err)
		}
	}

	return files, nil
}

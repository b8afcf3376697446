package hdlemit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
)

// BuildDescription is the TOML-encoded manifest a real build system would
// read to compile the emitted sources, one file per network instance. It's
// the one piece of hdlemit output this repo actually writes real content
// for; everything else is a planned, empty placeholder.
type BuildDescription struct {
	Top        string   `toml:"top"`
	TopEntity  string   `toml:"top_entity"`
	Sources    []string `toml:"sources"`
	Testbench  string   `toml:"testbench"`
	Variant    string   `toml:"variant"`
}

// BuildVariant selects the target build-system flavor a BuildDescription
// is written for (spec §6.3's "build-system variant" CLI option).
type BuildVariant string

const (
	VariantGeneric BuildVariant = "generic"
	VariantVivado  BuildVariant = "vivado"
	VariantGHDL    BuildVariant = "ghdl"
)

// NewBuildDescription derives a BuildDescription from a Plan's file list.
func NewBuildDescription(net *ir.NetworkInstance, files []PlannedFile, variant BuildVariant) BuildDescription {
	desc := BuildDescription{
		Top:       net.Name,
		TopEntity: EntityName(net.Name),
		Variant:   string(variant),
	}
	for _, f := range files {
		switch f.Kind {
		case KindProcessModule, KindNetworkModule, KindExportWrapper, KindCustomTypes:
			desc.Sources = append(desc.Sources, f.Name)
		case KindTestbench:
			desc.Testbench = f.Name
		}
	}
	return desc
}

// WriteBuildDescription TOML-encodes desc to <dir>/<BuildDescriptionFileName()>.
func WriteBuildDescription(dir string, desc BuildDescription) error {
	path := filepath.Join(dir, BuildDescriptionFileName())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("hdlemit: creating build description: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(desc); err != nil {
		return fmt.Errorf("hdlemit: encoding build description: %w", err)
	}
	return nil
}

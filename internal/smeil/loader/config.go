package loader

import (
	"github.com/BurntSushi/toml"
)

// SourceExt is the canonical extension for SMEIL source files, used when
// resolving a dotted import path to a file on disk (spec §4.2).
const SourceExt = ".smeil"

// Project is the `smeil.toml` project-config file (SPEC_FULL §2): default
// search paths, default top network, and default output folder, all
// overridable by CLI flags. Grounded on tqw.FileInfo's pattern of a small
// TOML-tagged struct decoded straight off disk, generalized from tqw's
// "format"/"type" header fields to the handful of project-scoped defaults
// this compiler needs.
type Project struct {
	// SearchPaths are directories tried, in order, when resolving an
	// import path that doesn't resolve relative to the referring file.
	SearchPaths []string `toml:"search_paths"`

	// DefaultTop is the network name used when the CLI invocation doesn't
	// pass --top and the entry module defines more than one network.
	DefaultTop string `toml:"default_top"`

	// OutputDir is the default destination handed to the HDL emitter
	// contract when the CLI invocation doesn't pass --out.
	OutputDir string `toml:"output_dir"`
}

// LoadProjectConfig reads and decodes a smeil.toml file. A missing file is
// not an error at this layer; callers that require one should stat first.
func LoadProjectConfig(path string) (Project, error) {
	var p Project
	_, err := toml.DecodeFile(path, &p)
	return p, err
}

// Package loader implements the Module Loader of spec §4.2: resolving a
// main source file plus its transitive imports into parsed modules, binding
// import names into each module's own namespace, detecting import cycles,
// choosing the top-level network, and parsing CLI positional arguments into
// literal values for that network's formal parameters. It also implements
// elaborate.EntityResolver, standing in for the fakeResolver test double
// used throughout package elaborate and package validate's own tests.
//
// Grounded on internal/tqw's file-resolution and recursive-manifest-loading
// conventions (tqw.go/marshaling.go): a stack of in-progress paths catches
// circular references the same way tqw's manifStack does, and a referring
// file's directory anchors a relative lookup the same way tqw resolves a
// manifest's included files relative to the manifest's own directory.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dekarrin/smeilc/internal/smeil/ast"
	"github.com/dekarrin/smeilc/internal/smeil/diag"
	"github.com/dekarrin/smeilc/internal/smeil/elaborate"
	"github.com/dekarrin/smeilc/internal/smeil/grammar"
	"github.com/dekarrin/smeilc/internal/smeil/ir"
	"github.com/dekarrin/smeilc/internal/smeil/lexer"
	"github.com/dekarrin/smeilc/internal/util"
)

// importBinding records what a name bound into a module's own namespace by
// one of its import statements actually refers to.
type importBinding struct {
	// module is true when the name refers to an entire imported module's
	// namespace (a full import's alias, or a limited import's own module
	// re-alias); false when it refers directly to one entity a limited
	// import pulled in.
	module bool

	path   string // canonical path of the module the binding points into
	symbol string // entity name within that module; unused when module==true
}

// moduleRecord is everything the loader has learned about one source file.
type moduleRecord struct {
	path     string
	mod      *ast.Module
	bindings map[string]importBinding
	inst     *ir.ModuleInstance // memoized result of elaborating this module's own decls
}

// Loader resolves and elaborates a SMEIL program rooted at one entry file.
// A Loader is single-use per program, same as Builder (spec §9's "prefer a
// fresh instance over mutable shared state between compilations").
type Loader struct {
	grammar     *grammar.Grammar
	project     Project
	searchPaths []string
	cache       *parseCache

	records map[string]*moduleRecord
	loading util.StringSet
}

// New constructs a Loader. project supplies default search paths (beyond
// the referring file's own directory); cacheFile, if non-empty, is read for
// a warm parse cache and written back with any newly tokenized files once
// the program finishes loading (Close).
func New(project Project, cacheFile string) *Loader {
	l := &Loader{
		grammar:     grammar.New(false),
		project:     project,
		searchPaths: project.SearchPaths,
		records:     make(map[string]*moduleRecord),
		loading:     util.NewStringSet(),
	}
	if cacheFile != "" {
		l.cache = loadParseCache(cacheFile)
	} else {
		l.cache = &parseCache{entries: make(map[string]cacheEntry)}
	}
	return l
}

// Close persists the parse cache to disk, if one was configured.
func (l *Loader) Close() error {
	if l.cache.path == "" {
		return nil
	}
	return l.cache.save()
}

// LoadProgram loads entryPath and its transitive imports, selects the top
// network (topName, or the entry module's sole network if topName is
// empty), parses cliArgTexts into literal values by spec §4.2's
// bool>int>float>there precedence, and elaborates the result into a
// NetworkInstance ready for package validate. It does not itself run
// validation; callers pass the result straight to validate.Validate.
func (l *Loader) LoadProgram(entryPath, topName string, cliArgTexts []string) (*ir.NetworkInstance, error) {
	rec, err := l.loadModule(entryPath, nil)
	if err != nil {
		return nil, err
	}

	topNet, err := selectTopNetwork(rec.mod, topName)
	if err != nil {
		return nil, err
	}

	modInst, err := l.elaborateModuleDecls(rec)
	if err != nil {
		return nil, err
	}

	resolver := &moduleResolver{loader: l, rec: rec}
	builder := elaborate.NewBuilder(resolver)
	cliVals := ParseCLIArgs(cliArgTexts)

	return builder.ElaborateTop(modInst, topNet, cliVals)
}

// selectTopNetwork implements spec §4.2's top-level binding rule.
func selectTopNetwork(mod *ast.Module, topName string) (*ast.Network, error) {
	if topName != "" {
		for _, n := range mod.Networks {
			if n.Name == topName {
				return n, nil
			}
		}
		return nil, fmt.Errorf("%s: no network named %q in entry module", mod.FilePath, topName)
	}
	if len(mod.Networks) == 1 {
		return mod.Networks[0], nil
	}
	if len(mod.Networks) == 0 {
		return nil, fmt.Errorf("%s: entry module defines no networks", mod.FilePath)
	}
	var names []string
	for _, n := range mod.Networks {
		names = append(names, n.Name)
	}
	return nil, fmt.Errorf("%s: entry module defines %d networks (%s); pass --top to choose one",
		mod.FilePath, len(mod.Networks), util.MakeTextList(names))
}

// elaborateModuleDecls elaborates (and memoizes) rec's own module-level
// declarations. Imported modules' Procs/Networks are never elaborated on
// their own — they stay as plain AST definitions the resolver hands to
// whichever network instantiates them, per spec §4.3 step 4's "entity
// resolution" contract.
func (l *Loader) elaborateModuleDecls(rec *moduleRecord) (*ir.ModuleInstance, error) {
	if rec.inst != nil {
		return rec.inst, nil
	}
	resolver := &moduleResolver{loader: l, rec: rec}
	builder := elaborate.NewBuilder(resolver)
	inst, err := builder.ElaborateModule(rec.mod)
	if err != nil {
		return nil, err
	}
	rec.inst = inst
	return inst, nil
}

// loadModule tokenizes, parses, and resolves imports for path, recursing
// into every import. refStack is the chain of paths currently being loaded,
// used to name an import cycle should one close back on itself.
func (l *Loader) loadModule(path string, refStack []string) (*moduleRecord, error) {
	path = filepath.Clean(path)

	if l.loading.Has(path) {
		cyc := append(append([]string{}, refStack...), path)
		return nil, diagImportCycle(cyc)
	}
	if existing, ok := l.records[path]; ok {
		return existing, nil
	}

	l.loading.Add(path)
	defer l.loading.Remove(path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	toks, ok := l.cache.lookup(path, src)
	if !ok {
		toks, err = lexer.Tokenize(path, string(src))
		if err != nil {
			return nil, err
		}
		l.cache.store(path, src, toks)
	}

	mod, err := l.grammar.ParseModule(path, toks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rec := &moduleRecord{path: path, mod: mod, bindings: make(map[string]importBinding)}
	l.records[path] = rec

	childStack := append(append([]string{}, refStack...), path)
	for _, imp := range mod.Imports {
		if err := l.resolveImport(rec, imp, childStack); err != nil {
			delete(l.records, path)
			return nil, err
		}
	}

	return rec, nil
}

// resolveImport loads the module imp.Path names (relative to rec's own
// file, falling back to the project's configured search paths) and binds
// whatever names spec §4.2's two import forms introduce into rec's own
// namespace.
func (l *Loader) resolveImport(rec *moduleRecord, imp *ast.Import, refStack []string) error {
	target, err := l.resolveImportPath(rec.path, imp.Path)
	if err != nil {
		return err
	}

	imported, err := l.loadModule(target, refStack)
	if err != nil {
		return err
	}

	if !imp.Limited {
		alias := imp.Alias
		if alias == "" {
			alias = imp.Path[len(imp.Path)-1]
		}
		rec.bindings[alias] = importBinding{module: true, path: imported.path}
		return nil
	}

	for _, sym := range imp.Symbols {
		local := sym.Alias
		if local == "" {
			local = sym.Name
		}
		rec.bindings[local] = importBinding{path: imported.path, symbol: sym.Name}
	}
	if imp.Alias != "" {
		rec.bindings[imp.Alias] = importBinding{module: true, path: imported.path}
	}
	return nil
}

// resolveImportPath implements spec §4.2: "<dir(refFile)>/a/b/c.<ext>",
// falling back to each configured search path in order when the
// referring-relative candidate doesn't exist.
func (l *Loader) resolveImportPath(refFile string, segs []string) (string, error) {
	rel := filepath.Join(segs...) + SourceExt

	candidate := filepath.Join(filepath.Dir(refFile), rel)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	for _, dir := range l.searchPaths {
		candidate := filepath.Join(dir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", diag.New(diag.CategoryImport, diag.KindImportNotFound, diag.Location{File: refFile},
		fmt.Sprintf("cannot resolve import %q: no such file %q (searched referring directory and %d search path(s))",
			strings.Join(segs, "."), rel, len(l.searchPaths)), "")
}

func diagImportCycle(cycle []string) error {
	return diag.New(diag.CategoryImport, diag.KindImportCycle, diag.Location{File: cycle[0]},
		fmt.Sprintf("import cycle: %s", strings.Join(cycle, " -> ")), "")
}

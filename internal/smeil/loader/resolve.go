package loader

import "github.com/dekarrin/smeilc/internal/smeil/ast"

// moduleResolver implements elaborate.EntityResolver for one referring
// module: a dotted path either names one of rec's own entities, a symbol a
// limited import bound directly, or (module.entity) an entity inside a
// module rec imported wholesale.
type moduleResolver struct {
	loader *Loader
	rec    *moduleRecord
}

func (r *moduleResolver) ResolveEntity(path []string) (*ast.Process, *ast.Network, bool) {
	if len(path) == 0 {
		return nil, nil, false
	}

	if len(path) == 1 {
		if p, n, ok := findEntity(r.rec.mod, path[0]); ok {
			return p, n, true
		}
		if b, ok := r.rec.bindings[path[0]]; ok && !b.module {
			if other, ok := r.loader.records[b.path]; ok {
				return findEntity(other.mod, b.symbol)
			}
		}
		return nil, nil, false
	}

	b, ok := r.rec.bindings[path[0]]
	if !ok || !b.module {
		return nil, nil, false
	}
	other, ok := r.loader.records[b.path]
	if !ok {
		return nil, nil, false
	}
	return findEntity(other.mod, path[1])
}

func findEntity(mod *ast.Module, name string) (*ast.Process, *ast.Network, bool) {
	for _, p := range mod.Procs {
		if p.Name == name {
			return p, nil, true
		}
	}
	for _, n := range mod.Networks {
		if n.Name == name {
			return nil, n, true
		}
	}
	return nil, nil, false
}

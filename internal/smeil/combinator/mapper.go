package combinator

import "github.com/dekarrin/smeilc/internal/smeil/token"

// mapperCombinator delegates matching to Child; on success, it runs Action
// against the child's Match right away and stores the result on its own
// Match, where a later Invoke[T] call retrieves it as a typed value. The
// action closure is type-erased (spec §9: "a type-erased
// closure Match -> Any"); type safety is recovered at the Invoke[T] call
// site via Go generics.
type mapperCombinator struct {
	Name   string
	Child  Combinator
	Action func(*Match) any
}

// Mapper returns a Combinator that matches exactly as child does; each
// successful match runs action once and stores its value for
// InvokeMappers[T]/Invoke[T] to return. name identifies the mapper for Find-by-combinator lookups and
// diagnostics (typically the AST node type being produced, e.g. "BinaryExpr").
func Mapper[T any](name string, child Combinator, action func(*Match) T) Combinator {
	return &mapperCombinator{
		Name:  name,
		Child: child,
		Action: func(m *Match) any {
			return action(m)
		},
	}
}

func (mp *mapperCombinator) match(s token.Stream) *Match {
	cm := childMatch(mp.Child, s)
	m := &Match{
		Combinator: mp,
		Start:      cm.Start,
		Matched:    cm.Matched,
		Consumed:   cm.Consumed,
		Children:   []*Match{cm},
	}
	if cm.Matched {
		m.isMapper = true
		m.mapName = mp.Name
		m.mapValue = mp.Action(cm)
	}
	return m
}

func (mp *mapperCombinator) String() string { return mp.Name }

// Invoke returns the value stored by the outermost successful Mapper node
// whose value is of type T, found via a depth-first search of m's subtree
// (m itself first). The second return is false if no such node was found.
func Invoke[T any](m *Match) (T, bool) {
	var zero T
	var result T
	var found bool
	Walk(m, func(n *Match) {
		if found || !n.isMapper || !n.Matched {
			return
		}
		if v, ok := n.mapValue.(T); ok {
			result = v
			found = true
		}
	})
	if !found {
		return zero, false
	}
	return result, true
}

// firstMapperBoundary descends through non-mapper wrapper nodes (Choice,
// Optional, Composite, Sequence repetitions of one) and returns the first
// node that is itself a matched Mapper — the single semantic value that
// match subtree produces — without looking any further past it. A rule
// composed only of wrapper combinators around exactly one Mapper-producing
// alternative (which describes every grammar rule in this package) has
// exactly one such boundary per match.
func firstMapperBoundary(m *Match) *Match {
	if m == nil || !m.Matched {
		return nil
	}
	if m.isMapper {
		return m
	}
	for _, c := range m.Children {
		if b := firstMapperBoundary(c); b != nil {
			return b
		}
	}
	return nil
}

// CollectEach returns one T per immediate child of m (typically a Sequence
// or Choice match), taking the value produced by that child's own first
// Mapper boundary and skipping children whose boundary value is not of type
// T. Unlike InvokeMappers, it never looks past that boundary into a child's
// interior — required both when T's grammar rule is recursive (a statement
// list holding an if-statement whose body holds more statements) and when
// collecting a heterogeneous list by type (module-level items that are
// variously declarations, processes, or networks): looking past the
// boundary would surface a Process's own internal declarations as if they
// were module-level ones, or double count a nested generate block's
// declarations at the outer level.
func CollectEach[T any](m *Match) []T {
	if m == nil {
		return nil
	}
	var out []T
	for _, child := range m.Children {
		b := firstMapperBoundary(child)
		if b == nil {
			continue
		}
		if v, ok := b.mapValue.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// InvokeMappers returns every value of type T produced by a Mapper node in
// m's subtree, in the order the match tree presents them (outermost of a
// nested family comes first if onlyName is not given). If onlyName is
// non-empty, only mappers constructed with that name are considered —
// spec §4.1's "with optional filtering to mappers of a specific instance".
func InvokeMappers[T any](m *Match, onlyName ...string) []T {
	var filter string
	if len(onlyName) > 0 {
		filter = onlyName[0]
	}
	var out []T
	Walk(m, func(n *Match) {
		if !n.isMapper || !n.Matched {
			return
		}
		if filter != "" && n.mapName != filter {
			return
		}
		if v, ok := n.mapValue.(T); ok {
			out = append(out, v)
		}
	})
	return out
}

package combinator

import "github.com/dekarrin/smeilc/internal/smeil/token"

// lazyCombinator is a late-bound placeholder for a self- or mutually
// recursive grammar rule (spec §9 "Recursive grammar fixpoints"): declare
// the placeholder, build the surrounding combinators that reference it, then
// call Set once the real combinator exists. Matching before Set panics,
// since that indicates a grammar-construction bug, not a parse failure.
type lazyCombinator struct {
	name   string
	target Combinator
}

// Lazy returns a placeholder Combinator that can be referenced before its
// real definition exists. Call Set on the returned *LazyRef once the real
// combinator is built.
func Lazy(name string) *LazyRef {
	return &LazyRef{inner: &lazyCombinator{name: name}}
}

// LazyRef is the handle returned by Lazy; Combinator() exposes it for
// embedding in other combinators, and Set backpatches the real target.
type LazyRef struct {
	inner *lazyCombinator
}

// Combinator returns the placeholder to embed in other combinator trees.
func (r *LazyRef) Combinator() Combinator { return r.inner }

// Set backpatches the placeholder's real definition. Must be called exactly
// once, after the referenced rule has been fully built.
func (r *LazyRef) Set(c Combinator) { r.inner.target = c }

func (l *lazyCombinator) match(s token.Stream) *Match {
	if l.target == nil {
		panic("combinator: lazy rule " + l.name + " used before Set")
	}
	return childMatch(l.target, s)
}

func (l *lazyCombinator) String() string {
	if l.target != nil {
		return l.target.String()
	}
	return l.name + "(lazy)"
}

// Package combinator implements the backtracking grammar engine of spec
// §4.1: Literal, Regex, Custom, Composite, Choice, Optional, Sequence, and
// Mapper combinators running over a token.Stream buffered enumerator, with
// match-tree queries and precedence-climbing expression construction.
//
// Combinators are immutable, shared values created once at grammar-build
// time (spec §9 "Match graph ownership"); match trees reference them
// without mutating them.
package combinator

import "github.com/dekarrin/smeilc/internal/smeil/token"

// Combinator is the shared contract every primitive implements. match runs
// the combinator against s starting at its current position and returns the
// Match it produced; s's position reflects whatever the combinator consumed
// (nothing, on failure, except for Optional/Sequence which never fail).
type Combinator interface {
	match(s token.Stream) *Match
	String() string
}

// Match is one node of the match tree: which combinator produced it, where
// it started, whether it succeeded, and its children (sub-matches).
// Composite/Choice/Optional/Sequence produce children; Literal/Regex/Custom
// are always leaves.
type Match struct {
	Combinator Combinator
	Start      token.Token
	Matched    bool
	Children   []*Match

	// Consumed is the number of tokens this match (and its subtree) advanced
	// the stream by. Used by error reporting to find the longest prefix.
	Consumed int

	// set only on Mapper-tagged matches.
	isMapper bool
	mapValue any
	mapName  string
}

// Walk performs a full depth-first traversal of the match tree rooted at m,
// calling visit on every node (including m itself).
func Walk(m *Match, visit func(*Match)) {
	if m == nil {
		return
	}
	visit(m)
	for _, c := range m.Children {
		Walk(c, visit)
	}
}

// Children returns the first-level sub-matches of m only (no recursion),
// mirroring spec §4.1's "extract the first-level matches only" query.
func Children(m *Match) []*Match {
	if m == nil {
		return nil
	}
	return m.Children
}

// Find returns the first match in the subtree rooted at m that was produced
// by combinator c, or nil if none.
func Find(m *Match, c Combinator) *Match {
	var found *Match
	Walk(m, func(n *Match) {
		if found == nil && n.Combinator == c {
			found = n
		}
	})
	return found
}

// FindDeepestFailure walks the match tree and returns the non-matching node
// furthest along the longest successful prefix — the node the engine
// reports as the syntax error location per spec §4.1 ("Error reporting").
func FindDeepestFailure(m *Match) *Match {
	var best *Match
	var bestConsumed = -1
	Walk(m, func(n *Match) {
		if n.Matched {
			return
		}
		if n.Consumed > bestConsumed {
			bestConsumed = n.Consumed
			best = n
		}
	})
	return best
}

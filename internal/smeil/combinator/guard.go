package combinator

import "github.com/dekarrin/smeilc/internal/smeil/token"

// recursionGuardBound is the fixed small bound from spec §4.1: "If the same
// pair is re-entered more than a small fixed bound (three), the engine
// returns a non-match rather than recursing."
const recursionGuardBound = 3

type guardKey struct {
	c   Combinator
	tok token.Token
}

// guardedStream decorates a token.Stream with a visited-set keyed by
// (combinator, current token), used to defend against pathological
// left-recursive-looking grammars. Off by default (spec §4.1): only
// constructed when Options.GuardRecursion is set.
type guardedStream struct {
	token.Stream
	visits map[guardKey]int
}

func newGuardedStream(s token.Stream) *guardedStream {
	return &guardedStream{Stream: s, visits: make(map[guardKey]int)}
}

// enter reports whether c may be (re-)entered at the stream's current
// position; it increments the visit count as a side effect. Returns false
// once the bound is exceeded.
func (g *guardedStream) enter(c Combinator) bool {
	key := guardKey{c: c, tok: g.Current()}
	g.visits[key]++
	return g.visits[key] <= recursionGuardBound
}

// leave undoes the visit enter recorded under key, the (combinator, token)
// pair captured before the match advanced the stream.
func (g *guardedStream) leave(key guardKey) {
	if g.visits[key] > 0 {
		g.visits[key]--
	}
}

// guard, when non-nil, is consulted by childMatch for the duration of one
// top-level Engine.Match call. The compiler pipeline is single-threaded
// (spec §5), so this transient, call-scoped global is safe: it is set at
// the start of Match and cleared before it returns.
var guard *guardedStream

func (g *guardedStream) guardedMatch(c Combinator, s token.Stream) *Match {
	key := guardKey{c: c, tok: g.Current()}
	if !g.enter(c) {
		return &Match{Combinator: c, Start: s.Current(), Matched: false}
	}
	defer g.leave(key)
	return c.match(s)
}

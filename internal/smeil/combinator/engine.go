package combinator

import (
	"fmt"

	"github.com/dekarrin/smeilc/internal/smeil/token"
)

// Options configures an Engine. The zero value matches spec §4.1's default:
// the recursion guard is off.
type Options struct {
	// GuardRecursion enables the (combinator, token) visited-set guard
	// described in spec §4.1. Off by default; grammars known to be
	// well-formed (as SMEIL's is) disable it for performance.
	GuardRecursion bool
}

// Engine drives a Combinator over a token.Stream and exposes the public
// contract of spec §4.1: Match and Invoke.
type Engine struct {
	Options Options
}

// NewEngine builds an Engine with the given options.
func NewEngine(opts Options) *Engine {
	return &Engine{Options: opts}
}

// ParseError is the failure signal of spec §4.1's public contract.
type ParseError struct {
	Location token.Token
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: expected %s, found %s",
		e.Location.Line(), e.Location.LineOffset(), e.Expected, e.Found)
}

// Match drives recognition of top against s and returns the resulting match
// tree. If top fails, or tokens remain unconsumed after a successful top
// match, a *ParseError is returned alongside the (failed/partial) tree.
func (e *Engine) Match(top Combinator, s token.Stream) (*Match, error) {
	if e.Options.GuardRecursion {
		gs := newGuardedStream(s)
		prevGuard := guard
		guard = gs
		defer func() { guard = prevGuard }()
		s = gs
	}

	m := top.match(s)
	if !m.Matched {
		fail := FindDeepestFailure(m)
		if fail == nil {
			fail = m
		}
		return m, &ParseError{
			Location: fail.Start,
			Expected: fail.Combinator.String(),
			Found:    foundText(fail.Start),
		}
	}

	if !s.Empty() {
		cur := s.Current()
		return m, &ParseError{
			Location: cur,
			Expected: "end of input",
			Found:    foundText(cur),
		}
	}

	return m, nil
}

func foundText(t token.Token) string {
	if t.Class() == token.EndOfText {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Text())
}

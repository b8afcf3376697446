package combinator

import (
	"fmt"
	"regexp"

	"github.com/dekarrin/smeilc/internal/smeil/token"
)

// literalCombinator matches when the current token's text equals Text
// exactly.
type literalCombinator struct {
	Text string
}

// Literal returns a Combinator that matches a single token whose exact text
// is text.
func Literal(text string) Combinator { return &literalCombinator{Text: text} }

func (l *literalCombinator) match(s token.Stream) *Match {
	start := s.Current()
	if !s.Empty() && s.Current().Text() == l.Text {
		s.Advance()
		return &Match{Combinator: l, Start: start, Matched: true, Consumed: 1}
	}
	return &Match{Combinator: l, Start: start, Matched: false}
}

func (l *literalCombinator) String() string { return fmt.Sprintf("%q", l.Text) }

// regexCombinator matches when Pattern fully matches the current token's
// text (i.e. the pattern is implicitly anchored).
type regexCombinator struct {
	Src string
	re  *regexp.Regexp
}

// Regex returns a Combinator that matches a single token whose text fully
// matches pattern. Panics if pattern does not compile, since grammars are
// built once at startup from trusted, compile-time-known patterns.
func Regex(pattern string) Combinator {
	re := regexp.MustCompile("^(?:" + pattern + ")$")
	return &regexCombinator{Src: pattern, re: re}
}

func (r *regexCombinator) match(s token.Stream) *Match {
	start := s.Current()
	if !s.Empty() && r.re.MatchString(s.Current().Text()) {
		s.Advance()
		return &Match{Combinator: r, Start: start, Matched: true, Consumed: 1}
	}
	return &Match{Combinator: r, Start: start, Matched: false}
}

func (r *regexCombinator) String() string { return "/" + r.Src + "/" }

// customCombinator matches when Predicate(token text) returns true.
type customCombinator struct {
	Name      string
	Predicate func(text string) bool
}

// Custom returns a Combinator that matches a single token using an
// arbitrary caller-supplied predicate over its text. name is used only for
// String()/diagnostics.
func Custom(name string, predicate func(text string) bool) Combinator {
	return &customCombinator{Name: name, Predicate: predicate}
}

func (c *customCombinator) match(s token.Stream) *Match {
	start := s.Current()
	if !s.Empty() && c.Predicate(s.Current().Text()) {
		s.Advance()
		return &Match{Combinator: c, Start: start, Matched: true, Consumed: 1}
	}
	return &Match{Combinator: c, Start: start, Matched: false}
}

func (c *customCombinator) String() string { return c.Name }

// compositeCombinator matches if every child matches in sequence;
// all-or-nothing.
type compositeCombinator struct {
	Name     string
	Children []Combinator
}

// Composite returns a Combinator that matches only if all of children match
// in order. name is used for String()/diagnostics (typically the grammar
// rule name being defined).
func Composite(name string, children ...Combinator) Combinator {
	return &compositeCombinator{Name: name, Children: children}
}

func (cp *compositeCombinator) match(s token.Stream) *Match {
	start := s.Current()
	snap := s.Snapshot()

	m := &Match{Combinator: cp, Start: start, Matched: true}
	consumed := 0
	for _, child := range cp.Children {
		cm := childMatch(child, s)
		m.Children = append(m.Children, cm)
		consumed += cm.Consumed
		if !cm.Matched {
			m.Matched = false
			m.Consumed = consumed
			s.Rollback(snap)
			return m
		}
	}
	m.Consumed = consumed
	s.Commit(snap)
	return m
}

func (cp *compositeCombinator) String() string { return cp.Name }

// choiceCombinator attempts children in declared order; first success
// wins; all attempts (matching and non-matching) are recorded as children
// of the returned Match for error reporting.
type choiceCombinator struct {
	Name     string
	Children []Combinator
}

// Choice returns a Combinator that tries each of children in order and
// succeeds with the first one that matches.
func Choice(name string, children ...Combinator) Combinator {
	return &choiceCombinator{Name: name, Children: children}
}

func (ch *choiceCombinator) match(s token.Stream) *Match {
	start := s.Current()
	m := &Match{Combinator: ch, Start: start}

	for _, child := range ch.Children {
		snap := s.Snapshot()
		cm := childMatch(child, s)
		m.Children = append(m.Children, cm)
		if cm.Matched {
			s.Commit(snap)
			m.Matched = true
			m.Consumed = cm.Consumed
			return m
		}
		s.Rollback(snap)
	}
	m.Matched = false
	return m
}

func (ch *choiceCombinator) String() string { return ch.Name }

// optionalCombinator matches zero-or-one occurrences of Child; it never
// fails.
type optionalCombinator struct {
	Child Combinator
}

// Optional returns a Combinator that tries to match child once; if it
// fails, Optional still succeeds, consuming nothing.
func Optional(child Combinator) Combinator { return &optionalCombinator{Child: child} }

func (o *optionalCombinator) match(s token.Stream) *Match {
	start := s.Current()
	snap := s.Snapshot()
	cm := childMatch(o.Child, s)
	m := &Match{Combinator: o, Start: start, Matched: true}
	if cm.Matched {
		s.Commit(snap)
		m.Children = []*Match{cm}
		m.Consumed = cm.Consumed
	} else {
		s.Rollback(snap)
	}
	return m
}

func (o *optionalCombinator) String() string { return o.Child.String() + "?" }

// sequenceCombinator matches zero-or-more repetitions of Child, stopping at
// the first non-match; it never fails.
type sequenceCombinator struct {
	Child Combinator
}

// Sequence returns a Combinator that repeatedly matches child until it
// fails, succeeding (possibly with zero repetitions) regardless.
func Sequence(child Combinator) Combinator { return &sequenceCombinator{Child: child} }

func (sq *sequenceCombinator) match(s token.Stream) *Match {
	start := s.Current()
	m := &Match{Combinator: sq, Start: start, Matched: true}
	for {
		snap := s.Snapshot()
		cm := childMatch(sq.Child, s)
		if !cm.Matched {
			s.Rollback(snap)
			break
		}
		s.Commit(snap)
		m.Children = append(m.Children, cm)
		m.Consumed += cm.Consumed
		if cm.Consumed == 0 {
			// child matched without consuming: stop to avoid an infinite
			// loop (spec §9 "Infinite recursion guard" rationale applies
			// equally here).
			break
		}
	}
	return m
}

func (sq *sequenceCombinator) String() string { return sq.Child.String() + "*" }

// childMatch is the single place every compound combinator routes through,
// so the optional recursion guard (spec §4.1) can be applied uniformly.
func childMatch(c Combinator, s token.Stream) *Match {
	if guard != nil {
		return guard.guardedMatch(c, s)
	}
	return c.match(s)
}

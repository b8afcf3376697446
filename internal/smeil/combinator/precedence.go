package combinator

// OpLevel describes one precedence level of spec §4.1's binary-expression
// chain: a set of operator token texts that bind at this level, listed from
// lowest to highest across the call to BuildPrecedenceChain. All operators
// within a level are left-associative.
type OpLevel struct {
	Name string   // e.g. "or", "and", "additive" — used to name the generated Composite
	Ops  []string // operator token texts recognized at this level, e.g. []string{"+", "-"}
}

// BuildPrecedenceChain builds the combinator tree for spec §4.1's
// precedence-climbing chain:
//
//	Lᵢ := Lᵢ₊₁ ( opᵢ Lᵢ₊₁ )*
//
// terminal is L_top (literal, name, parenthesized, unary, type-cast).
// levels must be given lowest-precedence-first (so levels[0] binds
// loosest, matching spec §4.1's enumeration `||` through `*,%`). fold is
// invoked once per successfully matched `(opᵢ Lᵢ₊₁)` repetition, left to
// right, to build a left-leaning binary node; it receives the left operand
// built so far, the matched operator's text, and the newly parsed right
// operand, and must return the new "left" value to fold the next
// repetition against.
func BuildPrecedenceChain(terminal Combinator, levels []OpLevel, fold func(left any, op string, right any) any) Combinator {
	current := terminal
	for i := len(levels) - 1; i >= 0; i-- {
		current = buildLevel(levels[i], current, fold)
	}
	return current
}

func buildLevel(level OpLevel, next Combinator, fold func(left any, op string, right any) any) Combinator {
	opChoices := make([]Combinator, len(level.Ops))
	for i, o := range level.Ops {
		opChoices[i] = Literal(o)
	}
	var opCombinator Combinator
	if len(opChoices) == 1 {
		opCombinator = opChoices[0]
	} else {
		opCombinator = Choice(level.Name+"-op", opChoices...)
	}

	pair := Composite(level.Name+"-tail", opCombinator, next)
	tailSeq := Sequence(pair)

	chain := Composite(level.Name, next, tailSeq)

	return Mapper(level.Name, chain, func(m *Match) any {
		// children: [0]=next's match, [1]=tailSeq match whose children are
		// each a `pair` match with children [op, next].
		leftMatch := m.Children[0]
		leftVal := extractChainValue(leftMatch, fold)

		tail := m.Children[1]
		result := leftVal
		for _, rep := range tail.Children {
			opText := rep.Children[0].Start.Text()
			rightVal := extractChainValue(rep.Children[1], fold)
			result = fold(result, opText, rightVal)
		}
		return result
	})
}

// extractChainValue pulls the semantic value out of a sub-match produced by
// the next level down in the chain. Every level wraps its Composite in a
// Mapper, so by construction m is itself (or wraps) a mapper match; we walk
// for the first tagged value of type any, which works because Mapper's
// type parameter is erased to any internally via mapValue.
func extractChainValue(m *Match, fold func(left any, op string, right any) any) any {
	v, ok := Invoke[any](m)
	if ok {
		return v
	}
	// no successful mapper anywhere under m: there is no value to fold, so
	// the result is nil.
	return nil
}
